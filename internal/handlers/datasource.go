package handlers

import (
	"net/http"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// GetDataSource reports the active backend and the registered ones
// @Summary Get Data Source
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /datasource [get]
func (h *Handler) GetDataSource(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"active":    h.sources.ActiveName(),
		"available": h.sources.Names(),
	})
}

// SwitchDataSource selects another backend for all subsequent requests
// @Summary Switch Data Source
// @Tags System
// @Accept json
// @Produce json
// @Param body body models.SwitchDataSourceRequest true "Backend name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Unknown data source"
// @Router /datasource [post]
func (h *Handler) SwitchDataSource(w http.ResponseWriter, r *http.Request) {
	var req models.SwitchDataSourceRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	changed, err := h.sources.Switch(req.Name)
	if err != nil {
		h.handleError(w, err, "Failed to switch data source", "name", req.Name)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"active":  h.sources.ActiveName(),
		"changed": changed,
	})
}
