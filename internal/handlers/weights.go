package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// ListModelWeights returns stored weight configurations
// @Summary List Model Weights
// @Tags Models
// @Produce json
// @Success 200 {array} models.ModelWeights
// @Router /model-weights [get]
func (h *Handler) ListModelWeights(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.Sort == "" {
		opts.Sort = "-version"
	}

	weights, err := h.store.ModelWeights().List(r.Context(), opts)
	if err != nil {
		h.handleError(w, err, "Failed to list model weights")
		return
	}
	if weights == nil {
		weights = []models.ModelWeights{}
	}
	h.jsonResponse(w, http.StatusOK, weights)
}

// CreateModelWeights stores a weight configuration. Creating an active row
// deactivates the previous one.
// @Summary Create Model Weights
// @Tags Models
// @Accept json
// @Produce json
// @Param body body models.ModelWeights true "Weights"
// @Success 201 {object} models.ModelWeights
// @Failure 400 {object} map[string]string "Weights must sum to 1"
// @Router /model-weights [post]
func (h *Handler) CreateModelWeights(w http.ResponseWriter, r *http.Request) {
	var mw models.ModelWeights
	if err := h.decodeJSON(w, r, &mw); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.ModelWeights().Create(r.Context(), mw)
	if err != nil {
		h.handleError(w, err, "Failed to create model weights", "name", mw.Name)
		return
	}
	h.jsonResponse(w, http.StatusCreated, created)
}

// ActivateModelWeights makes one configuration the active one
// @Summary Activate Model Weights
// @Tags Models
// @Produce json
// @Param id path string true "Weights ID"
// @Success 200 {object} models.ModelWeights
// @Failure 404 {object} map[string]string "Not Found"
// @Router /model-weights/{id}/activate [post]
func (h *Handler) ActivateModelWeights(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	updated, err := h.store.ModelWeights().Update(r.Context(), id, map[string]any{"is_active": true})
	if err != nil {
		h.handleError(w, err, "Failed to activate model weights", "id", id)
		return
	}
	h.logger.Infow("Model weights activated", "id", id, "name", updated.Name, "version", updated.Version)
	h.jsonResponse(w, http.StatusOK, updated)
}
