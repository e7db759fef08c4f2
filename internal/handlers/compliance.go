package handlers

import (
	"net/http"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// ListCompliance returns data-source compliance records
// @Summary List Compliance Records
// @Tags Compliance
// @Produce json
// @Success 200 {array} models.Compliance
// @Router /compliance [get]
func (h *Handler) ListCompliance(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.store.Compliance().List(r.Context(), opts)
	if err != nil {
		h.handleError(w, err, "Failed to list compliance records")
		return
	}
	if records == nil {
		records = []models.Compliance{}
	}
	h.jsonResponse(w, http.StatusOK, records)
}

// CreateCompliance records the review of a data source
// @Summary Create Compliance Record
// @Tags Compliance
// @Accept json
// @Produce json
// @Param body body models.Compliance true "Record"
// @Success 201 {object} models.Compliance
// @Router /compliance [post]
func (h *Handler) CreateCompliance(w http.ResponseWriter, r *http.Request) {
	var rec models.Compliance
	if err := h.decodeJSON(w, r, &rec); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.Compliance().Create(r.Context(), rec)
	if err != nil {
		h.handleError(w, err, "Failed to create compliance record", "dataSource", rec.DataSource)
		return
	}

	user, _ := h.store.Auth().CurrentUser(r.Context())
	if err := h.store.AppLogs().Record(r.Context(), "compliance_recorded", map[string]any{
		"data_source": created.DataSource,
		"status":      created.Status,
		"user":        user,
	}); err != nil {
		h.logger.Warnw("Failed to write app log", "error", err)
	}

	h.jsonResponse(w, http.StatusCreated, created)
}
