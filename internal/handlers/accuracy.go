package handlers

import (
	"net/http"
	"strconv"
)

// GetAccuracy returns per-model accuracy and calibration
// @Summary Model Accuracy
// @Tags Models
// @Produce json
// @Success 200 {array} models.ModelAccuracy
// @Router /accuracy [get]
func (h *Handler) GetAccuracy(w http.ResponseWriter, r *http.Request) {
	summary, err := h.accuracy.Summary(r.Context())
	if err != nil {
		h.handleError(w, err, "Failed to compute accuracy")
		return
	}
	h.jsonResponse(w, http.StatusOK, summary)
}

// GetAccuracyTrend returns daily accuracy per model from the analytics store
// @Summary Model Accuracy Trend
// @Tags Models
// @Produce json
// @Param days query int false "Days to include (default 30)"
// @Success 200 {array} models.AccuracyPoint
// @Failure 503 {object} map[string]string "Analytics disabled"
// @Router /accuracy/trend [get]
func (h *Handler) GetAccuracyTrend(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d <= 0 {
			h.errorResponse(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = d
	}

	points, err := h.accuracy.Trend(r.Context(), days)
	if err != nil {
		h.handleError(w, err, "Failed to compute accuracy trend", "days", days)
		return
	}
	h.jsonResponse(w, http.StatusOK, points)
}
