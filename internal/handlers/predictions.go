package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// PreviewPrediction runs one model without persisting anything
// @Summary Preview Prediction
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PreviewPredictionRequest true "Players and model"
// @Success 200 {object} models.Prediction
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /predictions/preview [post]
func (h *Handler) PreviewPrediction(w http.ResponseWriter, r *http.Request) {
	var req models.PreviewPredictionRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	pred, err := h.prediction.PreviewPrediction(r.Context(), req)
	if err != nil {
		h.handleError(w, err, "Failed to preview prediction", "model", req.Model)
		return
	}
	h.jsonResponse(w, http.StatusOK, pred)
}

// SubmitFeedback records manual feedback on a prediction
// @Summary Submit Prediction Feedback
// @Tags Predictions
// @Accept json
// @Produce json
// @Param id path string true "Prediction ID"
// @Param body body models.FeedbackRequest true "Feedback"
// @Success 201 {object} models.ModelFeedback
// @Failure 404 {object} map[string]string "Not Found"
// @Router /predictions/{id}/feedback [post]
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	predictionID := chi.URLParam(r, "id")

	var req models.FeedbackRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	fb, err := h.prediction.SubmitFeedback(r.Context(), predictionID, req.WasCorrect, req.Notes)
	if err != nil {
		h.handleError(w, err, "Failed to submit feedback", "predictionID", predictionID)
		return
	}
	h.jsonResponse(w, http.StatusCreated, fb)
}
