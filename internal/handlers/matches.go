package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// ListMatches returns stored matches
// @Summary List Matches
// @Tags Matches
// @Produce json
// @Param sort query string false "Sort field, prefix with - for descending"
// @Param limit query int false "Maximum rows"
// @Param filter query string false "JSON filter object"
// @Success 200 {array} models.Match
// @Router /matches [get]
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := h.store.Matches().List(r.Context(), opts)
	if err != nil {
		h.handleError(w, err, "Failed to list matches")
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	h.jsonResponse(w, http.StatusOK, matches)
}

// AnalyzeMatch creates a match and runs the requested models on it
// @Summary Analyze Match
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.AnalyzeMatchRequest true "Match and models"
// @Success 201 {object} models.AnalyzeMatchResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Player Not Found"
// @Router /matches/analyze [post]
func (h *Handler) AnalyzeMatch(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeMatchRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.prediction.AnalyzeMatch(r.Context(), req)
	if err != nil {
		if resp == nil {
			h.handleError(w, err, "Failed to analyze match")
			return
		}
		// The match and earlier predictions are already stored
		h.logger.Errorw("Match analysis incomplete", "match", resp.Match.ID, "error", err)
		h.jsonResponse(w, statusFor(err), map[string]interface{}{
			"error":       "Match analysis incomplete",
			"match":       resp.Match,
			"predictions": resp.Predictions,
		})
		return
	}
	h.jsonResponse(w, http.StatusCreated, resp)
}

// GetMatchPredictions returns every stored prediction for a match
// @Summary Get Match Predictions
// @Tags Predictions
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {array} models.Prediction
// @Router /matches/{id}/predictions [get]
func (h *Handler) GetMatchPredictions(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	preds, err := h.prediction.MatchPredictions(r.Context(), matchID)
	if err != nil {
		h.handleError(w, err, "Failed to get predictions", "matchID", matchID)
		return
	}
	h.jsonResponse(w, http.StatusOK, preds)
}

// RecordOutcome completes a match and grades its predictions
// @Summary Record Match Outcome
// @Tags Predictions
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param body body models.RecordOutcomeRequest true "Winner"
// @Success 200 {array} models.Prediction
// @Failure 404 {object} map[string]string "Not Found"
// @Router /matches/{id}/outcome [post]
func (h *Handler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	var req models.RecordOutcomeRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	graded, err := h.prediction.RecordOutcome(r.Context(), matchID, req.WinnerID)
	if err != nil {
		h.handleError(w, err, "Failed to record outcome", "matchID", matchID)
		return
	}
	h.jsonResponse(w, http.StatusOK, graded)
}
