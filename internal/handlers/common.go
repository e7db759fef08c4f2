package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matchpoint-labs/tennis-predict/internal/logic"
	"github.com/matchpoint-labs/tennis-predict/internal/models"
	"github.com/matchpoint-labs/tennis-predict/internal/store"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := make(map[string]bool, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		err := check(ctx)
		checks[name] = err == nil
		if err != nil {
			allHealthy = false
			h.logger.Warnw("Readiness check failed", "dependency", name, "error", err)
		}
	}

	body := map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	}
	if h.sources != nil {
		body["dataSource"] = h.sources.ActiveName()
	}
	if h.export != nil {
		body["queueDepth"] = h.export.QueueDepth()
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, body)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := h.validator.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// dst is not a struct (e.g. a patch map); nothing to validate
			return nil
		}
		return err
	}
	return nil
}

var errBadRequest = errors.New("invalid request body")

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &verrs),
		errors.Is(err, errBadRequest),
		errors.Is(err, models.ErrInvalidPlayer),
		errors.Is(err, models.ErrInvalidMatch),
		errors.Is(err, models.ErrInvalidWeights),
		errors.Is(err, logic.ErrMissingInput),
		errors.Is(err, logic.ErrUnknownModel),
		errors.Is(err, store.ErrUnknownSource):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrAnalyticsDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// handleError writes err with its mapped status. Server errors are logged
// and replaced by msg so backend details do not leak.
func (h *Handler) handleError(w http.ResponseWriter, err error, msg string, keysAndValues ...interface{}) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorw(msg, append(keysAndValues, "error", err)...)
		h.errorResponse(w, status, msg)
		return
	}
	h.errorResponse(w, status, err.Error())
}

// listOptions parses ?sort=-field&limit=N&filter={json}.
func listOptions(r *http.Request) (store.ListOptions, error) {
	q := r.URL.Query()
	opts := store.ListOptions{Sort: q.Get("sort")}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest)
		}
		opts.Limit = limit
	}

	filter, err := store.ParseFilterJSON(q.Get("filter"))
	if err != nil {
		return opts, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	opts.Filters = filter
	return opts, nil
}
