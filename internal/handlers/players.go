package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// ListPlayers returns players from the active data source
// @Summary List Players
// @Tags Players
// @Produce json
// @Param sort query string false "Sort field, prefix with - for descending"
// @Param limit query int false "Maximum rows"
// @Param filter query string false "JSON filter object"
// @Success 200 {array} models.Player
// @Router /players [get]
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	players, err := h.store.Players().List(r.Context(), opts)
	if err != nil {
		h.handleError(w, err, "Failed to list players")
		return
	}
	if players == nil {
		players = []models.Player{}
	}
	h.jsonResponse(w, http.StatusOK, players)
}

// CreatePlayer stores a new player
// @Summary Create Player
// @Tags Players
// @Accept json
// @Produce json
// @Param body body models.Player true "Player"
// @Success 201 {object} models.Player
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /players [post]
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var player models.Player
	if err := h.decodeJSON(w, r, &player); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.Players().Create(r.Context(), player)
	if err != nil {
		h.handleError(w, err, "Failed to create player", "name", player.Name)
		return
	}
	h.jsonResponse(w, http.StatusCreated, created)
}

// GetPlayer returns one player by id
// @Summary Get Player
// @Tags Players
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {object} models.Player
// @Failure 404 {object} map[string]string "Not Found"
// @Router /players/{id} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	player, err := h.store.Players().Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "Failed to get player", "id", id)
		return
	}
	if player == nil {
		h.errorResponse(w, http.StatusNotFound, "Player not found")
		return
	}
	h.jsonResponse(w, http.StatusOK, player)
}

// UpdatePlayer merges a partial update into a player
// @Summary Update Player
// @Tags Players
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {object} models.Player
// @Failure 404 {object} map[string]string "Not Found"
// @Router /players/{id} [patch]
func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch map[string]any
	if err := h.decodeJSON(w, r, &patch); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.store.Players().Update(r.Context(), id, patch)
	if err != nil {
		h.handleError(w, err, "Failed to update player", "id", id)
		return
	}
	h.jsonResponse(w, http.StatusOK, updated)
}

// DeletePlayer removes a player; removing a missing player succeeds
// @Summary Delete Player
// @Tags Players
// @Param id path string true "Player ID"
// @Success 204
// @Router /players/{id} [delete]
func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Players().Remove(r.Context(), id); err != nil {
		h.handleError(w, err, "Failed to delete player", "id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateAlias maps an alternate name spelling to a player
// @Summary Create Player Alias
// @Tags Players
// @Accept json
// @Param body body models.Alias true "Alias"
// @Success 201
// @Router /players/aliases [post]
func (h *Handler) CreateAlias(w http.ResponseWriter, r *http.Request) {
	var alias models.Alias
	if err := h.decodeJSON(w, r, &alias); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Alias().Create(r.Context(), alias); err != nil {
		h.handleError(w, err, "Failed to create alias", "alias", alias.Alias)
		return
	}
	h.jsonResponse(w, http.StatusCreated, alias)
}
