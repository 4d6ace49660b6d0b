package api

import (
	"context"
	"net/http"

	"github.com/okian/perfdash/internal/domain/types"
)

// PlayersDependencies defines the interface for roster reads.
type PlayersDependencies interface {
	Players(ctx context.Context) ([]string, error)
}

// PlayersHandler handles roster requests.
type PlayersHandler struct {
	deps PlayersDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPlayers handles GET /players requests.
func (h *PlayersHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.players"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	players, err := h.deps.Players(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if players == nil {
		players = []string{}
	}
	_ = writeJSON(w, http.StatusOK, types.Players{Players: players})
}
