package api

import (
	"context"
	"net/http"

	"github.com/okian/perfdash/pkg/logger"
)

// ReloadDependencies defines the interface for dataset reloads.
type ReloadDependencies interface {
	Reload(ctx context.Context) error
}

// ReloadHandler handles dataset reload requests.
type ReloadHandler struct {
	deps ReloadDependencies
	log  logger.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies, log logger.Logger) *ReloadHandler {
	return &ReloadHandler{deps: deps, log: log}
}

type reloadResponse struct {
	Status string `json:"status"`
}

// HandleReload handles POST /datasets/reload requests.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Reload(r.Context()); err != nil {
		h.log.Error(r.Context(), "dataset reload request failed",
			logger.String("request_id", RequestID(r.Context())),
			logger.Error(err),
		)
		writeServiceError(w, op, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded"})
}
