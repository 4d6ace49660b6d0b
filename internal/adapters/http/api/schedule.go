package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/perfdash/internal/domain/types"
)

// ScheduleDependencies defines the interface for schedule lookups.
type ScheduleDependencies interface {
	Annotation(ctx context.Context, date string) (types.Annotation, error)
}

// ScheduleHandler handles schedule requests.
type ScheduleHandler struct {
	deps ScheduleDependencies
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(deps ScheduleDependencies) *ScheduleHandler {
	return &ScheduleHandler{deps: deps}
}

// HandleGetSchedule handles GET /schedule/{date} requests. The date is the
// chart label as served, e.g. "2024-01-02" or "01-2024".
func (h *ScheduleHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "api.schedule"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/schedule/")
	date, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(date) == "" || strings.Contains(date, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := h.deps.Annotation(r.Context(), date)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, a)
}
