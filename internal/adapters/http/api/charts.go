package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/perfdash/internal/app"
	"github.com/okian/perfdash/internal/domain/model"
	"github.com/okian/perfdash/internal/domain/series"
	"github.com/okian/perfdash/internal/domain/types"
	"github.com/okian/perfdash/pkg/logger"
)

// ChartsDependencies defines the interface for chart reads.
type ChartsDependencies interface {
	Chart(ctx context.Context, req service.ChartRequest) (types.Chart, error)
}

// ChartsHandler handles chart requests.
type ChartsHandler struct {
	deps     ChartsDependencies
	log      logger.Logger
	validate *validator.Validate
}

// chartQuery is the query string of GET /charts.
type chartQuery struct {
	Player      string `query:"player" validate:"required,max=128"`
	Data        string `query:"data" validate:"required,datatype"`
	Granularity string `query:"granularity" validate:"omitempty,max=32"`
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps ChartsDependencies, log logger.Logger) *ChartsHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("datatype", func(fl validator.FieldLevel) bool {
		_, err := model.ParseDataType(fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("query")
	})
	return &ChartsHandler{deps: deps, log: log, validate: v}
}

// HandleGetChart handles GET /charts?player=&data=&granularity= requests.
// An unrecognized granularity is served at daily resolution with
// "fallback": true rather than rejected.
func (h *ChartsHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.charts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	in := chartQuery{
		Player:      strings.TrimSpace(q.Get("player")),
		Data:        strings.TrimSpace(q.Get("data")),
		Granularity: strings.TrimSpace(q.Get("granularity")),
	}
	if err := h.validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, describe(err)))
		return
	}

	dataType, err := model.ParseDataType(in.Data)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	g, err := series.ParseGranularity(in.Granularity)
	if err != nil {
		h.log.Warn(r.Context(), "unsupported granularity requested",
			logger.String("granularity", in.Granularity),
			logger.String("request_id", RequestID(r.Context())),
		)
	}

	chart, err := h.deps.Chart(r.Context(), service.ChartRequest{
		Player:      in.Player,
		DataType:    dataType,
		Granularity: g,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, chart); err != nil {
		h.log.Error(r.Context(), "chart response could not be encoded",
			logger.String("player", in.Player),
			logger.String("request_id", RequestID(r.Context())),
			logger.Error(err),
		)
	}
}

// describe flattens validation failures into one message.
func describe(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "datatype":
			msgs = append(msgs, fmt.Sprintf("%s must be %q or %q", fe.Field(), model.ForcePlate, model.TrackingData))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
