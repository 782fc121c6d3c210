// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/jobguard/internal/app"
	"github.com/okian/jobguard/internal/domain/model"
	"github.com/okian/jobguard/internal/domain/types"
	"github.com/okian/jobguard/pkg/logger"
)

const defaultMaxBodyBytes = 32 << 20

// Predictor serves classification requests.
type Predictor interface {
	PredictSingle(ctx context.Context, job model.JobPosting) (model.PredictionResult, error)
	PredictBatch(ctx context.Context, jobs []model.JobPosting) ([]model.PredictionResult, error)
}

// HealthProvider reports readiness.
type HealthProvider interface {
	Health(ctx context.Context) types.Health
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predictor
	HealthProvider
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	predictHandler *PredictHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler

	maxBodyBytes   int64
	allowedOrigins []string
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes:   defaultMaxBodyBytes,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}

	s.predictHandler = NewPredictHandler(deps, s.maxBodyBytes, s.logger)
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.Handle("/predict", s.wrap(s.predictHandler.HandlePredict, "predict"))
	mux.Handle("/predict/batch", s.wrap(s.predictHandler.HandlePredictBatch, "predict_batch"))
	mux.Handle("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
}

// wrap applies the standard middleware chain, outermost first.
func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestID(CORS(s.allowedOrigins)(MetricsMiddleware(h, endpoint)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		msg = apiErr.Message()
	case err != nil:
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, op string, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}

// writeServiceError maps an inference service failure onto the envelope.
// failed is the sentinel for a genuine inference failure on this path.
func (h *PredictHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err, failed error) {
	switch {
	case errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", NewKind(op, ErrNotReady))
	case errors.Is(err, service.ErrOverloaded):
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
			WrapKind(op, ErrPayloadTooLarge, errors.New(detail(err, failed))))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, "timeout", NewKind(op, ErrTimeout))
	default:
		h.logger.Error(ctx, "prediction request failed", logger.String("op", op), logger.Error(err))
		code, label := "prediction_failed", "Prediction failed"
		if errors.Is(failed, service.ErrBatchPredictionFailed) {
			code, label = "batch_prediction_failed", "Batch prediction failed"
		}
		writeError(w, http.StatusInternalServerError, code,
			WrapKind(op, ErrPrediction, errors.New(label+": "+detail(err, failed))))
	}
}

// detail strips the leading sentinel text from a service error.
func detail(err, kind error) string {
	return strings.TrimPrefix(err.Error(), kind.Error()+": ")
}
