package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	service "github.com/okian/jobguard/internal/app"
	"github.com/okian/jobguard/internal/domain/model"
	"github.com/okian/jobguard/pkg/logger"
)

// jobPostingRequest mirrors the OpenAPI schema for a JobPosting. Pointer
// fields tell an absent or null field apart from an empty string.
type jobPostingRequest struct {
	Title          *string `json:"title"`
	CompanyProfile *string `json:"company_profile"`
	Description    *string `json:"description"`
	Requirements   *string `json:"requirements"`
}

func (j *jobPostingRequest) validate() error {
	switch {
	case j.Title == nil:
		return errors.New("missing title")
	case j.CompanyProfile == nil:
		return errors.New("missing company_profile")
	case j.Description == nil:
		return errors.New("missing description")
	case j.Requirements == nil:
		return errors.New("missing requirements")
	}
	return nil
}

func (j *jobPostingRequest) posting() model.JobPosting {
	return model.JobPosting{
		Title:          *j.Title,
		CompanyProfile: *j.CompanyProfile,
		Description:    *j.Description,
		Requirements:   *j.Requirements,
	}
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	predictor    Predictor
	maxBodyBytes int64
	logger       logger.Logger
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(p Predictor, maxBodyBytes int64, l logger.Logger) *PredictHandler {
	return &PredictHandler{predictor: p, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}

	var req *jobPostingRequest
	if !h.decode(w, r, op, &req) {
		return
	}
	if req == nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed",
			WrapKind(op, ErrValidation, errors.New("body must be a job posting object")))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", WrapKind(op, ErrValidation, err))
		return
	}

	res, err := h.predictor.PredictSingle(r.Context(), req.posting())
	if err != nil {
		h.writeServiceError(r.Context(), w, op, err, service.ErrPredictionFailed)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePredictBatch handles POST /predict/batch requests.
func (h *PredictHandler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_batch"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}

	var req []*jobPostingRequest
	if !h.decode(w, r, op, &req) {
		return
	}
	if req == nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("body must be a JSON array")))
		return
	}

	jobs := make([]model.JobPosting, len(req))
	for i, item := range req {
		if item == nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed",
				WrapKind(op, ErrValidation, fmt.Errorf("item %d: must be a job posting object", i)))
			return
		}
		if err := item.validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed",
				WrapKind(op, ErrValidation, fmt.Errorf("item %d: %w", i, err)))
			return
		}
		jobs[i] = item.posting()
	}

	res, err := h.predictor.PredictBatch(r.Context(), jobs)
	if err != nil {
		h.writeServiceError(r.Context(), w, op, err, service.ErrBatchPredictionFailed)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode reads exactly one JSON value into v. It writes the error response
// and returns false on failure.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	dec := json.NewDecoder(body)

	err := dec.Decode(v)
	if err == nil {
		var tooLarge *http.MaxBytesError
		switch rest := dec.Decode(&json.RawMessage{}); {
		case errors.Is(rest, io.EOF):
			return true
		case errors.As(rest, &tooLarge):
			err = rest
		default:
			err = errors.New("unexpected data after JSON value")
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
			WrapKind(op, ErrPayloadTooLarge, fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)))
		return false
	}
	if errors.Is(err, io.EOF) {
		err = errors.New("empty body")
	}
	writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	return false
}
