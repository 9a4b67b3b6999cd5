package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/runtime"
	"github.com/coderunr/judge/internal/types"
	"github.com/coderunr/judge/internal/validator"
)

// Version is reported by GET /
const Version = "judge v1.0.0"

// MaxTimeout bounds the per-request timeout_ms a client may ask for
const MaxTimeout = 60 * time.Second

// Handler contains the dependencies for HTTP handlers
type Handler struct {
	executor  validator.Executor
	validator *validator.Validator
	runtimes  *runtime.Manager
	logger    *logrus.Logger
}

// NewHandler creates a new handler instance
func NewHandler(executor validator.Executor, runtimes *runtime.Manager, logger *logrus.Logger) *Handler {
	return &Handler{
		executor:  executor,
		validator: validator.New(executor),
		runtimes:  runtimes,
		logger:    logger,
	}
}

// GetVersion returns the API version
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, map[string]string{"message": Version}, http.StatusOK)
}

// GetRuntimes returns the detected toolchains
func (h *Handler) GetRuntimes(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.runtimes.List(), http.StatusOK)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Execute runs the entry point of a submission once
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	var request types.ExecuteRequest
	if !h.decode(w, r, &request) {
		return
	}

	lang, timeout, err := h.prepare(request.Language, request.SourceCode, request.Version, request.TimeoutMs)
	if err != nil {
		h.sendKindError(w, err)
		return
	}

	args := request.Arguments
	if args == nil && len(request.Input) > 0 {
		values, err := jsonval.Arguments(request.Input)
		if err != nil {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		args = make([]json.RawMessage, len(values))
		for i, v := range values {
			args[i] = v.Raw()
		}
	}

	result := h.executor.Execute(r.Context(), types.ExecutionRequest{
		ID:             middleware.GetReqID(r.Context()),
		SourceCode:     request.SourceCode,
		Language:       lang,
		Arguments:      args,
		Timeout:        timeout,
		ExpectedOutput: request.ExpectedOutput,
	})
	h.sendJSON(w, result, http.StatusOK)
}

// Validate judges a submission against its test cases
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var request types.ValidateRequest
	if !h.decode(w, r, &request) {
		return
	}

	sub, err := h.submission(&request)
	if err != nil {
		h.sendKindError(w, err)
		return
	}

	h.sendJSON(w, h.validator.Validate(r.Context(), sub), http.StatusOK)
}

// submission turns a validate request into a Submission
func (h *Handler) submission(request *types.ValidateRequest) (types.Submission, error) {
	lang, timeout, err := h.prepare(request.Language, request.SourceCode, request.Version, request.TimeoutMs)
	if err != nil {
		return types.Submission{}, err
	}
	return types.Submission{
		SourceCode: request.SourceCode,
		Language:   lang,
		TestCases:  request.TestCases,
		Timeout:    timeout,
	}, nil
}

// prepare checks the fields shared by execute and validate requests
func (h *Handler) prepare(language, source, version string, timeoutMs *int) (types.Language, time.Duration, error) {
	if language == "" {
		return "", 0, fmt.Errorf("language is required as a string")
	}
	if source == "" {
		return "", 0, fmt.Errorf("source_code is required as a string")
	}

	lang, err := types.ParseLanguage(language)
	if err != nil {
		return "", 0, err
	}
	if err := h.runtimes.Check(lang, version); err != nil {
		return "", 0, err
	}

	var timeout time.Duration
	if timeoutMs != nil {
		if *timeoutMs <= 0 {
			return "", 0, fmt.Errorf("timeout_ms must be positive")
		}
		timeout = time.Duration(*timeoutMs) * time.Millisecond
		if timeout > MaxTimeout {
			return "", 0, fmt.Errorf("timeout_ms cannot exceed the configured limit of %d", MaxTimeout.Milliseconds())
		}
	}
	return lang, timeout, nil
}

// decode reads a JSON body, answering the client itself on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		h.sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return false
	}
	return true
}

// sendKindError maps a request error to its HTTP status
func (h *Handler) sendKindError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var judgeErr *types.Error
	if errors.As(err, &judgeErr) && judgeErr.Kind == types.KindToolchainUnavailable {
		status = http.StatusServiceUnavailable
	}
	h.sendError(w, err.Error(), status)
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, types.ErrorResponse{Message: message, Code: statusCode}, statusCode)
}

// sendJSON sends a JSON response
func (h *Handler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode JSON response")
	}
}
