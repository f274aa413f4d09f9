package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/pkg/logger"
	"github.com/go-chi/chi"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	// Debug exposes the cause of internal errors in the response details.
	Debug bool
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an AppError inside the standard error envelope.
func (h *BaseHandler) WriteError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps a service error to a response. Unknown errors are
// logged and reported as a generic internal error.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	lg := logger.From(r.Context())

	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.Type != internal.ErrorTypeInternal {
			lg.Debug("request failed", "status", appErr.StatusCode, "code", appErr.Code)
			h.WriteError(w, appErr)
			return
		}
		lg.Error("internal error", "error", err)
		h.WriteError(w, h.internalError(appErr.Message, err))
		return
	}

	lg.Error("unhandled service error", "error", err)
	h.WriteError(w, h.internalError("internal server error", err))
}

func (h *BaseHandler) internalError(message string, cause error) *internal.AppError {
	appErr := internal.NewInternalError(message, nil)
	if h.Debug && cause != nil {
		return appErr.WithDetails(map[string]string{"cause": cause.Error()})
	}
	return appErr
}

// DecodeJSON decodes the request body, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return internal.NewValidationError("malformed JSON body", internal.ErrCodeInvalidRequest)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest).WithCause(err)
	}
	return nil
}

// IDParam reads a positive int64 URL parameter.
func (h *BaseHandler) IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationError("invalid "+name, internal.ErrCodeInvalidRequest)
	}
	return id, nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}
