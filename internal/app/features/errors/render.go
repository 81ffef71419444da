// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/notifyhub/internal/app/notifier"
	"github.com/dalemusser/notifyhub/internal/app/notify"
	"go.uber.org/zap"
)

// ErrBadRequest marks request validation failures raised by handlers.
var ErrBadRequest = stderrors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"error": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// ErrorLogger maps errors to HTTP responses and logs the ones that are the
// server's fault.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case stderrors.Is(err, ErrBadRequest), stderrors.Is(err, notify.ErrMalformedEvent):
		return http.StatusBadRequest
	case stderrors.Is(err, notifier.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, notify.ErrCollaboratorUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Write sends the response for err. Client errors echo the message; server
// errors are logged and answered generically.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := Status(err)
	if status < http.StatusInternalServerError {
		Message(w, status, err.Error())
		return
	}
	e.log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status))
	if status == http.StatusServiceUnavailable {
		Message(w, status, "temporarily unavailable, retry later")
		return
	}
	Message(w, status, "internal error")
}
