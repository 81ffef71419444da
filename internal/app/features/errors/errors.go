// internal/app/features/errors/errors.go
package errors

import "net/http"

// Handler serves JSON fallbacks for unmatched routes.
// No DB needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers routes the router does not know.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	Message(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Message(w, http.StatusMethodNotAllowed, "method not allowed")
}
