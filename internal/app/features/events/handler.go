// internal/app/features/events/handler.go
package events

import (
	"encoding/json"
	"fmt"
	"net/http"

	errorsfeature "github.com/dalemusser/notifyhub/internal/app/features/errors"
	"github.com/dalemusser/notifyhub/internal/app/notifier"
	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// maxBody caps request bodies; events only carry ids.
const maxBody = 64 << 10

// Handler accepts lifecycle events from the application that owns the work
// items.
type Handler struct {
	Notifier *notifier.Service
	ErrLog   *errorsfeature.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs an events Handler.
func NewHandler(svc *notifier.Service, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Notifier: svc, ErrLog: errLog, Log: logger}
}

// decision is the JSON form of notify.Decision.
type decision struct {
	UserID    string `json:"user_id"`
	Handle    string `json:"handle"`
	Reasons   string `json:"reasons"`
	Level     string `json:"level,omitempty"`
	Recipient bool   `json:"recipient"`
	DroppedAt string `json:"dropped_at,omitempty"`
}

// Create handles POST /api/events. The event is resolved synchronously and
// handed to the dispatcher; delivery itself happens in the background, so
// success is 202.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "notify event")
	defer cancel()

	res, err := h.Notifier.Notify(ctx, req)
	if err != nil {
		h.ErrLog.Write(w, r, "notify event failed", err)
		return
	}
	errorsfeature.JSON(w, http.StatusAccepted, res)
}

// Preview handles POST /api/events/preview. It reports every candidate and
// the stage that removed it, without sending anything.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "preview event")
	defer cancel()

	decisions, err := h.Notifier.Preview(ctx, req)
	if err != nil {
		h.ErrLog.Write(w, r, "preview event failed", err)
		return
	}
	errorsfeature.JSON(w, http.StatusOK, toDecisions(decisions))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (notifier.Request, bool) {
	var req notifier.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.ErrLog.Write(w, r, "decode event", fmt.Errorf("%w: invalid JSON: %v", errorsfeature.ErrBadRequest, err))
		return notifier.Request{}, false
	}
	return req, true
}

func toDecisions(in []notify.Decision) []decision {
	out := make([]decision, 0, len(in))
	for _, d := range in {
		out = append(out, decision{
			UserID:    d.UserID.Hex(),
			Handle:    d.Handle,
			Reasons:   d.Reasons.String(),
			Level:     string(d.Level),
			Recipient: d.DroppedAt == "",
			DroppedAt: d.DroppedAt,
		})
	}
	return out
}
