// internal/app/features/unsubscribe/handler.go
package unsubscribe

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	errorsfeature "github.com/dalemusser/notifyhub/internal/app/features/errors"
	"github.com/dalemusser/notifyhub/internal/app/notifier"
	sentnotificationstore "github.com/dalemusser/notifyhub/internal/app/store/sentnotifications"
	subscriptionstore "github.com/dalemusser/notifyhub/internal/app/store/subscriptions"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"github.com/dalemusser/notifyhub/internal/app/system/unsubscribe"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TokenVerifier turns a link token back into a reply key.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Handler struct {
	Tokens        TokenVerifier
	Sent          *sentnotificationstore.Store
	Subscriptions *subscriptionstore.Store
	SiteName      string
	ErrLog        *errorsfeature.ErrorLogger
	Log           *zap.Logger
}

func NewHandler(tokens TokenVerifier, stores notifier.Stores, siteName string, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tokens:        tokens,
		Sent:          stores.Sent,
		Subscriptions: stores.Subscriptions,
		SiteName:      siteName,
		ErrLog:        errLog,
		Log:           logger,
	}
}

var confirmTmpl = template.Must(template.New("unsubscribed").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Unsubscribed - {{.SiteName}}</title></head>
<body>
<p>You will no longer receive notifications for this {{.Kind}} unless you are mentioned or it is assigned to you.</p>
</body></html>
`))

// Unsubscribe handles GET /unsubscribe/{token}. It records subscribed=false
// for the recipient on the item the notification was about.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "unsubscribe")
	defer cancel()

	replyKey, err := h.Tokens.Verify(chi.URLParam(r, "token"))
	if err != nil {
		h.ErrLog.Write(w, r, "verify token", fmt.Errorf("%w: %v", errorsfeature.ErrBadRequest, err))
		return
	}

	marker, err := h.Sent.GetByReplyKey(ctx, replyKey)
	if errors.Is(err, sentnotificationstore.ErrNotFound) {
		err = fmt.Errorf("%w: notification no longer exists", notifier.ErrNotFound)
	}
	if err != nil {
		h.ErrLog.Write(w, r, "load sent notification", err)
		return
	}
	if marker.ItemID == nil || !subscriptionstore.ValidKind(marker.ItemType) {
		h.ErrLog.Write(w, r, "unsubscribe", fmt.Errorf("%w: notification has no subscribable item", notifier.ErrNotFound))
		return
	}

	if err := h.Subscriptions.Set(ctx, marker.ItemType, *marker.ItemID, marker.RecipientID, false); err != nil {
		h.ErrLog.Write(w, r, "save subscription", err)
		return
	}
	h.Log.Info("unsubscribed via link",
		zap.String("user_id", marker.RecipientID.Hex()),
		zap.String("item_type", marker.ItemType),
		zap.String("item_id", marker.ItemID.Hex()))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	data := struct{ SiteName, Kind string }{h.SiteName, kindLabel(marker.ItemType)}
	if err := confirmTmpl.Execute(w, data); err != nil {
		h.Log.Warn("render unsubscribe page", zap.Error(err))
	}
}

func kindLabel(itemType string) string {
	switch itemType {
	case "merge_request":
		return "merge request"
	default:
		return itemType
	}
}

var _ TokenVerifier = (*unsubscribe.Codec)(nil)
