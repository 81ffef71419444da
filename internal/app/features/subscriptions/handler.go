// internal/app/features/subscriptions/handler.go
package subscriptions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	errorsfeature "github.com/dalemusser/notifyhub/internal/app/features/errors"
	"github.com/dalemusser/notifyhub/internal/app/notifier"
	subscriptionstore "github.com/dalemusser/notifyhub/internal/app/store/subscriptions"
	userstore "github.com/dalemusser/notifyhub/internal/app/store/users"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Users         *userstore.Store
	Subscriptions *subscriptionstore.Store
	ErrLog        *errorsfeature.ErrorLogger
	Log           *zap.Logger
}

func NewHandler(stores notifier.Stores, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         stores.Users,
		Subscriptions: stores.Subscriptions,
		ErrLog:        errLog,
		Log:           logger,
	}
}

// setRequest is an explicit subscribe or unsubscribe. Subscribed is a
// pointer so an omitted flag is rejected rather than read as false.
type setRequest struct {
	Kind       string `json:"kind"`
	SubjectID  string `json:"subject_id"`
	UserID     string `json:"user_id"`
	Subscribed *bool  `json:"subscribed"`
}

// Set handles PUT /api/subscriptions.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "set subscription")
	defer cancel()

	var req setRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		h.ErrLog.Write(w, r, "decode subscription", fmt.Errorf("%w: invalid JSON", errorsfeature.ErrBadRequest))
		return
	}
	subjectID, userID, err := req.validate()
	if err != nil {
		h.ErrLog.Write(w, r, "validate subscription", err)
		return
	}

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			err = fmt.Errorf("%w: user %s", notifier.ErrNotFound, req.UserID)
		}
		h.ErrLog.Write(w, r, "load user", err)
		return
	}

	if err := h.Subscriptions.Set(ctx, req.Kind, subjectID, userID, *req.Subscribed); err != nil {
		h.ErrLog.Write(w, r, "save subscription", err)
		return
	}

	h.Log.Info("subscription updated",
		zap.String("kind", req.Kind),
		zap.String("subject_id", req.SubjectID),
		zap.String("user_id", req.UserID),
		zap.Bool("subscribed", *req.Subscribed))
	w.WriteHeader(http.StatusNoContent)
}

func (req setRequest) validate() (subjectID, userID primitive.ObjectID, err error) {
	if !subscriptionstore.ValidKind(req.Kind) {
		return subjectID, userID, fmt.Errorf("%w: unknown kind %q", errorsfeature.ErrBadRequest, req.Kind)
	}
	if req.Subscribed == nil {
		return subjectID, userID, fmt.Errorf("%w: subscribed is required", errorsfeature.ErrBadRequest)
	}
	if subjectID, err = primitive.ObjectIDFromHex(req.SubjectID); err != nil {
		return subjectID, userID, fmt.Errorf("%w: invalid subject_id", errorsfeature.ErrBadRequest)
	}
	if userID, err = primitive.ObjectIDFromHex(req.UserID); err != nil {
		return subjectID, userID, fmt.Errorf("%w: invalid user_id", errorsfeature.ErrBadRequest)
	}
	return subjectID, userID, nil
}
