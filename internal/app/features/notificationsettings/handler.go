// internal/app/features/notificationsettings/handler.go
package notificationsettings

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	errorsfeature "github.com/dalemusser/notifyhub/internal/app/features/errors"
	"github.com/dalemusser/notifyhub/internal/app/notifier"
	groupstore "github.com/dalemusser/notifyhub/internal/app/store/groups"
	projectstore "github.com/dalemusser/notifyhub/internal/app/store/projects"
	settingsstore "github.com/dalemusser/notifyhub/internal/app/store/settings"
	userstore "github.com/dalemusser/notifyhub/internal/app/store/users"
	"github.com/dalemusser/notifyhub/internal/app/system/normalize"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler reads and writes a user's notification levels.
type Handler struct {
	Users    *userstore.Store
	Groups   *groupstore.Store
	Projects *projectstore.Store
	Settings *settingsstore.Store
	Notifier *notifier.Service
	ErrLog   *errorsfeature.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs a notification settings Handler.
func NewHandler(stores notifier.Stores, svc *notifier.Service, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    stores.Users,
		Groups:   stores.Groups,
		Projects: stores.Projects,
		Settings: stores.Settings,
		Notifier: svc,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type scopedLevel struct {
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	Level      string `json:"level"`
}

type settingsResponse struct {
	UserID       string        `json:"user_id"`
	DefaultLevel string        `json:"default_level"`
	Settings     []scopedLevel `json:"settings"`
	// EffectiveLevel is set when the request names a project.
	EffectiveLevel string `json:"effective_level,omitempty"`
}

// updateRequest changes one level. An empty SourceType targets the account
// default.
type updateRequest struct {
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	Level      string `json:"level"`
}

// Get handles GET /api/users/{userID}/notification-settings[?project_id=].
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get notification settings")
	defer cancel()

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	resp, err := h.describe(r, user)
	if err != nil {
		h.ErrLog.Write(w, r, "list notification settings", err)
		return
	}

	if raw := normalize.QueryParam(r.URL.Query().Get("project_id")); raw != "" {
		projectID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.Write(w, r, "parse project id", fmt.Errorf("%w: invalid project_id", errorsfeature.ErrBadRequest))
			return
		}
		level, err := h.Notifier.EffectiveLevel(ctx, user.ID, projectID)
		if err != nil {
			h.ErrLog.Write(w, r, "effective level", err)
			return
		}
		resp.EffectiveLevel = string(level)
	}
	errorsfeature.JSON(w, http.StatusOK, resp)
}

// Update handles PUT /api/users/{userID}/notification-settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update notification settings")
	defer cancel()

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		h.ErrLog.Write(w, r, "decode settings", fmt.Errorf("%w: invalid JSON", errorsfeature.ErrBadRequest))
		return
	}
	level := normalize.Level(req.Level)
	if !models.ValidLevel(level) {
		h.ErrLog.Write(w, r, "validate level", fmt.Errorf("%w: unknown level %q", errorsfeature.ErrBadRequest, req.Level))
		return
	}

	var err error
	switch req.SourceType {
	case "":
		if level == models.LevelGlobal {
			// The account default has no broader scope to defer to.
			level = ""
		}
		err = h.Users.SetNotificationLevel(ctx, user.ID, level)
	case models.SourceProject, models.SourceGroup:
		var sourceID primitive.ObjectID
		sourceID, err = h.sourceExists(r, req.SourceType, req.SourceID)
		if err == nil {
			err = h.Settings.Save(ctx, user.ID, req.SourceType, sourceID, level)
		}
	default:
		err = fmt.Errorf("%w: source_type must be empty, %q or %q", errorsfeature.ErrBadRequest, models.SourceProject, models.SourceGroup)
	}
	if err != nil {
		h.ErrLog.Write(w, r, "save notification level", err)
		return
	}

	h.Log.Info("notification level updated",
		zap.String("user_id", user.ID.Hex()),
		zap.String("source_type", req.SourceType),
		zap.String("source_id", req.SourceID),
		zap.String("level", level))

	if req.SourceType == "" {
		user.NotificationLevel = level
	}
	resp, err := h.describe(r, user)
	if err != nil {
		h.ErrLog.Write(w, r, "list notification settings", err)
		return
	}
	errorsfeature.JSON(w, http.StatusOK, resp)
}

func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		h.ErrLog.Write(w, r, "parse user id", fmt.Errorf("%w: invalid user id", errorsfeature.ErrBadRequest))
		return models.User{}, false
	}
	u, err := h.Users.GetByID(r.Context(), id)
	if errors.Is(err, userstore.ErrNotFound) {
		err = fmt.Errorf("%w: user %s", notifier.ErrNotFound, id.Hex())
	}
	if err != nil {
		h.ErrLog.Write(w, r, "load user", err)
		return models.User{}, false
	}
	return u, true
}

func (h *Handler) sourceExists(r *http.Request, sourceType, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid source_id", errorsfeature.ErrBadRequest)
	}
	var missing bool
	if sourceType == models.SourceProject {
		_, err = h.Projects.GetByID(r.Context(), id)
		missing = errors.Is(err, projectstore.ErrNotFound)
	} else {
		_, err = h.Groups.GetByID(r.Context(), id)
		missing = errors.Is(err, groupstore.ErrNotFound)
	}
	if missing {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %s", notifier.ErrNotFound, sourceType, raw)
	}
	return id, err
}

func (h *Handler) describe(r *http.Request, u models.User) (settingsResponse, error) {
	stored, err := h.Settings.ListByUser(r.Context(), u.ID)
	if err != nil {
		return settingsResponse{}, err
	}
	resp := settingsResponse{
		UserID:       u.ID.Hex(),
		DefaultLevel: u.NotificationLevel,
		Settings:     make([]scopedLevel, 0, len(stored)),
	}
	if resp.DefaultLevel == "" {
		resp.DefaultLevel = models.LevelParticipating
	}
	for _, s := range stored {
		resp.Settings = append(resp.Settings, scopedLevel{
			SourceType: s.SourceType,
			SourceID:   s.SourceID.Hex(),
			Level:      s.Level,
		})
	}
	return resp, nil
}
