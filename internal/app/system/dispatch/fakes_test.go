package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/notifyhub/internal/app/system/mailer"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type markerKey struct {
	event     string
	recipient primitive.ObjectID
}

// memMarkers is an in-memory MarkerStore.
type memMarkers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.SentNotification
	keys map[markerKey]primitive.ObjectID
	fail error
}

func newMemMarkers() *memMarkers {
	return &memMarkers{
		byID: map[primitive.ObjectID]*models.SentNotification{},
		keys: map[markerKey]primitive.ObjectID{},
	}
}

func (m *memMarkers) Record(_ context.Context, sn models.SentNotification) (models.SentNotification, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return models.SentNotification{}, false, m.fail
	}
	k := markerKey{sn.EventID, sn.RecipientID}
	if id, ok := m.keys[k]; ok {
		return *m.byID[id], false, nil
	}
	sn.ID = primitive.NewObjectID()
	sn.ReplyKey = "reply-" + sn.ID.Hex()
	sn.Status = models.DeliveryQueued
	m.byID[sn.ID] = &sn
	m.keys[k] = sn.ID
	return sn, true, nil
}

func (m *memMarkers) with(id primitive.ObjectID, fn func(*models.SentNotification)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sn, ok := m.byID[id]
	if !ok {
		return errors.New("marker not found")
	}
	fn(sn)
	return nil
}

func (m *memMarkers) MarkAttempt(_ context.Context, id primitive.ObjectID) error {
	return m.with(id, func(sn *models.SentNotification) { sn.Attempts++ })
}

func (m *memMarkers) MarkSent(_ context.Context, id primitive.ObjectID) error {
	return m.with(id, func(sn *models.SentNotification) {
		sn.Status = models.DeliverySent
		sn.LastError = ""
	})
}

func (m *memMarkers) MarkFailed(_ context.Context, id primitive.ObjectID, lastErr string) error {
	return m.with(id, func(sn *models.SentNotification) {
		sn.Status = models.DeliveryFailed
		sn.LastError = lastErr
	})
}

func (m *memMarkers) get(event string, recipient primitive.ObjectID) models.SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.keys[markerKey{event, recipient}]
	if !ok {
		return models.SentNotification{}
	}
	return *m.byID[id]
}

// memUsers is an in-memory UserLookup and ActorLookup.
type memUsers map[primitive.ObjectID]models.User

func (u memUsers) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if usr, ok := u[id]; ok {
			out = append(out, usr)
		}
	}
	return out, nil
}

func (u memUsers) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	usr, ok := u[id]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return usr, nil
}

// scriptedSender fails the first failures[recipient] sends to a recipient.
type scriptedSender struct {
	mu       sync.Mutex
	failures map[primitive.ObjectID]int
	err      error
	sent     map[primitive.ObjectID]int
	calls    map[primitive.ObjectID]int
}

func newScriptedSender() *scriptedSender {
	return &scriptedSender{
		failures: map[primitive.ObjectID]int{},
		err:      errors.New("smtp: 451 try again later"),
		sent:     map[primitive.ObjectID]int{},
		calls:    map[primitive.ObjectID]int{},
	}
}

func (s *scriptedSender) Name() string { return "test" }

func (s *scriptedSender) Send(_ context.Context, d Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := d.Recipient.ID
	s.calls[id]++
	if s.failures[id] != 0 {
		if s.failures[id] > 0 {
			s.failures[id]--
		}
		return s.err
	}
	s.sent[id]++
	return nil
}

func (s *scriptedSender) sentTo(id primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[id]
}

func (s *scriptedSender) callsTo(id primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// memMailer records composed emails.
type memMailer struct {
	mu     sync.Mutex
	emails []mailer.Email
}

func (m *memMailer) Send(_ context.Context, e mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails = append(m.emails, e)
	return nil
}

type memProjects map[primitive.ObjectID]models.Project

func (p memProjects) GetByID(_ context.Context, id primitive.ObjectID) (models.Project, error) {
	pr, ok := p[id]
	if !ok {
		return models.Project{}, errors.New("project not found")
	}
	return pr, nil
}

type memItems map[primitive.ObjectID]models.WorkItem

func (i memItems) GetByID(_ context.Context, id primitive.ObjectID) (models.WorkItem, error) {
	w, ok := i[id]
	if !ok {
		return models.WorkItem{}, errors.New("item not found")
	}
	return w, nil
}

type prefixTokens struct{}

func (prefixTokens) Issue(replyKey string) (string, error) { return "tok-" + replyKey, nil }
