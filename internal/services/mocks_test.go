package services

import (
	"context"
	"sync"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/models"
	"github.com/farellandr/linkup/internal/repository"
	"github.com/google/uuid"
)

// In-memory repositories mirroring the store-layer semantics the services
// rely on: conditional inserts under a mutex so concurrency tests exercise
// the same atomicity guarantees the SQL layer provides.

type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]*models.Event)}
}

func (r *memEventRepo) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.JoinCode == event.JoinCode {
			return apperror.Conflict("Join code already in use.")
		}
	}
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, apperror.NotFound("event", id.String())
	}
	cp := *event
	return &cp, nil
}

func (r *memEventRepo) FindByJoinCode(_ context.Context, code string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.JoinCode == code {
			cp := *event
			return &cp, nil
		}
	}
	return nil, apperror.NotFoundMsg("Event not found for this join code.")
}

func (r *memEventRepo) JoinCodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEventRepo) List(_ context.Context, opts repository.ListOptions) ([]models.Event, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.Event, 0, len(r.events))
	for _, event := range r.events {
		all = append(all, *event)
	}
	total := int64(len(all))
	start := (opts.Page - 1) * opts.Limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memEventRepo) Update(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return apperror.NotFound("event", event.ID.String())
	}
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) DeleteOwned(_ context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok || event.UserID != ownerID {
		return apperror.Forbidden("Event not found or you don't have permission to delete.")
	}
	delete(r.events, id)
	return nil
}

func (r *memEventRepo) UpdateStateOwned(_ context.Context, id, ownerID uuid.UUID, state models.EventState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok || event.UserID != ownerID {
		return apperror.Forbidden("Event not found or you don't have permission to update.")
	}
	event.CurrentState = state
	return nil
}

type memUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*models.User
	history map[uuid.UUID][]uuid.UUID

	historyErr error // when set, AppendEventHistory fails with it
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:   make(map[uuid.UUID]*models.User),
		history: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.Conflict("User already exists.")
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id.String())
	}
	cp := *user
	return &cp, nil
}

func (r *memUserRepo) FindByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.FindByID(ctx, id)
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (r *memUserRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *memUserRepo) AppendEventHistory(_ context.Context, userID, eventID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.historyErr != nil {
		return r.historyErr
	}
	for _, id := range r.history[userID] {
		if id == eventID {
			return nil
		}
	}
	r.history[userID] = append(r.history[userID], eventID)
	return nil
}

func (r *memUserRepo) historyFor(userID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.history[userID]...)
}

type memParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*models.Participant
}

func newMemParticipantRepo() *memParticipantRepo {
	return &memParticipantRepo{participants: make(map[string]*models.Participant)}
}

// CreateIfBelowCapacity reproduces the store's atomic count-check-insert
// under a single lock, including the uniqueness rules on (event, user) and
// (event, name).
func (r *memParticipantRepo) CreateIfBelowCapacity(_ context.Context, participant *models.Participant, maxParticipants int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int
	for _, p := range r.participants {
		if p.EventID == participant.EventID {
			count++
		}
	}
	if count >= maxParticipants {
		return apperror.CapacityExceeded("Event is full.")
	}
	for _, p := range r.participants {
		if p.EventID != participant.EventID {
			continue
		}
		if participant.UserID != nil && p.UserID != nil && *p.UserID == *participant.UserID {
			return apperror.Conflict("You have already joined this event.")
		}
		if p.Name == participant.Name {
			return apperror.Conflict("This name is already taken in this event.")
		}
	}

	cp := *participant
	r.participants[participant.ID] = &cp
	return nil
}

func (r *memParticipantRepo) FindByID(_ context.Context, id string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	participant, ok := r.participants[id]
	if !ok {
		return nil, apperror.NotFound("participant", id)
	}
	cp := *participant
	return &cp, nil
}

func (r *memParticipantRepo) FindByEventAndUser(_ context.Context, eventID, userID uuid.UUID) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.EventID == eventID && p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("participant", userID.String())
}

func (r *memParticipantRepo) FindByEventAndName(_ context.Context, eventID uuid.UUID, name string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.EventID == eventID && p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("participant", name)
}

func (r *memParticipantRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Participant
	for _, p := range r.participants {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memParticipantRepo) CountByEvent(_ context.Context, eventID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.participants {
		if p.EventID == eventID {
			count++
		}
	}
	return count, nil
}

type memUserConnRepo struct {
	mu    sync.Mutex
	conns map[string]*models.UserConnection
}

func newMemUserConnRepo() *memUserConnRepo {
	return &memUserConnRepo{conns: make(map[string]*models.UserConnection)}
}

func (r *memUserConnRepo) Create(_ context.Context, conn *models.UserConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.conns {
		if existing.EventID == conn.EventID && existing.PrimaryID == conn.PrimaryID && existing.SecondaryID == conn.SecondaryID {
			return apperror.Conflict("Connection already exists.")
		}
	}
	cp := *conn
	r.conns[conn.ID] = &cp
	return nil
}

func (r *memUserConnRepo) FindByPair(_ context.Context, eventID uuid.UUID, primaryID, secondaryID string) (*models.UserConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conn := range r.conns {
		if conn.EventID == eventID && conn.PrimaryID == primaryID && conn.SecondaryID == secondaryID {
			cp := *conn
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("connection", primaryID+"/"+secondaryID)
}

func (r *memUserConnRepo) DeleteScoped(_ context.Context, eventID uuid.UUID, id string) (*models.UserConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	if !ok || conn.EventID != eventID {
		return nil, apperror.NotFoundMsg("Connection not found for this event.")
	}
	delete(r.conns, id)
	return conn, nil
}

func (r *memUserConnRepo) ListByEndpoint(_ context.Context, eventID uuid.UUID, endpointID string) ([]models.UserConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.UserConnection
	for _, conn := range r.conns {
		if conn.EventID == eventID && (conn.PrimaryID == endpointID || conn.SecondaryID == endpointID) {
			out = append(out, *conn)
		}
	}
	return out, nil
}

type memParticipantConnRepo struct {
	mu    sync.Mutex
	conns map[string]*models.ParticipantConnection
}

func newMemParticipantConnRepo() *memParticipantConnRepo {
	return &memParticipantConnRepo{conns: make(map[string]*models.ParticipantConnection)}
}

func (r *memParticipantConnRepo) Create(_ context.Context, conn *models.ParticipantConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.conns {
		if existing.EventID == conn.EventID && existing.PrimaryID == conn.PrimaryID && existing.SecondaryID == conn.SecondaryID {
			return apperror.Conflict("Connection already exists.")
		}
	}
	cp := *conn
	r.conns[conn.ID] = &cp
	return nil
}

func (r *memParticipantConnRepo) FindByPair(_ context.Context, eventID uuid.UUID, primaryID, secondaryID string) (*models.ParticipantConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conn := range r.conns {
		if conn.EventID == eventID && conn.PrimaryID == primaryID && conn.SecondaryID == secondaryID {
			cp := *conn
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("connection", primaryID+"/"+secondaryID)
}

func (r *memParticipantConnRepo) DeleteScoped(_ context.Context, eventID uuid.UUID, id string) (*models.ParticipantConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	if !ok || conn.EventID != eventID {
		return nil, apperror.NotFoundMsg("Connection not found for this event.")
	}
	delete(r.conns, id)
	return conn, nil
}

func (r *memParticipantConnRepo) ListByEndpoint(_ context.Context, eventID uuid.UUID, endpointID string) ([]models.ParticipantConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ParticipantConnection
	for _, conn := range r.conns {
		if conn.EventID == eventID && (conn.PrimaryID == endpointID || conn.SecondaryID == endpointID) {
			out = append(out, *conn)
		}
	}
	return out, nil
}

// recordingNotifier captures published notifications in order.
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []JoinNotification
	eventIDs      []uuid.UUID
	err           error // when set, ParticipantJoined fails with it
}

func (n *recordingNotifier) ParticipantJoined(_ context.Context, eventID uuid.UUID, participantID, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notifications = append(n.notifications, JoinNotification{ParticipantID: participantID, Name: name})
	n.eventIDs = append(n.eventIDs, eventID)
	return nil
}

func (n *recordingNotifier) recorded() []JoinNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]JoinNotification(nil), n.notifications...)
}

var (
	_ repository.EventRepository                 = (*memEventRepo)(nil)
	_ repository.UserRepository                  = (*memUserRepo)(nil)
	_ repository.ParticipantRepository           = (*memParticipantRepo)(nil)
	_ repository.UserConnectionRepository        = (*memUserConnRepo)(nil)
	_ repository.ParticipantConnectionRepository = (*memParticipantConnRepo)(nil)
	_ Notifier                                   = (*recordingNotifier)(nil)
)
