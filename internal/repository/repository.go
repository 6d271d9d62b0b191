package repository

import (
	"context"

	"github.com/farellandr/linkup/internal/models"
	"github.com/google/uuid"
)

type ListOptions struct {
	Page  int
	Limit int
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindByJoinCode(ctx context.Context, code string) (*models.Event, error)
	JoinCodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, opts ListOptions) ([]models.Event, int64, error)
	Update(ctx context.Context, event *models.Event) error
	// DeleteOwned removes an event only if ownerID created it.
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error
	UpdateStateOwned(ctx context.Context, id, ownerID uuid.UUID, state models.EventState) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// AppendEventHistory records that the user joined the event. Idempotent.
	AppendEventHistory(ctx context.Context, userID, eventID uuid.UUID) error
}

type ParticipantRepository interface {
	// CreateIfBelowCapacity atomically inserts the participant provided the
	// event's participant count is below maxParticipants. It returns
	// apperror.ErrCapacity when the event is full and apperror.ErrConflict
	// when the (event, user) or (event, name) uniqueness constraint fires.
	CreateIfBelowCapacity(ctx context.Context, participant *models.Participant, maxParticipants int) error
	FindByID(ctx context.Context, id string) (*models.Participant, error)
	FindByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Participant, error)
	FindByEventAndName(ctx context.Context, eventID uuid.UUID, name string) (*models.Participant, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
}

type UserConnectionRepository interface {
	Create(ctx context.Context, conn *models.UserConnection) error
	FindByPair(ctx context.Context, eventID uuid.UUID, primaryID, secondaryID string) (*models.UserConnection, error)
	// DeleteScoped deletes only when the record belongs to eventID, and
	// returns the deleted record.
	DeleteScoped(ctx context.Context, eventID uuid.UUID, id string) (*models.UserConnection, error)
	ListByEndpoint(ctx context.Context, eventID uuid.UUID, endpointID string) ([]models.UserConnection, error)
}

type ParticipantConnectionRepository interface {
	Create(ctx context.Context, conn *models.ParticipantConnection) error
	FindByPair(ctx context.Context, eventID uuid.UUID, primaryID, secondaryID string) (*models.ParticipantConnection, error)
	DeleteScoped(ctx context.Context, eventID uuid.UUID, id string) (*models.ParticipantConnection, error)
	ListByEndpoint(ctx context.Context, eventID uuid.UUID, endpointID string) ([]models.ParticipantConnection, error)
}
