package postgres

import (
	"context"
	"errors"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// CreateIfBelowCapacity inserts the participant inside a transaction that
// holds a row lock on the event, so the count-then-insert is serialized
// against concurrent admissions and the participant count can never exceed
// maxParticipants. The unique indexes on (event_id, user_id) and
// (event_id, name) backstop the double-join and duplicate-name races.
func (r *ParticipantRepository) CreateIfBelowCapacity(ctx context.Context, participant *models.Participant, maxParticipants int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", participant.EventID).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("event", participant.EventID.String())
			}
			return apperror.Internal(err, "Error retrieving event.")
		}

		var count int64
		if err := tx.Model(&models.Participant{}).
			Where("event_id = ?", participant.EventID).
			Count(&count).Error; err != nil {
			return apperror.Internal(err, "Error counting participants.")
		}
		if count >= int64(maxParticipants) {
			return apperror.CapacityExceeded("Event is full.")
		}

		if err := tx.Create(participant).Error; err != nil {
			if uniqueViolation(err, "idx_participants_event_user") {
				return apperror.Conflict("You have already joined this event.")
			}
			if uniqueViolation(err, "idx_participants_event_name") {
				return apperror.Conflict("This name is already taken in this event.")
			}
			return apperror.Internal(err, "Failed to create participant.")
		}
		return nil
	})
	return err
}

func (r *ParticipantRepository) FindByID(ctx context.Context, id string) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("participant", id)
		}
		return nil, apperror.Internal(err, "Error retrieving participant.")
	}
	return &participant, nil
}

func (r *ParticipantRepository) FindByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("participant", userID.String())
		}
		return nil, apperror.Internal(err, "Error retrieving participant.")
	}
	return &participant, nil
}

func (r *ParticipantRepository) FindByEventAndName(ctx context.Context, eventID uuid.UUID, name string) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).Where("event_id = ? AND name = ?", eventID, name).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("participant", name)
		}
		return nil, apperror.Internal(err, "Error retrieving participant.")
	}
	return &participant, nil
}

func (r *ParticipantRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at ASC").Find(&participants).Error
	if err != nil {
		return nil, apperror.Internal(err, "Error retrieving participants.")
	}
	return participants, nil
}

func (r *ParticipantRepository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).Where("event_id = ?", eventID).Count(&count).Error
	if err != nil {
		return 0, apperror.Internal(err, "Error counting participants.")
	}
	return count, nil
}
