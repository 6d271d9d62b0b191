package postgres

import (
	"context"
	"errors"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/linkup/internal/repository"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		if uniqueViolation(err, "idx_events_join_code") {
			return apperror.Conflict("Join code already in use.")
		}
		return apperror.Internal(err, "Failed to create event.")
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("event", id.String())
		}
		return nil, apperror.Internal(err, "Error retrieving event.")
	}
	return &event, nil
}

func (r *EventRepository) FindByJoinCode(ctx context.Context, code string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("event", code)
		}
		return nil, apperror.Internal(err, "Error retrieving event.")
	}
	return &event, nil
}

func (r *EventRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("join_code = ?", code).Count(&count).Error
	if err != nil {
		return false, apperror.Internal(err, "Error checking join code.")
	}
	return count > 0, nil
}

func (r *EventRepository) List(ctx context.Context, opts repository.ListOptions) ([]models.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, apperror.Internal(err, "Error retrieving events.")
	}

	var events []models.Event
	offset := (opts.Page - 1) * opts.Limit
	err := query.Offset(offset).Limit(opts.Limit).Order("created_at DESC").Find(&events).Error
	if err != nil {
		return nil, 0, apperror.Internal(err, "Error retrieving events.")
	}
	return events, totalCount, nil
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return apperror.Internal(err, "Failed to update event.")
	}
	return nil
}

func (r *EventRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Event{})
	if result.Error != nil {
		return apperror.Internal(result.Error, "Failed to delete event.")
	}
	if result.RowsAffected == 0 {
		return apperror.Forbidden("Event not found or you don't have permission to delete.")
	}
	return nil
}

func (r *EventRepository) UpdateStateOwned(ctx context.Context, id, ownerID uuid.UUID, state models.EventState) error {
	result := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("current_state", state)
	if result.Error != nil {
		return apperror.Internal(result.Error, "Failed to update event state.")
	}
	if result.RowsAffected == 0 {
		return apperror.Forbidden("Event not found or you don't have permission to update.")
	}
	return nil
}
