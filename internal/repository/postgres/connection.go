package postgres

import (
	"context"
	"errors"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The two connection repositories are deliberately parallel: the variants
// share shape and rules but reference different entity types, and keeping
// them as separate tables keeps the unique pair index per variant.

type UserConnectionRepository struct {
	db *gorm.DB
}

func NewUserConnectionRepository(db *gorm.DB) *UserConnectionRepository {
	return &UserConnectionRepository{db: db}
}

func (r *UserConnectionRepository) Create(ctx context.Context, conn *models.UserConnection) error {
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		if uniqueViolation(err, "idx_user_conn_pair") {
			return apperror.Conflict("Connection already exists.")
		}
		return apperror.Internal(err, "Failed to create connection.")
	}
	return nil
}

func (r *UserConnectionRepository) FindByPair(ctx context.Context, eventID uuid.UUID, primaryID, secondaryID string) (*models.UserConnection, error) {
	var conn models.UserConnection
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND primary_id = ? AND secondary_id = ?", eventID, primaryID, secondaryID).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("connection", primaryID+"/"+secondaryID)
		}
		return nil, apperror.Internal(err, "Error retrieving connection.")
	}
	return &conn, nil
}

func (r *UserConnectionRepository) DeleteScoped(ctx context.Context, eventID uuid.UUID, id string) (*models.UserConnection, error) {
	var conn models.UserConnection
	err := r.db.WithContext(ctx).Where("event_id = ? AND id = ?", eventID, id).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundMsg("Connection not found for this event.")
		}
		return nil, apperror.Internal(err, "Error retrieving connection.")
	}

	result := r.db.WithContext(ctx).Where("event_id = ? AND id = ?", eventID, id).Delete(&models.UserConnection{})
	if result.Error != nil {
		return nil, apperror.Internal(result.Error, "Failed to delete connection.")
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFoundMsg("Connection not found for this event.")
	}
	return &conn, nil
}

func (r *UserConnectionRepository) ListByEndpoint(ctx context.Context, eventID uuid.UUID, endpointID string) ([]models.UserConnection, error) {
	var conns []models.UserConnection
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND (primary_id = ? OR secondary_id = ?)", eventID, endpointID, endpointID).
		Order("created_at ASC").
		Find(&conns).Error
	if err != nil {
		return nil, apperror.Internal(err, "Error retrieving connections.")
	}
	return conns, nil
}

type ParticipantConnectionRepository struct {
	db *gorm.DB
}

func NewParticipantConnectionRepository(db *gorm.DB) *ParticipantConnectionRepository {
	return &ParticipantConnectionRepository{db: db}
}

func (r *ParticipantConnectionRepository) Create(ctx context.Context, conn *models.ParticipantConnection) error {
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		if uniqueViolation(err, "idx_participant_conn_pair") {
			return apperror.Conflict("Connection already exists.")
		}
		return apperror.Internal(err, "Failed to create connection.")
	}
	return nil
}

func (r *ParticipantConnectionRepository) FindByPair(ctx context.Context, eventID uuid.UUID, primaryID, secondaryID string) (*models.ParticipantConnection, error) {
	var conn models.ParticipantConnection
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND primary_id = ? AND secondary_id = ?", eventID, primaryID, secondaryID).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("connection", primaryID+"/"+secondaryID)
		}
		return nil, apperror.Internal(err, "Error retrieving connection.")
	}
	return &conn, nil
}

func (r *ParticipantConnectionRepository) DeleteScoped(ctx context.Context, eventID uuid.UUID, id string) (*models.ParticipantConnection, error) {
	var conn models.ParticipantConnection
	err := r.db.WithContext(ctx).Where("event_id = ? AND id = ?", eventID, id).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundMsg("Connection not found for this event.")
		}
		return nil, apperror.Internal(err, "Error retrieving connection.")
	}

	result := r.db.WithContext(ctx).Where("event_id = ? AND id = ?", eventID, id).Delete(&models.ParticipantConnection{})
	if result.Error != nil {
		return nil, apperror.Internal(result.Error, "Failed to delete connection.")
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFoundMsg("Connection not found for this event.")
	}
	return &conn, nil
}

func (r *ParticipantConnectionRepository) ListByEndpoint(ctx context.Context, eventID uuid.UUID, endpointID string) ([]models.ParticipantConnection, error) {
	var conns []models.ParticipantConnection
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND (primary_id = ? OR secondary_id = ?)", eventID, endpointID, endpointID).
		Order("created_at ASC").
		Find(&conns).Error
	if err != nil {
		return nil, apperror.Internal(err, "Error retrieving connections.")
	}
	return conns, nil
}
