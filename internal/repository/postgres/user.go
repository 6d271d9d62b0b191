package postgres

import (
	"context"
	"errors"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if uniqueViolation(err, "") {
			return apperror.Conflict("User already exists.")
		}
		return apperror.Internal(err, "Failed to create user.")
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", id.String())
		}
		return nil, apperror.Internal(err, "Error retrieving user.")
	}
	return &user, nil
}

func (r *UserRepository) FindByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("JoinedEvents").Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", id.String())
		}
		return nil, apperror.Internal(err, "Error retrieving user.")
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, apperror.Internal(err, "Error retrieving user.")
	}
	return &user, nil
}

func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, apperror.Internal(err, "Error checking user.")
	}
	return count > 0, nil
}

func (r *UserRepository) AppendEventHistory(ctx context.Context, userID, eventID uuid.UUID) error {
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO user_event_history (user_id, event_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, eventID,
	).Error
	if err != nil {
		return apperror.Internal(err, "Failed to record event history.")
	}
	return nil
}
