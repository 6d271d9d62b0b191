package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/helpers"
	"github.com/farellandr/linkup/internal/models"
	"github.com/farellandr/linkup/internal/repository"
	"github.com/google/uuid"
)

// IdentityResolver turns user-facing addresses (emails) into internal ids.
// The two resolution steps fail with distinct messages because a client
// can act on "no such user" and "user hasn't joined this event"
// differently.
type IdentityResolver struct {
	users        repository.UserRepository
	participants repository.ParticipantRepository
}

func NewIdentityResolver(users repository.UserRepository, participants repository.ParticipantRepository) *IdentityResolver {
	return &IdentityResolver{users: users, participants: participants}
}

func (r *IdentityResolver) ResolveUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = helpers.NormalizeEmail(email)
	if !helpers.IsValidEmail(email) {
		return nil, apperror.ValidationFailed("email", "Invalid email format.")
	}

	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMsg(fmt.Sprintf("No user registered with email %s.", email))
		}
		return nil, err
	}
	return user, nil
}

func (r *IdentityResolver) ResolveParticipantByEmail(ctx context.Context, eventID uuid.UUID, email string) (*models.Participant, error) {
	user, err := r.ResolveUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	participant, err := r.participants.FindByEventAndUser(ctx, eventID, user.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMsg(fmt.Sprintf("User %s has not joined this event.", email))
		}
		return nil, err
	}
	return participant, nil
}
