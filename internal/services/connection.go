package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/helpers"
	"github.com/farellandr/linkup/internal/models"
	"github.com/farellandr/linkup/internal/repository"
	"github.com/google/uuid"
)

const (
	UserConnectionIDPrefix        = "userConnection_"
	ParticipantConnectionIDPrefix = "participantConnection_"
)

// ConnectionService manages pairwise connections in both variants: between
// registered users and between event participants. Creation is idempotent
// per ordered pair within an event; a duplicate request reports a conflict
// but still hands back the existing record so clients can recover.
type ConnectionService struct {
	events           repository.EventRepository
	users            repository.UserRepository
	participants     repository.ParticipantRepository
	userConns        repository.UserConnectionRepository
	participantConns repository.ParticipantConnectionRepository
	identity         *IdentityResolver
}

func NewConnectionService(
	events repository.EventRepository,
	users repository.UserRepository,
	participants repository.ParticipantRepository,
	userConns repository.UserConnectionRepository,
	participantConns repository.ParticipantConnectionRepository,
	identity *IdentityResolver,
) *ConnectionService {
	return &ConnectionService{
		events:           events,
		users:            users,
		participants:     participants,
		userConns:        userConns,
		participantConns: participantConns,
		identity:         identity,
	}
}

// CreateUserConnection links two registered users within an event. When the
// ordered pair already exists, the existing record is returned alongside a
// conflict error.
func (s *ConnectionService) CreateUserConnection(ctx context.Context, eventID uuid.UUID, primaryID, secondaryID, description string) (*models.UserConnection, error) {
	primary, err := parseUserID("primary_id", primaryID)
	if err != nil {
		return nil, err
	}
	secondary, err := parseUserID("secondary_id", secondaryID)
	if err != nil {
		return nil, err
	}
	// Store and match the canonical uuid spelling; otherwise a case-variant
	// of an existing pair would slip past the dedup index.
	primaryID = primary.String()
	secondaryID = secondary.String()

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, primary, "Primary user not found."); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, secondary, "Secondary user not found."); err != nil {
		return nil, err
	}

	if existing, err := s.userConns.FindByPair(ctx, eventID, primaryID, secondaryID); err == nil {
		return existing, apperror.Conflict("Connection already exists.")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	conn := &models.UserConnection{
		ID:          helpers.GenerateEntityID(UserConnectionIDPrefix),
		EventID:     eventID,
		PrimaryID:   primaryID,
		SecondaryID: secondaryID,
		Description: strings.TrimSpace(description),
	}
	if err := s.userConns.Create(ctx, conn); err != nil {
		// A racing request may have created the pair between our check and
		// the insert; surface its record the same way.
		if errors.Is(err, apperror.ErrConflict) {
			if existing, findErr := s.userConns.FindByPair(ctx, eventID, primaryID, secondaryID); findErr == nil {
				return existing, err
			}
		}
		return nil, err
	}
	return conn, nil
}

// CreateUserConnectionByEmail resolves both endpoints from email addresses
// before creating the connection.
func (s *ConnectionService) CreateUserConnectionByEmail(ctx context.Context, eventID uuid.UUID, primaryEmail, secondaryEmail, description string) (*models.UserConnection, error) {
	primary, secondary, err := s.resolveEmailPair(ctx, primaryEmail, secondaryEmail)
	if err != nil {
		return nil, err
	}
	return s.CreateUserConnection(ctx, eventID, primary.ID.String(), secondary.ID.String(), description)
}

func (s *ConnectionService) DeleteUserConnection(ctx context.Context, eventID uuid.UUID, connectionID string) (*models.UserConnection, error) {
	return s.userConns.DeleteScoped(ctx, eventID, connectionID)
}

// ListUserConnections returns every connection within the event that has
// the user on either side of the pair.
func (s *ConnectionService) ListUserConnections(ctx context.Context, eventID uuid.UUID, endpointID string) ([]models.UserConnection, error) {
	userID, err := parseUserID("endpoint_id", endpointID)
	if err != nil {
		return nil, err
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID, "User not found."); err != nil {
		return nil, err
	}
	return s.userConns.ListByEndpoint(ctx, eventID, userID.String())
}

// ListUserConnectionsByEmail resolves the endpoint from an email address
// and lists its connections.
func (s *ConnectionService) ListUserConnectionsByEmail(ctx context.Context, eventID uuid.UUID, email string) ([]models.UserConnection, error) {
	user, err := s.identity.ResolveUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.ListUserConnections(ctx, eventID, user.ID.String())
}

// CreateParticipantConnection links two participants of the same event.
func (s *ConnectionService) CreateParticipantConnection(ctx context.Context, eventID uuid.UUID, primaryID, secondaryID, description string) (*models.ParticipantConnection, error) {
	if err := validateParticipantID("primary_id", primaryID); err != nil {
		return nil, err
	}
	if err := validateParticipantID("secondary_id", secondaryID); err != nil {
		return nil, err
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, eventID, primaryID, "Primary participant not found in this event."); err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, eventID, secondaryID, "Secondary participant not found in this event."); err != nil {
		return nil, err
	}

	if existing, err := s.participantConns.FindByPair(ctx, eventID, primaryID, secondaryID); err == nil {
		return existing, apperror.Conflict("Connection already exists.")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	conn := &models.ParticipantConnection{
		ID:          helpers.GenerateEntityID(ParticipantConnectionIDPrefix),
		EventID:     eventID,
		PrimaryID:   primaryID,
		SecondaryID: secondaryID,
		Description: strings.TrimSpace(description),
	}
	if err := s.participantConns.Create(ctx, conn); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			if existing, findErr := s.participantConns.FindByPair(ctx, eventID, primaryID, secondaryID); findErr == nil {
				return existing, err
			}
		}
		return nil, err
	}
	return conn, nil
}

// CreateParticipantConnectionByEmail resolves both endpoints to the
// participants backed by the given registered users within the event.
// Guests have no email and cannot be addressed this way.
func (s *ConnectionService) CreateParticipantConnectionByEmail(ctx context.Context, eventID uuid.UUID, primaryEmail, secondaryEmail, description string) (*models.ParticipantConnection, error) {
	if err := validateEmailPair(primaryEmail, secondaryEmail); err != nil {
		return nil, err
	}
	primary, err := s.identity.ResolveParticipantByEmail(ctx, eventID, primaryEmail)
	if err != nil {
		return nil, err
	}
	secondary, err := s.identity.ResolveParticipantByEmail(ctx, eventID, secondaryEmail)
	if err != nil {
		return nil, err
	}
	return s.CreateParticipantConnection(ctx, eventID, primary.ID, secondary.ID, description)
}

func (s *ConnectionService) DeleteParticipantConnection(ctx context.Context, eventID uuid.UUID, connectionID string) (*models.ParticipantConnection, error) {
	return s.participantConns.DeleteScoped(ctx, eventID, connectionID)
}

func (s *ConnectionService) ListParticipantConnections(ctx context.Context, eventID uuid.UUID, endpointID string) ([]models.ParticipantConnection, error) {
	if err := validateParticipantID("endpoint_id", endpointID); err != nil {
		return nil, err
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, eventID, endpointID, "Participant not found in this event."); err != nil {
		return nil, err
	}
	return s.participantConns.ListByEndpoint(ctx, eventID, endpointID)
}

func (s *ConnectionService) ListParticipantConnectionsByEmail(ctx context.Context, eventID uuid.UUID, email string) ([]models.ParticipantConnection, error) {
	participant, err := s.identity.ResolveParticipantByEmail(ctx, eventID, email)
	if err != nil {
		return nil, err
	}
	return s.ListParticipantConnections(ctx, eventID, participant.ID)
}

func (s *ConnectionService) requireUser(ctx context.Context, id uuid.UUID, notFoundMsg string) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFoundMsg(notFoundMsg)
	}
	return nil
}

// requireParticipant checks both existence and event membership: a
// participant id from another event is reported as not found here.
func (s *ConnectionService) requireParticipant(ctx context.Context, eventID uuid.UUID, id, notFoundMsg string) error {
	participant, err := s.participants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFoundMsg(notFoundMsg)
		}
		return err
	}
	if participant.EventID != eventID {
		return apperror.NotFoundMsg(notFoundMsg)
	}
	return nil
}

// resolveEmailPair validates and resolves two user emails, rejecting pairs
// that normalize to the same address.
func (s *ConnectionService) resolveEmailPair(ctx context.Context, primaryEmail, secondaryEmail string) (*models.User, *models.User, error) {
	if err := validateEmailPair(primaryEmail, secondaryEmail); err != nil {
		return nil, nil, err
	}
	primary, err := s.identity.ResolveUserByEmail(ctx, primaryEmail)
	if err != nil {
		return nil, nil, err
	}
	secondary, err := s.identity.ResolveUserByEmail(ctx, secondaryEmail)
	if err != nil {
		return nil, nil, err
	}
	return primary, secondary, nil
}

func validateEmailPair(primaryEmail, secondaryEmail string) error {
	if helpers.NormalizeEmail(primaryEmail) == helpers.NormalizeEmail(secondaryEmail) {
		return apperror.ValidationFailed("secondary_email", "Connection endpoints must differ.")
	}
	return nil
}

func parseUserID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.ValidationFailed(field, fmt.Sprintf("Invalid user ID: %s.", raw))
	}
	return id, nil
}

func validateParticipantID(field, raw string) error {
	if !strings.HasPrefix(raw, ParticipantIDPrefix) || len(raw) <= len(ParticipantIDPrefix) {
		return apperror.ValidationFailed(field, fmt.Sprintf("Invalid participant ID: %s.", raw))
	}
	return nil
}
