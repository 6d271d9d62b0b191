package services

import (
	"context"
	"errors"
	"strings"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/helpers"
	"github.com/farellandr/linkup/internal/models"
	"github.com/farellandr/linkup/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const ParticipantIDPrefix = "participant_"

// AdmissionService decides whether a participant may join an event and
// performs the admission. Preconditions are checked in a fixed order so
// concurrent callers see deterministic failures; the final insert is the
// single atomic step that actually enforces capacity and uniqueness.
type AdmissionService struct {
	events       repository.EventRepository
	users        repository.UserRepository
	participants repository.ParticipantRepository
	notifier     Notifier
	logger       *logrus.Logger
}

func NewAdmissionService(
	events repository.EventRepository,
	users repository.UserRepository,
	participants repository.ParticipantRepository,
	notifier Notifier,
	logger *logrus.Logger,
) *AdmissionService {
	return &AdmissionService{
		events:       events,
		users:        users,
		participants: participants,
		notifier:     notifier,
		logger:       logger,
	}
}

// JoinAsUser admits a registered user into an event.
func (s *AdmissionService) JoinAsUser(ctx context.Context, eventID, userID uuid.UUID, name string) (*models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Display name is required.")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.checkCapacity(ctx, event); err != nil {
		return nil, err
	}

	if _, err := s.participants.FindByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, apperror.Conflict("You have already joined this event.")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	participant := &models.Participant{
		ID:      helpers.GenerateEntityID(ParticipantIDPrefix),
		EventID: eventID,
		UserID:  &userID,
		Name:    name,
	}

	if err := s.participants.CreateIfBelowCapacity(ctx, participant, event.MaxParticipants); err != nil {
		return nil, err
	}

	// Best-effort denormalization: the admission is already committed, so
	// a history failure is reported but never rolls it back.
	if err := s.users.AppendEventHistory(ctx, userID, eventID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_id": eventID,
			"user_id":  userID,
		}).Warn("failed to append event history")
	}

	s.publishJoin(ctx, eventID, participant)
	return participant, nil
}

// JoinAsGuest admits a guest (no backing registered user) into an event.
func (s *AdmissionService) JoinAsGuest(ctx context.Context, eventID uuid.UUID, name string) (*models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Display name is required.")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.checkCapacity(ctx, event); err != nil {
		return nil, err
	}

	participant := &models.Participant{
		ID:      helpers.GenerateEntityID(ParticipantIDPrefix),
		EventID: eventID,
		Name:    name,
	}

	if err := s.participants.CreateIfBelowCapacity(ctx, participant, event.MaxParticipants); err != nil {
		return nil, err
	}

	s.publishJoin(ctx, eventID, participant)
	return participant, nil
}

// checkCapacity is a pre-check only; the authoritative enforcement is the
// conditional insert in the participant store. It exists so a full event
// rejects cheaply without generating ids or reaching the insert path.
func (s *AdmissionService) checkCapacity(ctx context.Context, event *models.Event) error {
	count, err := s.participants.CountByEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if count >= int64(event.MaxParticipants) {
		return apperror.CapacityExceeded("Event is full.")
	}
	return nil
}

// publishJoin notifies live observers. Notification failure never rolls
// back the admission; it is logged with full context for the operator.
func (s *AdmissionService) publishJoin(ctx context.Context, eventID uuid.UUID, participant *models.Participant) {
	if err := s.notifier.ParticipantJoined(ctx, eventID, participant.ID, participant.Name); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_id":       eventID,
			"participant_id": participant.ID,
		}).Error("failed to publish participant-joined notification")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"event_id":       eventID,
		"participant_id": participant.ID,
		"name":           participant.Name,
	}).Info("participant joined")
}
