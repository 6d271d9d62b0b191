package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/helpers"
	"github.com/farellandr/linkup/internal/models"
	"github.com/farellandr/linkup/internal/repository"
	"github.com/google/uuid"
)

// joinCodeRetries bounds the generate-and-check loop for fresh join codes.
// The code space holds 90 million values, so exhausting the retries means
// something is badly wrong with the store, not bad luck.
const joinCodeRetries = 5

// CreateEventInput carries the host-supplied fields of a new event.
type CreateEventInput struct {
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	MaxParticipants int
	BannerPath      string
}

// UpdateEventInput carries the mutable fields of an event. Nil pointers
// mean "leave unchanged".
type UpdateEventInput struct {
	Title           *string
	Description     *string
	StartTime       *time.Time
	EndTime         *time.Time
	MaxParticipants *int
	BannerPath      *string
}

type EventService struct {
	events       repository.EventRepository
	participants repository.ParticipantRepository
}

func NewEventService(events repository.EventRepository, participants repository.ParticipantRepository) *EventService {
	return &EventService{events: events, participants: participants}
}

// Create validates the input, assigns a unique 8-digit join code and
// persists the event with ownerID as its host.
func (s *EventService) Create(ctx context.Context, ownerID uuid.UUID, input CreateEventInput) (*models.Event, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, apperror.ValidationFailed("title", "Title is required.")
	}
	if input.MaxParticipants <= 0 {
		return nil, apperror.ValidationFailed("max_participants", "Max participants must be greater than zero.")
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, apperror.ValidationFailed("end_time", "End time must be after start time.")
	}

	for attempt := 0; attempt < joinCodeRetries; attempt++ {
		code := helpers.GenerateJoinCode()
		taken, err := s.events.JoinCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		event := &models.Event{
			ID:              uuid.New(),
			Title:           input.Title,
			Description:     input.Description,
			JoinCode:        code,
			StartTime:       input.StartTime,
			EndTime:         input.EndTime,
			MaxParticipants: input.MaxParticipants,
			CurrentState:    models.EventStateUpcoming,
			BannerPath:      input.BannerPath,
			UserID:          ownerID,
		}
		err = s.events.Create(ctx, event)
		if err == nil {
			return event, nil
		}
		// The unique index may still fire if another event grabbed the
		// code between the check and the insert; retry with a fresh one.
		if errors.Is(err, apperror.ErrConflict) {
			continue
		}
		return nil, err
	}
	return nil, apperror.Internal(
		fmt.Errorf("no unused join code after %d attempts", joinCodeRetries),
		"Failed to allocate a join code.",
	)
}

func (s *EventService) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *EventService) GetByJoinCode(ctx context.Context, code string) (*models.Event, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.ValidationFailed("join_code", "Join code is required.")
	}
	return s.events.FindByJoinCode(ctx, code)
}

func (s *EventService) List(ctx context.Context, opts repository.ListOptions) ([]models.Event, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 10
	}
	return s.events.List(ctx, opts)
}

// Update applies the provided fields to an event owned by ownerID. The
// join code and current state are not touched here.
func (s *EventService) Update(ctx context.Context, id, ownerID uuid.UUID, input UpdateEventInput) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.UserID != ownerID {
		return nil, apperror.Forbidden("You don't have permission to update this event.")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "Title is required.")
		}
		event.Title = title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.StartTime != nil {
		event.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		event.EndTime = *input.EndTime
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants <= 0 {
			return nil, apperror.ValidationFailed("max_participants", "Max participants must be greater than zero.")
		}
		// Shrinking below the admitted count would leave the capacity
		// invariant standing violated.
		count, err := s.participants.CountByEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		if int64(*input.MaxParticipants) < count {
			return nil, apperror.ValidationFailed("max_participants",
				fmt.Sprintf("Max participants cannot be lower than the %d already admitted.", count))
		}
		event.MaxParticipants = *input.MaxParticipants
	}
	if input.BannerPath != nil {
		event.BannerPath = *input.BannerPath
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, apperror.ValidationFailed("end_time", "End time must be after start time.")
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.events.DeleteOwned(ctx, id, ownerID)
}

// UpdateState advances an event through its lifecycle. Only forward
// transitions are allowed: UPCOMING -> IN_PROGRESS -> COMPLETED.
func (s *EventService) UpdateState(ctx context.Context, id, ownerID uuid.UUID, state models.EventState) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !validTransition(event.CurrentState, state) {
		return nil, apperror.ValidationFailed("state",
			fmt.Sprintf("Cannot transition event from %s to %s.", event.CurrentState, state))
	}

	if err := s.events.UpdateStateOwned(ctx, id, ownerID, state); err != nil {
		return nil, err
	}
	event.CurrentState = state
	return event, nil
}

func validTransition(from, to models.EventState) bool {
	switch from {
	case models.EventStateUpcoming:
		return to == models.EventStateInProgress
	case models.EventStateInProgress:
		return to == models.EventStateCompleted
	default:
		return false
	}
}
