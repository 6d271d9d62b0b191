package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/models"
	"github.com/farellandr/linkup/internal/repository"
)

func validEventInput() CreateEventInput {
	return CreateEventInput{
		Title:           "Demo Day",
		Description:     "Pitch your startup.",
		StartTime:       time.Now().Add(24 * time.Hour),
		EndTime:         time.Now().Add(27 * time.Hour),
		MaxParticipants: 50,
	}
}

func TestEventServiceCreate(t *testing.T) {
	ctx := context.Background()
	joinCodePattern := regexp.MustCompile(`^[1-9][0-9]{7}$`)

	t.Run("assigns an 8-digit join code", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())
		ownerID := uuid.New()

		event, err := service.Create(ctx, ownerID, validEventInput())
		require.NoError(t, err)
		assert.Regexp(t, joinCodePattern, event.JoinCode)
		assert.Equal(t, ownerID, event.UserID)
		assert.Equal(t, models.EventStateUpcoming, event.CurrentState)

		found, err := service.GetByJoinCode(ctx, event.JoinCode)
		require.NoError(t, err)
		assert.Equal(t, event.ID, found.ID)
	})

	t.Run("join codes are unique across events", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())

		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			event, err := service.Create(ctx, uuid.New(), validEventInput())
			require.NoError(t, err)
			assert.False(t, seen[event.JoinCode], "join code %s assigned twice", event.JoinCode)
			seen[event.JoinCode] = true
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())

		tests := []struct {
			name   string
			mutate func(*CreateEventInput)
		}{
			{"empty title", func(in *CreateEventInput) { in.Title = "  " }},
			{"zero max participants", func(in *CreateEventInput) { in.MaxParticipants = 0 }},
			{"negative max participants", func(in *CreateEventInput) { in.MaxParticipants = -5 }},
			{"end before start", func(in *CreateEventInput) { in.EndTime = in.StartTime.Add(-time.Hour) }},
			{"end equals start", func(in *CreateEventInput) { in.EndTime = in.StartTime }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				input := validEventInput()
				tt.mutate(&input)
				_, err := service.Create(ctx, uuid.New(), input)
				assert.ErrorIs(t, err, apperror.ErrValidation)
			})
		}
	})
}

func TestEventServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can update fields", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())
		ownerID := uuid.New()

		event, err := service.Create(ctx, ownerID, validEventInput())
		require.NoError(t, err)

		title := "Demo Day 2026"
		max := 75
		updated, err := service.Update(ctx, event.ID, ownerID, UpdateEventInput{Title: &title, MaxParticipants: &max})
		require.NoError(t, err)
		assert.Equal(t, "Demo Day 2026", updated.Title)
		assert.Equal(t, 75, updated.MaxParticipants)
		assert.Equal(t, event.JoinCode, updated.JoinCode)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())

		event, err := service.Create(ctx, uuid.New(), validEventInput())
		require.NoError(t, err)

		title := "Hijacked"
		_, err = service.Update(ctx, event.ID, uuid.New(), UpdateEventInput{Title: &title})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("cannot shrink capacity below the admitted count", func(t *testing.T) {
		events := newMemEventRepo()
		participants := newMemParticipantRepo()
		service := NewEventService(events, participants)
		ownerID := uuid.New()

		event, err := service.Create(ctx, ownerID, validEventInput())
		require.NoError(t, err)

		for _, name := range []string{"Alice", "Bob", "Carol"} {
			participant := &models.Participant{
				ID:      "participant_" + name,
				EventID: event.ID,
				Name:    name,
			}
			require.NoError(t, participants.CreateIfBelowCapacity(ctx, participant, event.MaxParticipants))
		}

		tooSmall := 2
		_, err = service.Update(ctx, event.ID, ownerID, UpdateEventInput{MaxParticipants: &tooSmall})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		exact := 3
		updated, err := service.Update(ctx, event.ID, ownerID, UpdateEventInput{MaxParticipants: &exact})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.MaxParticipants)
	})

	t.Run("rejects times that cross", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())
		ownerID := uuid.New()

		event, err := service.Create(ctx, ownerID, validEventInput())
		require.NoError(t, err)

		badEnd := event.StartTime.Add(-time.Hour)
		_, err = service.Update(ctx, event.ID, ownerID, UpdateEventInput{EndTime: &badEnd})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestEventServiceDelete(t *testing.T) {
	ctx := context.Background()
	events := newMemEventRepo()
	service := NewEventService(events, newMemParticipantRepo())
	ownerID := uuid.New()

	event, err := service.Create(ctx, ownerID, validEventInput())
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, event.ID, uuid.New()), apperror.ErrForbidden)
	require.NoError(t, service.Delete(ctx, event.ID, ownerID))

	_, err = service.GetByID(ctx, event.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestEventServiceUpdateState(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the lifecycle forward", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())
		ownerID := uuid.New()

		event, err := service.Create(ctx, ownerID, validEventInput())
		require.NoError(t, err)

		inProgress, err := service.UpdateState(ctx, event.ID, ownerID, models.EventStateInProgress)
		require.NoError(t, err)
		assert.Equal(t, models.EventStateInProgress, inProgress.CurrentState)

		completed, err := service.UpdateState(ctx, event.ID, ownerID, models.EventStateCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.EventStateCompleted, completed.CurrentState)
	})

	t.Run("rejects skips and reversals", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())
		ownerID := uuid.New()

		event, err := service.Create(ctx, ownerID, validEventInput())
		require.NoError(t, err)

		_, err = service.UpdateState(ctx, event.ID, ownerID, models.EventStateCompleted)
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = service.UpdateState(ctx, event.ID, ownerID, models.EventStateInProgress)
		require.NoError(t, err)

		_, err = service.UpdateState(ctx, event.ID, ownerID, models.EventStateUpcoming)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		events := newMemEventRepo()
		service := NewEventService(events, newMemParticipantRepo())

		event, err := service.Create(ctx, uuid.New(), validEventInput())
		require.NoError(t, err)

		_, err = service.UpdateState(ctx, event.ID, uuid.New(), models.EventStateInProgress)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestEventServiceList(t *testing.T) {
	ctx := context.Background()
	events := newMemEventRepo()
	service := NewEventService(events, newMemParticipantRepo())

	for i := 0; i < 12; i++ {
		_, err := service.Create(ctx, uuid.New(), validEventInput())
		require.NoError(t, err)
	}

	page, total, err := service.List(ctx, repository.ListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, page, 10)

	rest, _, err := service.List(ctx, repository.ListOptions{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	// Out-of-range options fall back to defaults.
	defaulted, _, err := service.List(ctx, repository.ListOptions{Page: 0, Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, defaulted, 10)
}
