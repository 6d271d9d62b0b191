package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ParticipantJoinedEvent is the named event published on an event's
	// channel whenever an admission commits.
	ParticipantJoinedEvent = "participant-joined"

	publishTimeout = 5 * time.Second
)

// EventChannel is the pub/sub channel name for one event's live feed.
func EventChannel(eventID uuid.UUID) string {
	return fmt.Sprintf("event-%s", eventID)
}

type JoinNotification struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
}

// Notifier publishes participant-joined events to an event-scoped channel.
// Delivery is at-most-once and best-effort: observers not subscribed at
// publish time receive nothing.
type Notifier interface {
	ParticipantJoined(ctx context.Context, eventID uuid.UUID, participantID, name string) error
}

type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) ParticipantJoined(ctx context.Context, eventID uuid.UUID, participantID, name string) error {
	payload, err := json.Marshal(JoinNotification{
		ParticipantID: participantID,
		Name:          name,
	})
	if err != nil {
		return fmt.Errorf("encoding join notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.client.Publish(ctx, EventChannel(eventID), payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", EventChannel(eventID), err)
	}
	return nil
}
