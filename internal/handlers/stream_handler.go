package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/farellandr/linkup/internal/helpers"
	"github.com/farellandr/linkup/internal/services"
)

// StreamHandler bridges the event's pub/sub feed to SSE clients. Each
// request holds its own subscription for the lifetime of the connection;
// only joins published while the client is connected are delivered.
type StreamHandler struct {
	events *services.EventService
	redis  *redis.Client
}

func NewStreamHandler(events *services.EventService, redisClient *redis.Client) *StreamHandler {
	return &StreamHandler{events: events, redis: redisClient}
}

func (h *StreamHandler) StreamJoins(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	if _, err := h.events.GetByID(c.Request.Context(), eventID); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	pubsub := h.redis.Subscribe(c.Request.Context(), services.EventChannel(eventID))
	defer pubsub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	messages := pubsub.Channel()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-messages:
			if !open {
				return false
			}
			c.SSEvent(services.ParticipantJoinedEvent, msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
