package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/farellandr/linkup/internal/helpers"
	"github.com/farellandr/linkup/internal/models"
	"github.com/farellandr/linkup/internal/repository"
	"github.com/farellandr/linkup/internal/services"
)

type UpdateStateRequest struct {
	State string `json:"state" binding:"required"`
}

type EventHandler struct {
	events       *services.EventService
	participants repository.ParticipantRepository
}

func NewEventHandler(events *services.EventService, participants repository.ParticipantRepository) *EventHandler {
	return &EventHandler{events: events, participants: participants}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")

	startTime, err := time.Parse(time.RFC3339, c.PostForm("start_time"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid start time format.")
		return
	}
	endTime, err := time.Parse(time.RFC3339, c.PostForm("end_time"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid end time format.")
		return
	}

	maxParticipants, err := helpers.StringToInt(c.PostForm("max_participants"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid max participants.")
		return
	}

	input := services.CreateEventInput{
		Title:           title,
		Description:     description,
		StartTime:       startTime,
		EndTime:         endTime,
		MaxParticipants: maxParticipants,
	}

	bannerFile, err := c.FormFile("banner")
	if err == nil {
		bannerPath, err := helpers.UploadFile(c, bannerFile, "event_banners")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		input.BannerPath = bannerPath
	}

	event, err := h.events.Create(c.Request.Context(), userID, input)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Event created successfully.",
		"event_id":  event.ID,
		"join_code": event.JoinCode,
	})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// GetEventByJoinCode looks up an event by its 8-digit join code, the way
// attendees discover events.
func (h *EventHandler) GetEventByJoinCode(c *gin.Context) {
	event, err := h.events.GetByJoinCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	events, totalCount, err := h.events.List(c.Request.Context(), repository.ListOptions{Page: pageNum, Limit: limitNum})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":      events,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var input services.UpdateEventInput
	if title, exists := c.GetPostForm("title"); exists {
		input.Title = &title
	}
	if description, exists := c.GetPostForm("description"); exists {
		input.Description = &description
	}
	if startTimeStr, exists := c.GetPostForm("start_time"); exists {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid start time format.")
			return
		}
		input.StartTime = &startTime
	}
	if endTimeStr, exists := c.GetPostForm("end_time"); exists {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid end time format.")
			return
		}
		input.EndTime = &endTime
	}
	if maxStr, exists := c.GetPostForm("max_participants"); exists {
		maxParticipants, err := helpers.StringToInt(maxStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid max participants.")
			return
		}
		input.MaxParticipants = &maxParticipants
	}

	bannerFile, err := c.FormFile("banner")
	if err == nil {
		bannerPath, err := helpers.UploadFile(c, bannerFile, "event_banners")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		input.BannerPath = &bannerPath
	}

	event, err := h.events.Update(c.Request.Context(), eventID, userID, input)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	if err := h.events.Delete(c.Request.Context(), eventID, userID); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully.",
	})
}

// UpdateEventState advances the event lifecycle. Only the host may do
// this, and only forward: UPCOMING -> IN_PROGRESS -> COMPLETED.
func (h *EventHandler) UpdateEventState(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req UpdateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	event, err := h.events.UpdateState(c.Request.Context(), eventID, userID, models.EventState(req.State))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event state updated successfully.",
		"event":   event,
	})
}

// GetEventQR renders the event's join code as a PNG QR code for display
// at the venue.
func (h *EventHandler) GetEventQR(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	png, err := qrcode.Encode(event.JoinCode, qrcode.Medium, 256)
	if err != nil {
		logrus.WithError(err).Error("failed to encode join code QR")
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *EventHandler) ListParticipants(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	if _, err := h.events.GetByID(c.Request.Context(), eventID); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	participants, err := h.participants.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"participants": participants,
		"total":        len(participants),
	})
}

func eventIDParam(c *gin.Context) (uuid.UUID, bool) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return uuid.Nil, false
	}
	return eventID, true
}
