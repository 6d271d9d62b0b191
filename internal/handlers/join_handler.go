package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farellandr/linkup/internal/helpers"
	"github.com/farellandr/linkup/internal/services"
)

type JoinRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Name   string `json:"name" binding:"required"`
}

type GuestJoinRequest struct {
	Name string `json:"name" binding:"required"`
}

// JoinHandler admits users and guests into events.
type JoinHandler struct {
	admission *services.AdmissionService
}

func NewJoinHandler(admission *services.AdmissionService) *JoinHandler {
	return &JoinHandler{admission: admission}
}

func (h *JoinHandler) JoinEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	participant, err := h.admission.JoinAsUser(c.Request.Context(), eventID, userID, req.Name)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Joined event successfully.",
		"participant": participant,
	})
}

func (h *JoinHandler) JoinEventAsGuest(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req GuestJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	participant, err := h.admission.JoinAsGuest(c.Request.Context(), eventID, req.Name)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Joined event successfully.",
		"participant": participant,
	})
}
