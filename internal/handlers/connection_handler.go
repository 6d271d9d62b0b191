package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/farellandr/linkup/internal/helpers"
	"github.com/farellandr/linkup/internal/services"
)

type CreateConnectionRequest struct {
	PrimaryID   string `json:"primary_id" binding:"required"`
	SecondaryID string `json:"secondary_id" binding:"required"`
	Description string `json:"description"`
}

type CreateConnectionByEmailRequest struct {
	PrimaryEmail   string `json:"primary_email" binding:"required,email"`
	SecondaryEmail string `json:"secondary_email" binding:"required,email"`
	Description    string `json:"description"`
}

// ConnectionHandler exposes both connection variants under an event:
// user-to-user and participant-to-participant. Duplicate creates respond
// 409 but include the existing record so clients can reconcile.
type ConnectionHandler struct {
	connections *services.ConnectionService
}

func NewConnectionHandler(connections *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

func (h *ConnectionHandler) CreateUserConnection(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	conn, err := h.connections.CreateUserConnection(c.Request.Context(), eventID, req.PrimaryID, req.SecondaryID, req.Description)
	respondConnectionCreate(c, conn, err)
}

func (h *ConnectionHandler) CreateUserConnectionByEmail(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req CreateConnectionByEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	conn, err := h.connections.CreateUserConnectionByEmail(c.Request.Context(), eventID, req.PrimaryEmail, req.SecondaryEmail, req.Description)
	respondConnectionCreate(c, conn, err)
}

func (h *ConnectionHandler) DeleteUserConnection(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	conn, err := h.connections.DeleteUserConnection(c.Request.Context(), eventID, c.Param("connection_id"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Connection deleted successfully.",
		"connection": conn,
	})
}

// ListUserConnections lists connections touching one endpoint, addressed
// either by ?endpoint_id= or by ?email=.
func (h *ConnectionHandler) ListUserConnections(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	endpointID := c.Query("endpoint_id")
	email := c.Query("email")
	if endpointID == "" && email == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Either endpoint_id or email is required.")
		return
	}

	var conns interface{}
	var err error
	if endpointID != "" {
		conns, err = h.connections.ListUserConnections(c.Request.Context(), eventID, endpointID)
	} else {
		conns, err = h.connections.ListUserConnectionsByEmail(c.Request.Context(), eventID, email)
	}
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (h *ConnectionHandler) CreateParticipantConnection(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	conn, err := h.connections.CreateParticipantConnection(c.Request.Context(), eventID, req.PrimaryID, req.SecondaryID, req.Description)
	respondConnectionCreate(c, conn, err)
}

func (h *ConnectionHandler) CreateParticipantConnectionByEmail(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req CreateConnectionByEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	conn, err := h.connections.CreateParticipantConnectionByEmail(c.Request.Context(), eventID, req.PrimaryEmail, req.SecondaryEmail, req.Description)
	respondConnectionCreate(c, conn, err)
}

func (h *ConnectionHandler) DeleteParticipantConnection(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	conn, err := h.connections.DeleteParticipantConnection(c.Request.Context(), eventID, c.Param("connection_id"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Connection deleted successfully.",
		"connection": conn,
	})
}

func (h *ConnectionHandler) ListParticipantConnections(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	endpointID := c.Query("endpoint_id")
	email := c.Query("email")
	if endpointID == "" && email == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Either endpoint_id or email is required.")
		return
	}

	var conns interface{}
	var err error
	if endpointID != "" {
		conns, err = h.connections.ListParticipantConnections(c.Request.Context(), eventID, endpointID)
	} else {
		conns, err = h.connections.ListParticipantConnectionsByEmail(c.Request.Context(), eventID, email)
	}
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

// respondConnectionCreate handles the create contract shared by both
// variants: 201 on success, 409 with the existing record on a duplicate.
func respondConnectionCreate[T any](c *gin.Context, conn *T, err error) {
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) && conn != nil {
			c.JSON(http.StatusConflict, gin.H{
				"message":    "Connection already exists.",
				"connection": conn,
			})
			return
		}
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Connection created successfully.",
		"connection": conn,
	})
}
