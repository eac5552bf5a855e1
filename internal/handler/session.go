package handler

import (
	"context"
	"errors"
	"net/http"

	"upick/internal/location"
	"upick/internal/models"
	"upick/internal/picker"
	"upick/internal/service"
	"upick/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles pick session requests
type SessionHandler struct {
	service SessionService
}

// SessionService interface for dependency injection
type SessionService interface {
	CreateSession(context.Context, location.Locator) (*picker.Session, error)
	GetSession(context.Context, string) (*picker.Session, error)
	Pick(context.Context, string, models.SearchFilters) (*picker.Session, error)
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// CreateSessionRequest carries the device's permission answer and position
type CreateSessionRequest struct {
	Permission location.Permission `json:"permission" example:"granted"`
	Latitude   *float64            `json:"latitude" example:"37.7749"`
	Longitude  *float64            `json:"longitude" example:"-122.4194"`
}

// PickRequest carries the search filters
type PickRequest struct {
	Term  string `json:"term" example:"tacos"`
	Price string `json:"price" example:"$$"`
}

// CreateSession handles POST /sessions requests
//
//	@Summary	Start a pick session
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateSessionRequest	true	"Location permission and position"
//	@Success	201		{object}	view.View
//	@Failure	400		{object}	map[string]string
//	@Router		/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	switch req.Permission {
	case location.PermissionGranted:
		if req.Latitude == nil || req.Longitude == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required when permission is granted"})
			return
		}
	case location.PermissionDenied:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "permission must be 'granted' or 'denied'"})
		return
	}

	locator := location.Reported{Permission: req.Permission}
	if req.Latitude != nil && req.Longitude != nil {
		locator.Coordinates = &models.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	session, err := h.service.CreateSession(c.Request.Context(), locator)
	if err != nil {
		log.Error().Err(err).Msg("create session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, view.Render(session))
}

// GetSession handles GET /sessions/:id requests
//
//	@Summary	Show the current screen state of a session
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	view.View
//	@Failure	404	{object}	map[string]string
//	@Router		/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view.Render(session))
}

// Pick handles POST /sessions/:id/pick requests
//
//	@Summary	Search and pick one random restaurant
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Session ID"
//	@Param		request	body		PickRequest	false	"Search filters"
//	@Success	200		{object}	view.View
//	@Failure	400		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Failure	409		{object}	map[string]string
//	@Router		/sessions/{id}/pick [post]
func (h *SessionHandler) Pick(c *gin.Context) {
	var req PickRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	price, err := models.ParsePriceTier(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.Pick(c.Request.Context(), c.Param("id"), models.SearchFilters{Term: req.Term, Price: price})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view.Render(session))
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "a pick is already in progress"})
	case errors.Is(err, service.ErrLocationUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "location unavailable: " + location.DeniedMessage})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
