package handler

import (
	"context"
	"net/http"
	"strconv"

	"upick/internal/models"
	"upick/internal/picker"
	"upick/internal/view"

	"github.com/gin-gonic/gin"
)

// PickHandler handles one-shot pick requests
type PickHandler struct {
	service OneShotService
}

// OneShotService interface for dependency injection
type OneShotService interface {
	PickOnce(context.Context, models.Coordinates, models.SearchFilters) (*picker.Session, error)
}

// NewPickHandler creates a new one-shot pick handler
func NewPickHandler(svc OneShotService) *PickHandler {
	return &PickHandler{service: svc}
}

// Pick handles GET /pick requests
//
//	@Summary	Pick one random open restaurant near a position
//	@Tags		pick
//	@Produce	json
//	@Param		lat		query		number	true	"Latitude"
//	@Param		lon		query		number	true	"Longitude"
//	@Param		term	query		string	false	"Search term"
//	@Param		price	query		string	false	"Price tier: $, $$, $$$ or any"
//	@Success	200		{object}	view.View
//	@Failure	400		{object}	map[string]string
//	@Router		/pick [get]
func (h *PickHandler) Pick(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'lat' and 'lon'"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude format"})
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude format"})
		return
	}

	at := models.Coordinates{Latitude: lat, Longitude: lon}
	if !at.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	price, err := models.ParsePriceTier(c.Query("price"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.PickOnce(c.Request.Context(), at, models.SearchFilters{Term: c.Query("term"), Price: price})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view.Render(session))
}
