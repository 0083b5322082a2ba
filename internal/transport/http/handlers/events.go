package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/usecase"
)

// EventsHandler serves the recent security event log to operators.
type EventsHandler struct {
	events *usecase.EventRecorder
}

// NewEventsHandler constructs EventsHandler.
func NewEventsHandler(events *usecase.EventRecorder) *EventsHandler {
	return &EventsHandler{events: events}
}

// RegisterRoutes binds event log routes.
func (h *EventsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/events", h.recent)
}

func (h *EventsHandler) recent(c *gin.Context) {
	limit := domain.EventRetentionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "limit must be a positive integer"))
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	events, err := h.events.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "event log unavailable"))
		return
	}

	views := make([]SecurityEventView, 0, len(events))
	for _, event := range events {
		views = append(views, SecurityEventView{
			ID:         event.ID,
			Kind:       string(event.Kind),
			At:         event.At,
			Identifier: event.Identifier,
			Success:    event.Success,
			Reason:     event.Reason,
			Details:    event.Details,
		})
	}

	c.JSON(http.StatusOK, gin.H{"events": views, "count": len(views)})
}
