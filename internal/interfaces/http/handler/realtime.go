package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/attractify/onboarding/internal/infrastructure/logger"
	"github.com/attractify/onboarding/internal/infrastructure/realtime"
	"github.com/attractify/onboarding/internal/interfaces/http/dto"
)

// RealtimeHandler upgrades change-notification subscribers
type RealtimeHandler struct {
	BaseHandler
	hub *realtime.Hub
}

// NewRealtimeHandler creates a new RealtimeHandler. A nil hub answers 503.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Subscribe handles GET /realtime/ws?table=&client_id=
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	if h.hub == nil {
		h.Unavailable(c, "Realtime notifications are disabled")
		return
	}

	filter, err := realtime.ParseFilter(c.Query("table"), c.Query("client_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	err = h.hub.ServeWS(c.Writer, c.Request, filter)
	switch {
	case err == nil:
	case errors.Is(err, realtime.ErrTooManyClients):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Too many realtime subscribers")
	case errors.Is(err, realtime.ErrHubClosed):
		h.Unavailable(c, "Realtime notifications are shutting down")
	default:
		// The upgrader has already answered the peer
		logger.GetGinLogger(c).Debug("Realtime upgrade failed", zap.Error(err))
	}
}
