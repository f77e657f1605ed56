package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/domain/client"
)

// AnalyticsHandler serves the GA4 and GTM setup
type AnalyticsHandler struct {
	BaseHandler
	analytics *clientapp.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics *clientapp.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Get handles GET /analytics/:clientId
func (h *AnalyticsHandler) Get(c *gin.Context) {
	resp, err := h.analytics.Get(c.Request.Context(), c.Param("clientId"))
	h.respond(c, resp, err)
}

// Configure handles PUT /analytics/:clientId
func (h *AnalyticsHandler) Configure(c *gin.Context) {
	var req clientapp.ConfigureAnalyticsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.analytics.Configure(c.Request.Context(), c.Param("clientId"), req)
	h.respond(c, resp, err)
}

// UpdateGA4Step handles PUT /analytics/:clientId/ga4/:stepId
func (h *AnalyticsHandler) UpdateGA4Step(c *gin.Context) {
	h.updateStep(c, h.analytics.UpdateGA4Step)
}

// UpdateGTMStep handles PUT /analytics/:clientId/gtm/:stepId
func (h *AnalyticsHandler) UpdateGTMStep(c *gin.Context) {
	h.updateStep(c, h.analytics.UpdateGTMStep)
}

// TrackingCode handles GET /analytics/:clientId/tracking-code
func (h *AnalyticsHandler) TrackingCode(c *gin.Context) {
	resp, err := h.analytics.TrackingCode(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type stepUpdater func(ctx context.Context, clientID string, stepID int, status client.StepStatus) (*clientapp.AnalyticsResponse, error)

func (h *AnalyticsHandler) updateStep(c *gin.Context, update stepUpdater) {
	stepID, ok := h.IntParam(c, "stepId")
	if !ok {
		return
	}
	var req clientapp.UpdateSetupStepRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := update(c.Request.Context(), c.Param("clientId"), stepID, client.StepStatus(req.Status))
	h.respond(c, resp, err)
}

func (h *AnalyticsHandler) respond(c *gin.Context, resp *clientapp.AnalyticsResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
