package handler

import (
	"github.com/gin-gonic/gin"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/domain/client"
)

// OnboardingHandler serves the seven step checklist
type OnboardingHandler struct {
	BaseHandler
	onboarding *clientapp.OnboardingService
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(onboarding *clientapp.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

// Get handles GET /onboarding/:clientId
func (h *OnboardingHandler) Get(c *gin.Context) {
	resp, err := h.onboarding.Checklist(c.Request.Context(), c.Param("clientId"))
	h.respond(c, resp, err)
}

// Initialize handles POST /onboarding/:clientId/initialize
func (h *OnboardingHandler) Initialize(c *gin.Context) {
	resp, err := h.onboarding.Initialize(c.Request.Context(), c.Param("clientId"))
	h.respond(c, resp, err)
}

// UpdateStep handles PUT /onboarding/:clientId/steps/:stepId
func (h *OnboardingHandler) UpdateStep(c *gin.Context) {
	stepID, ok := h.IntParam(c, "stepId")
	if !ok {
		return
	}
	var req clientapp.UpdateStepRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.onboarding.UpdateStep(c.Request.Context(), c.Param("clientId"), stepID, client.StepStatus(req.Status))
	h.respond(c, resp, err)
}

// Next handles POST /onboarding/:clientId/next
func (h *OnboardingHandler) Next(c *gin.Context) {
	resp, err := h.onboarding.ContinueToNextStep(c.Request.Context(), c.Param("clientId"))
	h.respond(c, resp, err)
}

func (h *OnboardingHandler) respond(c *gin.Context, resp *clientapp.ChecklistResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
