package handler

import (
	"github.com/gin-gonic/gin"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/domain/client"
)

// TimelineHandler serves the three month plan
type TimelineHandler struct {
	BaseHandler
	timeline *clientapp.TimelineService
}

// NewTimelineHandler creates a new TimelineHandler
func NewTimelineHandler(timeline *clientapp.TimelineService) *TimelineHandler {
	return &TimelineHandler{timeline: timeline}
}

// Get handles GET /timeline/:clientId
func (h *TimelineHandler) Get(c *gin.Context) {
	resp, err := h.timeline.Get(c.Request.Context(), c.Param("clientId"))
	h.respond(c, resp, err)
}

// UpdateMonth handles PUT /timeline/:clientId/months/:month
func (h *TimelineHandler) UpdateMonth(c *gin.Context) {
	month, ok := h.IntParam(c, "month")
	if !ok {
		return
	}
	var req clientapp.UpdateMonthRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.timeline.UpdateMonth(c.Request.Context(), c.Param("clientId"), month, req)
	h.respond(c, resp, err)
}

// UpdateTask handles PUT /timeline/:clientId/months/:month/weeks/:week/tasks/:task
func (h *TimelineHandler) UpdateTask(c *gin.Context) {
	month, ok := h.IntParam(c, "month")
	if !ok {
		return
	}
	week, ok := h.IntParam(c, "week")
	if !ok {
		return
	}
	task, ok := h.IntParam(c, "task")
	if !ok {
		return
	}
	var req clientapp.UpdateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.timeline.UpdateTaskStatus(c.Request.Context(), c.Param("clientId"), month, week, task, client.StepStatus(req.Status))
	h.respond(c, resp, err)
}

func (h *TimelineHandler) respond(c *gin.Context, resp *clientapp.TimelineResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
