package handler

import (
	"github.com/gin-gonic/gin"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/domain/client"
)

// RecordingHandler serves content recording sessions
type RecordingHandler struct {
	BaseHandler
	recording *clientapp.RecordingService
}

// NewRecordingHandler creates a new RecordingHandler
func NewRecordingHandler(recording *clientapp.RecordingService) *RecordingHandler {
	return &RecordingHandler{recording: recording}
}

// Options handles GET /recording/options
func (h *RecordingHandler) Options(c *gin.Context) {
	h.Success(c, gin.H{
		"cadence":        h.recording.CadenceOptions(),
		"quality_levels": []client.QualityLevel{client.QualityExcellent, client.QualityGood, client.QualityFair, client.QualityPoor},
	})
}

// QualityCheck handles POST /recording/quality-check
func (h *RecordingHandler) QualityCheck(c *gin.Context) {
	var req clientapp.QualityCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.Success(c, h.recording.EvaluateQuality(req.Ratings))
}

// Upcoming handles GET /recording/upcoming?limit=
func (h *RecordingHandler) Upcoming(c *gin.Context) {
	limit, ok := h.IntQuery(c, "limit", 0)
	if !ok {
		return
	}
	h.Success(c, nonNil(h.recording.Upcoming(c.Request.Context(), limit)))
}

// ListSessions handles GET /recording/:clientId/sessions
func (h *RecordingHandler) ListSessions(c *gin.Context) {
	sessions, err := h.recording.List(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nonNil(sessions))
}

// Schedule handles POST /recording/:clientId/sessions
func (h *RecordingHandler) Schedule(c *gin.Context) {
	var req clientapp.ScheduleSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	session, err := h.recording.Schedule(c.Request.Context(), c.Param("clientId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// UpdateSession handles PUT /recording/:clientId/sessions/:sessionId
func (h *RecordingHandler) UpdateSession(c *gin.Context) {
	var req clientapp.UpdateSessionStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	session, err := h.recording.UpdateStatus(c.Request.Context(), c.Param("clientId"), c.Param("sessionId"), client.SessionStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Cancel handles POST /recording/:clientId/sessions/:sessionId/cancel
func (h *RecordingHandler) Cancel(c *gin.Context) {
	session, err := h.recording.Cancel(c.Request.Context(), c.Param("clientId"), c.Param("sessionId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// AssetURL handles POST /recording/:clientId/sessions/:sessionId/asset-url
func (h *RecordingHandler) AssetURL(c *gin.Context) {
	var req clientapp.AssetUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.recording.AssetUploadURL(c.Request.Context(), c.Param("clientId"), c.Param("sessionId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
