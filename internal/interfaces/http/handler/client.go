package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/infrastructure/export"
)

// ClientHandler serves the client roster, exports and reports
type ClientHandler struct {
	BaseHandler
	clients   *clientapp.ClientService
	analytics *clientapp.AnalyticsService
	report    export.ReportOptions
	now       func() time.Time
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clients *clientapp.ClientService, analytics *clientapp.AnalyticsService) *ClientHandler {
	return &ClientHandler{
		clients:   clients,
		analytics: analytics,
		report:    export.DefaultReportOptions(),
		now:       time.Now,
	}
}

// List handles GET /clients?search=&status=&page=&page_size=
func (h *ClientHandler) List(c *gin.Context) {
	var filter clientapp.ClientListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	SuccessPage(c, h.clients.List(c.Request.Context(), filter))
}

// Get handles GET /clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	cl, err := h.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cl)
}

// Create handles POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req clientapp.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cl, err := h.clients.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cl)
}

// Update handles PUT /clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	var req clientapp.UpdateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cl, err := h.clients.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cl)
}

// Delete handles DELETE /clients/:id?confirm=true
func (h *ClientHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.clients.Delete(c.Request.Context(), id, confirmed); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DeletedData{ID: id, Deleted: true})
}

// ExportXLSX handles GET /clients/export.xlsx
func (h *ClientHandler) ExportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteClientsXLSX(&buf, h.clients.Snapshot()); err != nil {
		h.HandleError(c, fmt.Errorf("failed to export clients: %w", err))
		return
	}
	filename := "clients-" + h.now().Format("20060102") + ".xlsx"
	attachment(c, filename, export.ContentTypeXLSX, buf.Bytes())
}

// ReportPDF handles GET /clients/:id/report.pdf
func (h *ClientHandler) ReportPDF(c *gin.Context) {
	ctx := c.Request.Context()
	cl, err := h.clients.Get(ctx, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	setup, err := h.analytics.Get(ctx, cl.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	opts := h.report
	opts.GeneratedAt = h.now()

	var buf bytes.Buffer
	if err := export.WriteOnboardingReport(&buf, cl, setup.AnalyticsSetup, opts); err != nil {
		h.HandleError(c, fmt.Errorf("failed to render report: %w", err))
		return
	}
	attachment(c, "onboarding-"+cl.ID+".pdf", export.ContentTypePDF, buf.Bytes())
}

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
