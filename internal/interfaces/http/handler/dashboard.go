package handler

import (
	"github.com/gin-gonic/gin"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/application/support"
	"github.com/attractify/onboarding/internal/domain/client"
)

// DashboardHandler serves the landing view and the activity feed
type DashboardHandler struct {
	BaseHandler
	dashboard *clientapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboard *clientapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Overview handles GET /dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	resp, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activity handles GET /activity?limit=
func (h *DashboardHandler) Activity(c *gin.Context) {
	limit, ok := h.IntQuery(c, "limit", client.DefaultActivityLimit)
	if !ok {
		return
	}
	entries, err := h.dashboard.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// SupportHandler serves the static support catalog
type SupportHandler struct {
	BaseHandler
}

// NewSupportHandler creates a new SupportHandler
func NewSupportHandler() *SupportHandler {
	return &SupportHandler{}
}

// Catalog handles GET /support?category=
func (h *SupportHandler) Catalog(c *gin.Context) {
	catalog := support.NewCatalog()
	if category := c.Query("category"); category != "" {
		catalog.CommonIssues = nonNil(catalog.IssuesByCategory(category))
	}
	h.Success(c, catalog)
}
