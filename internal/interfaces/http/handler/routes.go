package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/attractify/onboarding/internal/interfaces/http/router"
)

// Handlers groups every API handler of the service
type Handlers struct {
	Dashboard  *DashboardHandler
	Clients    *ClientHandler
	Onboarding *OnboardingHandler
	Recording  *RecordingHandler
	Analytics  *AnalyticsHandler
	Timeline   *TimelineHandler
	Support    *SupportHandler
	Realtime   *RealtimeHandler
	System     *SystemHandler
}

// Register declares the API routes on r. Call r.Setup afterwards.
func (hs Handlers) Register(r *router.Router) {
	dashboard := router.NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("", hs.Dashboard.Overview).Describe("Stats, recent clients, activity and upcoming sessions")

	activity := router.NewDomainGroup("activity", "/activity")
	activity.GET("", hs.Dashboard.Activity).Describe("Recent activity feed")

	clients := router.NewDomainGroup("clients", "/clients")
	clients.GET("", hs.Clients.List).Describe("List clients")
	clients.POST("", hs.Clients.Create).Describe("Create a client")
	clients.GET("/export.xlsx", hs.Clients.ExportXLSX).Describe("Export the roster as XLSX")
	clients.GET("/:id", hs.Clients.Get).Describe("Get a client")
	clients.PUT("/:id", hs.Clients.Update).Describe("Update a client")
	clients.DELETE("/:id", hs.Clients.Delete).Describe("Delete a client, requires confirm=true")
	clients.GET("/:id/report.pdf", hs.Clients.ReportPDF).Describe("Onboarding report as PDF")

	onboarding := router.NewDomainGroup("onboarding", "/onboarding")
	onboarding.GET("/:clientId", hs.Onboarding.Get).Describe("Onboarding checklist")
	onboarding.POST("/:clientId/initialize", hs.Onboarding.Initialize).Describe("Seed the checklist")
	onboarding.PUT("/:clientId/steps/:stepId", hs.Onboarding.UpdateStep).Describe("Set a step status")
	onboarding.POST("/:clientId/next", hs.Onboarding.Next).Describe("Start the next pending step")

	recording := router.NewDomainGroup("recording", "/recording")
	recording.GET("/options", hs.Recording.Options).Describe("Cadence options and quality levels")
	recording.POST("/quality-check", hs.Recording.QualityCheck).Describe("Evaluate equipment ratings")
	recording.GET("/upcoming", hs.Recording.Upcoming).Describe("Upcoming sessions across clients")
	recording.GET("/:clientId/sessions", hs.Recording.ListSessions).Describe("List sessions")
	recording.POST("/:clientId/sessions", hs.Recording.Schedule).Describe("Schedule a session")
	recording.PUT("/:clientId/sessions/:sessionId", hs.Recording.UpdateSession).Describe("Set a session status")
	recording.POST("/:clientId/sessions/:sessionId/cancel", hs.Recording.Cancel).Describe("Cancel a session")
	recording.POST("/:clientId/sessions/:sessionId/asset-url", hs.Recording.AssetURL).Describe("Presigned upload URL")

	analytics := router.NewDomainGroup("analytics", "/analytics")
	analytics.GET("/:clientId", hs.Analytics.Get).Describe("Analytics setup")
	analytics.PUT("/:clientId", hs.Analytics.Configure).Describe("Configure GA4")
	analytics.PUT("/:clientId/ga4/:stepId", hs.Analytics.UpdateGA4Step).Describe("Set a GA4 step status")
	analytics.PUT("/:clientId/gtm/:stepId", hs.Analytics.UpdateGTMStep).Describe("Set a GTM step status")
	analytics.GET("/:clientId/tracking-code", hs.Analytics.TrackingCode).Describe("gtag.js snippet")

	timeline := router.NewDomainGroup("timeline", "/timeline")
	timeline.GET("/:clientId", hs.Timeline.Get).Describe("Three month timeline")
	timeline.PUT("/:clientId/months/:month", hs.Timeline.UpdateMonth).Describe("Set month status or progress")
	timeline.PUT("/:clientId/months/:month/weeks/:week/tasks/:task", hs.Timeline.UpdateTask).Describe("Set a task status")

	supportGroup := router.NewDomainGroup("support", "/support")
	supportGroup.GET("", hs.Support.Catalog).Describe("Support catalog")

	realtimeGroup := router.NewDomainGroup("realtime", "/realtime")
	realtimeGroup.GET("/ws", hs.Realtime.Subscribe).Describe("Websocket change notifications")

	system := router.NewDomainGroup("system", "/system")
	system.GET("/info", hs.System.Info).Describe("Build information")

	r.Register(dashboard).
		Register(activity).
		Register(clients).
		Register(onboarding).
		Register(recording).
		Register(analytics).
		Register(timeline).
		Register(supportGroup).
		Register(realtimeGroup).
		Register(system)
}

// RegisterRoot mounts the unversioned endpoints
func (hs Handlers) RegisterRoot(engine *gin.Engine, metrics gin.HandlerFunc) {
	engine.GET("/health", hs.System.Health)
	if metrics != nil {
		engine.GET("/metrics", metrics)
	}
}
