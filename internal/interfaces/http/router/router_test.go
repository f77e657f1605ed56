package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r2 := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r2.BasePath())
}

func TestRouterSetup_ClientRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	clients := NewDomainGroup("clients", "/clients")
	clients.GET("", ok("list")).
		POST("", func(c *gin.Context) { c.String(http.StatusCreated, "created") }).
		GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }).
		PUT("/:id", ok("updated")).
		PATCH("/:id/status", ok("status")).
		DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.Register(clients).Setup()

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/v1/clients", http.StatusOK, "list"},
		{http.MethodPost, "/api/v1/clients", http.StatusCreated, "created"},
		{http.MethodGet, "/api/v1/clients/c-7", http.StatusOK, "c-7"},
		{http.MethodPut, "/api/v1/clients/c-7", http.StatusOK, "updated"},
		{http.MethodPatch, "/api/v1/clients/c-7/status", http.StatusOK, "status"},
		{http.MethodDelete, "/api/v1/clients/c-7", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/clients").Code)
}

func TestRouter_APIMiddlewareScope(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", ok("up"))

	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "1")
		c.Next()
	}))
	r.Register(NewDomainGroup("dashboard", "/dashboard").GET("/stats", ok("stats"))).Setup()

	assert.Equal(t, "1", serve(engine, http.MethodGet, "/api/v1/dashboard/stats").Header().Get("X-Api"))
	assert.Empty(t, serve(engine, http.MethodGet, "/health").Header().Get("X-Api"))
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("clients", "/clients")
	g.Use(func(c *gin.Context) {
		c.Header("X-Group", "clients")
		c.Next()
	})

	onboarding := g.Group("onboarding", "/:id/onboarding")
	onboarding.GET("", func(c *gin.Context) { c.String(http.StatusOK, "checklist "+c.Param("id")) })
	onboarding.POST("/advance", ok("advanced"))

	timeline := g.Group("timeline", "/:id/timeline")
	timeline.GET("", ok("timeline"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/clients/c-1/onboarding")
	assert.Equal(t, "checklist c-1", w.Body.String())
	assert.Equal(t, "clients", w.Header().Get("X-Group"))

	assert.Equal(t, "advanced", serve(engine, http.MethodPost, "/api/v1/clients/c-1/onboarding/advance").Body.String())
	assert.Equal(t, "timeline", serve(engine, http.MethodGet, "/api/v1/clients/c-1/timeline").Body.String())

	assert.Equal(t, "clients", g.Name())
	assert.Equal(t, "/clients", g.Prefix())
}

func TestRouter_Routes(t *testing.T) {
	r := NewRouter(gin.New())

	clients := NewDomainGroup("clients", "/clients")
	clients.GET("", ok("")).Describe("List clients")
	clients.DELETE("/:id", ok("")).Describe("Delete a client")
	clients.Group("recording", "/:id/recording").GET("/sessions", ok(""))

	support := NewDomainGroup("support", "/support")
	support.GET("/faq", ok(""))

	r.Register(clients).Register(support)

	routes := r.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, RouteInfo{Method: http.MethodGet, Path: "/api/v1/clients", Description: "List clients"}, routes[0])
	assert.Equal(t, RouteInfo{Method: http.MethodDelete, Path: "/api/v1/clients/:id", Description: "Delete a client"}, routes[1])
	assert.Equal(t, "/api/v1/clients/:id/recording/sessions", routes[2].Path)
	assert.Equal(t, "/api/v1/support/faq", routes[3].Path)
}

func TestDescribe_NoRoutes(t *testing.T) {
	g := NewDomainGroup("empty", "/empty")
	assert.NotPanics(t, func() { g.Describe("nothing") })
}
