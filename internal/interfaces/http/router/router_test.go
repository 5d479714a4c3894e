package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	var hits []string
	tag := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			hits = append(hits, name)
			c.Next()
		}
	}

	items := NewDomainGroup("items", "/items").Use(tag("group"))
	items.GET("/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})
	items.Group("delete-requests", "/delete-requests").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "pending")
	})

	NewRouter(engine, WithMiddleware(tag("api"))).Register(items).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, []string{"api", "group"}, hits)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/delete-requests", nil))
	assert.Equal(t, "pending", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomainGroupRoutes(t *testing.T) {
	noop := func(c *gin.Context) {}
	po := NewDomainGroup("purchase-orders", "/purchase-orders")
	po.POST("", noop).GET("/:id", noop).POST("/:id/cancel", noop).DELETE("/:id", noop)

	assert.Equal(t, "purchase-orders", po.Name())
	assert.Equal(t, "/purchase-orders", po.Prefix())
	assert.Equal(t, []Route{
		{Method: http.MethodPost, Path: "/purchase-orders"},
		{Method: http.MethodGet, Path: "/purchase-orders/:id"},
		{Method: http.MethodPost, Path: "/purchase-orders/:id/cancel"},
		{Method: http.MethodDelete, Path: "/purchase-orders/:id"},
	}, po.Routes())
}
