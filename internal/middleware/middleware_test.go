package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubResolver struct {
	viewer authz.Viewer
	err    error
}

func (s stubResolver) ResolveViewer(uint64) (authz.Viewer, error) {
	return s.viewer, s.err
}

func newEngine(userID interface{}, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := []gin.HandlerFunc{func(c *gin.Context) {
		if userID != nil {
			c.Set(constants.ContextKeyUserID, userID)
		}
		c.Next()
	}}
	chain = append(chain, handlers...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/", chain...)
	return r
}

func serve(r *gin.Engine) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w.Code
}

func TestResolveViewer(t *testing.T) {
	organizer := authz.Viewer{UserID: 1, Role: authz.RoleOrganizer, OrganizationID: 1}

	tests := []struct {
		name     string
		userID   interface{}
		resolver stubResolver
		want     int
	}{
		{"no session user", nil, stubResolver{viewer: organizer}, http.StatusUnauthorized},
		{"organizer", uint64(1), stubResolver{viewer: organizer}, http.StatusNoContent},
		{"vanished user", uint64(1), stubResolver{err: services.ErrUserNotFound}, http.StatusUnauthorized},
		{"roleless user", uint64(1), stubResolver{err: services.ErrNoRole}, http.StatusForbidden},
		{"lookup failure", uint64(1), stubResolver{err: errors.New("db down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(newEngine(tt.userID, ResolveViewer(tt.resolver))))
		})
	}
}

func TestRequireOrganizer(t *testing.T) {
	agent := authz.Viewer{UserID: 2, Role: authz.RoleAgent, OrganizationID: 1, AgentID: 3}
	organizer := authz.Viewer{UserID: 1, Role: authz.RoleOrganizer, OrganizationID: 1}

	assert.Equal(t, http.StatusNoContent, serve(newEngine(uint64(1), ResolveViewer(stubResolver{viewer: organizer}), RequireOrganizer())))
	assert.Equal(t, http.StatusForbidden, serve(newEngine(uint64(2), ResolveViewer(stubResolver{viewer: agent}), RequireOrganizer())))
	assert.Equal(t, http.StatusUnauthorized, serve(newEngine(uint64(2), RequireOrganizer())))
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyUserID, 42)
	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	c.Set(constants.ContextKeyUserID, "42")
	_, ok = GetUserID(c)
	assert.False(t, ok)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/ok", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, "/missing", entries[1].ContextMap()["path"])
	}
}
