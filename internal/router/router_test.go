package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/dto"
	"github.com/yukikurage/crm-api/internal/handlers"
	"github.com/yukikurage/crm-api/internal/mailer"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "supersecret"

type testServer struct {
	t           *testing.T
	db          *gorm.DB
	engine      *gin.Engine
	authService *services.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	logger := zap.NewNop()
	notifications := services.NewNotificationService(mailer.NewLogSender(logger), logger, "crm@example.com", "http://localhost:8080")
	authService := services.NewAuthService(userRepo, agentRepo)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	Register(r, Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Agent:    handlers.NewAgentHandler(services.NewAgentService(agentRepo, userRepo, notifications, time.Hour)),
		Lead:     handlers.NewLeadHandler(services.NewLeadService(leadRepo, agentRepo, categoryRepo, notifications)),
		Category: handlers.NewCategoryHandler(services.NewCategoryService(categoryRepo, leadRepo)),
	}, authService)

	return &testServer{t: t, db: db, engine: r, authService: authService}
}

func (s *testServer) do(method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(username string) []*http.Cookie {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": testPassword}, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(s.t, cookies)
	return cookies
}

func (s *testServer) setPassword(userID uint64) {
	s.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", string(hash)).Error)
}

func (s *testServer) signupOrganizer(username string) []*http.Cookie {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(username)
}

func (s *testServer) countLeads() int64 {
	var count int64
	require.NoError(s.t, s.db.Model(&models.Lead{}).Count(&count).Error)
	return count
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/", nil, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil, nil).Code)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	s := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/leads"},
		{http.MethodPost, "/api/leads"},
		{http.MethodGet, "/api/leads/1"},
		{http.MethodPut, "/api/leads/1/category"},
		{http.MethodGet, "/api/agents"},
		{http.MethodPost, "/api/agents"},
		{http.MethodGet, "/api/categories"},
		{http.MethodDelete, "/api/categories/1"},
	}

	for _, route := range routes {
		w := s.do(route.method, route.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestAgentIsForbiddenFromOrganizerRoutes(t *testing.T) {
	s := newTestServer(t)
	_, organizer := testutil.CreateOrganizer(t, s.db, "owner")
	agent, _ := testutil.CreateAgent(t, s.db, organizer.OrganizationID, "agent")
	s.setPassword(agent.UserID)
	cookies := s.login("agent")

	w := s.do(http.MethodPost, "/api/leads", map[string]interface{}{
		"first_name":   "Ann",
		"last_name":    "Doe",
		"phone_number": "0901234567",
		"email":        "ann@lead.example.com",
	}, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, s.countLeads())

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/agents", nil, cookies).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/categories", map[string]string{"name": "X"}, cookies).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/leads/1/assign-agent", map[string]uint64{"agent_id": agent.ID}, cookies).Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/leads", nil, cookies).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/categories", nil, cookies).Code)
}

func TestRolelessUserIsForbidden(t *testing.T) {
	s := newTestServer(t)
	user := &models.User{Username: "nobody", Email: "nobody@example.com", PasswordHash: "x"}
	require.NoError(t, s.db.Omit("Profile").Create(user).Error)
	s.setPassword(user.ID)
	cookies := s.login("nobody")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/leads", nil, cookies).Code)

	w := s.do(http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.NotContains(t, me, "role")
}

func TestOrganizerWorkflow(t *testing.T) {
	s := newTestServer(t)
	cookies := s.signupOrganizer("owner")

	w := s.do(http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.MeDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "organizer", string(me.Role))

	w = s.do(http.MethodPost, "/api/agents", map[string]string{"username": "agent", "email": "agent@example.com"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var agent dto.AgentDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agent))

	w = s.do(http.MethodPost, "/api/categories", map[string]string{"name": "Contacted"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category dto.CategoryDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))

	w = s.do(http.MethodPost, "/api/leads", map[string]interface{}{
		"first_name":   "Ann",
		"last_name":    "Doe",
		"age":          30,
		"phone_number": "0901234567",
		"email":        "ann@lead.example.com",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var lead dto.LeadDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lead))

	w = s.do(http.MethodGet, "/api/leads", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.LeadListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Leads)
	require.NotNil(t, list.UnassignedLeads)
	assert.Len(t, *list.UnassignedLeads, 1)

	w = s.do(http.MethodPost, "/api/leads/"+itoa(lead.ID)+"/assign-agent", map[string]uint64{"agent_id": agent.ID}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/leads/"+itoa(lead.ID)+"/category", map[string]uint64{"category_id": category.ID}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/categories", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var categories dto.CategoryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Len(t, categories.Categories, 1)
	assert.Zero(t, categories.UnassignedLeadCount)

	// Another organization sees none of it.
	rival := s.signupOrganizer("rival")
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/leads/"+itoa(lead.ID), nil, rival).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/agents/"+itoa(agent.ID), nil, rival).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/categories/"+itoa(category.ID), nil, rival).Code)

	w = s.do(http.MethodDelete, "/api/agents/"+itoa(agent.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/leads/"+itoa(lead.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var reloaded dto.LeadDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reloaded))
	assert.Nil(t, reloaded.AgentID)
}

func TestLogoutEndsSession(t *testing.T) {
	s := newTestServer(t)
	cookies := s.signupOrganizer("owner")

	w := s.do(http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/leads", nil, w.Result().Cookies()).Code)
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
