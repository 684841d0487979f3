package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/config"
	"github.com/leafmark/leafmark/internal/database/users"
	"github.com/leafmark/leafmark/internal/entities"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *LoginLimiter) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)

	cfg := config.Auth{
		BcryptCost:       4,
		SessionLifetime:  time.Hour,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}

	sessions, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	service := NewService(users.NewRepository(db), cfg)
	limiter := NewLoginLimiter(cfg)
	t.Cleanup(limiter.Stop)

	router := gin.New()
	router.Use(sessions.SessionLoadSave())
	router.Use(NewMiddleware(sessions).Handler())
	NewController(service, sessions, limiter).RegisterRoutes(router)

	return router, limiter
}

func doJSON(router *gin.Engine, method, path, body, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c.Name + "=" + c.Value
		}
	}
	return ""
}

func TestRegisterLoginFlow(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/register", `{"email":"reader@example.com","password":"password12345"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := sessionCookie(w)
	require.NotEmpty(t, cookie, "registration should start a session")

	// The fresh session is accepted on a protected route
	w = doJSON(router, http.MethodGet, "/api/me", "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reader@example.com")

	// Duplicate registration is rejected
	w = doJSON(router, http.MethodPost, "/register", `{"email":"reader@example.com","password":"password12345"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Fresh login works too
	w = doJSON(router, http.MethodPost, "/login", `{"email":"reader@example.com","password":"password12345"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, sessionCookie(w))
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/register", `{"email":"reader@example.com","password":"password12345"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/login", `{"email":"reader@example.com","password":"wrongpassword"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/register", `{"email":"reader@example.com","password":"password12345"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	for i := 0; i < 3; i++ {
		w = doJSON(router, http.MethodPost, "/login", `{"email":"reader@example.com","password":"wrongpassword"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w = doJSON(router, http.MethodPost, "/login", `{"email":"reader@example.com","password":"password12345"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestProtectedRouteRequiresSession(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := doJSON(router, http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/register", `{"email":"reader@example.com","password":"password12345"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := sessionCookie(w)

	w = doJSON(router, http.MethodPost, "/logout", "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
