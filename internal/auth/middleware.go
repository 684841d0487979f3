package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for user data set by the middleware.
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyEmail  = "auth_email"
)

// Middleware guards routes behind a valid session. Requests to public paths
// pass through unauthenticated.
type Middleware struct {
	sessions    *SessionManager
	publicPaths map[string]bool
}

// NewMiddleware creates the authentication middleware. Health probes, the
// account endpoints and catalog search stay reachable without a session.
func NewMiddleware(sessions *SessionManager) *Middleware {
	return &Middleware{
		sessions: sessions,
		publicPaths: map[string]bool{
			"/health":      true,
			"/ping":        true,
			"/register":    true,
			"/login":       true,
			"/logout":      true,
			"/api/search":  true,
			"/favicon.ico": true,
		},
	}
}

// Handler returns the Gin handler enforcing authentication.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublic(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		userID := m.sessions.GetUserID(c.Request)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyEmail, m.sessions.GetEmail(c.Request))
		c.Next()
	}
}

// isPublic reports whether the path needs no session. Catalog reads are open
// so unauthenticated clients can browse books; writes are not.
func (m *Middleware) isPublic(method, path string) bool {
	if m.publicPaths[path] {
		return true
	}
	if method == http.MethodGet && (path == "/api/books" || strings.HasPrefix(path, "/api/books/")) {
		return true
	}
	return false
}

// GetUserID extracts the authenticated user's ID from the Gin context.
// Returns 0 when the request is unauthenticated.
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetEmail extracts the authenticated user's email from the Gin context.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}
