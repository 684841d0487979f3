package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Controller handles the account endpoints: register, login, logout and a
// small "who am I" probe.
type Controller struct {
	service  *Service
	sessions *SessionManager
	limiter  *LoginLimiter
}

// NewController creates the authentication controller.
func NewController(service *Service, sessions *SessionManager, limiter *LoginLimiter) *Controller {
	return &Controller{
		service:  service,
		sessions: sessions,
		limiter:  limiter,
	}
}

// RegisterRoutes registers the account routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/register", ac.Register)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/api/me", ac.Me)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and logs the new user in.
func (ac *Controller) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := ac.service.Register(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailRequired),
			errors.Is(err, ErrPasswordRequired),
			errors.Is(err, ErrEmailInvalid),
			errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrPasswordTooLong),
			errors.Is(err, ErrUserExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		}
		return
	}

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

// Login validates credentials and starts a session. Failed attempts count
// against the per IP+email lockout.
func (ac *Controller) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	ip := c.ClientIP()
	if allowed, retryAfter := ac.limiter.Allow(ip, req.Email); !allowed {
		ac.limiter.Reject(c, retryAfter)
		return
	}

	user, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			ac.limiter.RecordFailure(ip, req.Email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	ac.limiter.RecordSuccess(ip, req.Email)

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

// Logout destroys the current session. Safe to call unauthenticated.
func (ac *Controller) Logout(c *gin.Context) {
	if err := ac.sessions.DestroySession(c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me returns the authenticated user's identity.
func (ac *Controller) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := ac.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}
