package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/config"
	"github.com/avelichko/inkwell/internal/entities"
)

// Context keys for the authenticated user
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUID      = "auth_uid"
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// Middleware authenticates HTTP requests via session cookie or Bearer token.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths: map[string]bool{
			"/health":            true,
			"/ping":              true,
			"/api/auth/register": true,
			"/api/auth/login":    true,
		},
	}
}

// Handler returns the Gin handler enforcing authentication.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return func(c *gin.Context) {
			c.Set(ContextKeyUserID, uint(0))
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		if user := m.tryBearerAuth(c); user != nil {
			m.setUserContext(c, user, AuthTypeBearer)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			m.setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	token := strings.TrimPrefix(header, "Bearer ")
	user, err := m.service.ValidateToken(token)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	userID := m.sessionManager.UserID(c.Request)
	if userID == 0 {
		return nil
	}
	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUID, user.UID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyAuthType, authType)
}

// CurrentUID returns the mirror uid of the authenticated user, or "" when
// the request is unauthenticated.
func CurrentUID(c *gin.Context) string {
	uid, _ := c.Get(ContextKeyUID)
	s, _ := uid.(string)
	return s
}

// CurrentUserID returns the database id of the authenticated user.
func CurrentUserID(c *gin.Context) uint {
	id, _ := c.Get(ContextKeyUserID)
	u, _ := id.(uint)
	return u
}
