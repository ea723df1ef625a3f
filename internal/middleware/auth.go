package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/auth"
	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/response"
)

// Gin context keys for the authenticated principal.
const (
	ContextUserKey    = "auth.user"
	ContextSessionKey = "auth.session"
)

const maxTokenBodyBytes = 1 << 20

// ExtractToken pulls the session token from a request. Legacy clients
// send it in several places; precedence is request body, Authorization
// bearer, x-session-token header, then query string.
func ExtractToken(c *gin.Context) string {
	if token := tokenFromBody(c); token != "" {
		return token
	}

	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}

	if token := strings.TrimSpace(c.GetHeader("x-session-token")); token != "" {
		return token
	}

	return strings.TrimSpace(c.Query("sessionToken"))
}

// tokenFromBody peeks at a JSON body for a sessionToken field, then
// restores the body so handlers can bind it again.
func tokenFromBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	if ct := c.ContentType(); ct != "" && !strings.Contains(ct, "application/json") {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTokenBodyBytes))
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var probe struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.SessionToken)
}

// RequireSession rejects requests without a valid session and attaches
// the user and session to the context.
func RequireSession(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, session, err := svc.ValidateSession(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// OptionalSession attaches the user when a valid token is present but
// lets anonymous requests through.
func OptionalSession(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c); token != "" {
			if user, session, err := svc.ValidateSession(c.Request.Context(), token); err == nil {
				c.Set(ContextUserKey, user)
				c.Set(ContextSessionKey, session)
			}
		}
		c.Next()
	}
}

// RequireAdmin gates a route to admin accounts. It must run after
// RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.IsAdmin {
			response.Error(c, apperrors.ErrAdminRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by RequireSession.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// CurrentSession returns the session attached by RequireSession.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*models.Session)
	return session, ok && session != nil
}
