package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"supplydesk/internal/service"
	"supplydesk/pkg/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AdminCookie holds the admin session token
const AdminCookie = "admin_token"

// ActorKey holds the authenticated subject, set by RequireAdmin
const ActorKey = "actor"

// Authenticator validates an admin token against its live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.AdminClaims, error)
}

// SetSessionCookie stores the admin token as an HttpOnly cookie
func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	sameSite, secure := cookiePolicy()
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}

	c.SetSameSite(sameSite)
	c.SetCookie(AdminCookie, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie expires the admin cookie
func ClearSessionCookie(c *gin.Context) {
	sameSite, secure := cookiePolicy()
	c.SetSameSite(sameSite)
	c.SetCookie(AdminCookie, "", -1, "/", "", secure, true)
}

// Production (cross-origin): SameSiteNoneMode + Secure=true
// Development (same-site):   SameSiteLaxMode  + Secure=false
func cookiePolicy() (http.SameSite, bool) {
	if gin.Mode() == gin.ReleaseMode {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// TokenFromRequest reads the admin token from the cookie, falling back to a Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(AdminCookie); err == nil && token != "" {
		return token
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAdmin rejects requests without a valid admin token bound to a live session.
func RequireAdmin(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authorization is missing"))
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Session expired"))
			case errors.Is(err, service.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token"))
			default:
				log.WithError(err).Error("admin authentication failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error("Failed to verify session"))
			}
			return
		}

		c.Set(ActorKey, claims.Subject)
		c.Next()
	}
}
