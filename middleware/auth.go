// File: /middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eventhub-api/models"
	"eventhub-api/utils"
)

const (
	SessionCookie  = "token"
	currentUserKey = "current_user"

	LoginPath = "/login"
	// FallbackPath is where authenticated callers without the required
	// role are sent.
	FallbackPath = "/events"

	permissionDenied = "You do not have permission to access this page."
)

// SessionResolver turns a session token into a user.
type SessionResolver interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

// RoleResolver yields the caller's highest role, persisting the Participant
// default for users without any group.
type RoleResolver interface {
	EnsureRole(ctx context.Context, user *models.User) (models.Role, error)
}

// Authenticate loads the session user, if any, into the context. Requests
// without a valid session continue anonymously.
func Authenticate(sessions SessionResolver, l *logrus.Logger) gin.HandlerFunc {
	log := l.WithField("from", "auth-middleware")
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := sessions.UserFromToken(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).Debug("discarding session cookie")
			ClearSession(c)
			c.Next()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// RequireLogin redirects anonymous callers to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RequireRole admits superusers and callers whose highest role is at least
// min. Anonymous callers go to the login page; others are sent to
// FallbackPath with an error message.
func RequireRole(min models.Role, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			redirectToLogin(c)
			return
		}
		if user.IsSuperuser {
			c.Next()
			return
		}

		role, err := roles.EnsureRole(c.Request.Context(), user)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !role.Satisfies(min) {
			utils.RedirectWithFlash(c, utils.FlashError, permissionDenied, FallbackPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

// SetSession stores the session token in an HttpOnly cookie.
func SetSession(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}

func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
