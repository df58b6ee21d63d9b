package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	contextUserKey    = "current_user"
	contextSessionKey = "session_id"
)

// Authenticator resolves session tokens
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error)
}

// SessionCookie session cookie attributes
type SessionCookie struct {
	Name   string
	MaxAge int
	Secure bool
}

// Set writes the session cookie
func (sc SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, sc.MaxAge, "/", "", sc.Secure, true)
}

// Clear expires the session cookie
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// LoadSession puts the authenticated user into the context when the request carries a valid
// session cookie. Requests without one continue anonymously.
func LoadSession(auth Authenticator, cookie SessionCookie, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrAuthenticationRequired) {
				logger.WithError(err).Error("session lookup failed")
			}
			cookie.Clear(c)
			c.Next()
			return
		}

		c.Set(contextUserKey, user)
		c.Set(contextSessionKey, session.ID)
		c.Next()
	}
}

// RequireSession redirects anonymous requests to the login page, remembering where they were going
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginURL returns the login page URL that sends the user back to next afterwards
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// CurrentUser returns the authenticated user
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// GetUserID returns the authenticated user's ID
func GetUserID(c *gin.Context) (uint, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		return 0, false
	}
	return user.ID, true
}

// GetSessionID returns the current session ID
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID := c.GetString(contextSessionKey)
	return sessionID, sessionID != ""
}
