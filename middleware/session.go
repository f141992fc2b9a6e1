package middleware

import (
	"context"
	"net/http"
	"time"

	"main/model"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "session_id"
	SessionDuration   = 24 * time.Hour
)

type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// IdentityResolver exchanges a stored user id for the live identity
// record. The session never caches profile fields across requests.
type IdentityResolver interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}

// SessionMiddleware resolves the session cookie on every request. Any
// failure along the way, session gone, identity deleted upstream,
// provider unreachable, leaves the request unauthenticated rather than
// failing it.
func SessionMiddleware(sessions SessionStore, identities IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.Next()
			return
		}

		session, err := sessions.GetSession(c.Request.Context(), sessionID)
		if err != nil || session == nil {
			ClearSessionCookie(c)
			c.Next()
			return
		}

		user, err := identities.GetUserByID(c.Request.Context(), session.UserID)
		if err != nil || user == nil || user.ID == "" {
			ClearSessionCookie(c)
			c.Next()
			return
		}

		c.Set("session", session)
		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// CreateSession mints a session for an authenticated user and sets the
// session cookie on the response.
func CreateSession(c *gin.Context, user *model.User, accessToken string, sessions SessionStore) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		SessionID:   uuid.New().String(),
		UserID:      user.ID,
		AccessToken: accessToken,
		DeviceInfo:  utils.DescribeDevice(c.Request.UserAgent()),
		CreatedAt:   now,
		ExpiresAt:   now.Add(SessionDuration),
	}

	if err := sessions.CreateSession(c.Request.Context(), session); err != nil {
		return nil, err
	}

	setSessionCookie(c, session.SessionID, int(SessionDuration.Seconds()))
	return session, nil
}

// ClearSessionCookie expires the cookie on the client.
func ClearSessionCookie(c *gin.Context) {
	setSessionCookie(c, "", -1)
}

// Cross-site cookies need Secure + SameSite=None and only make sense over
// TLS, so that combination is reserved for production deployments.
func setSessionCookie(c *gin.Context, value string, maxAge int) {
	secure := utils.IsProduction()
	if secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(SessionCookieName, value, maxAge, "/", "", secure, true)
}
