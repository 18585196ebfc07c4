package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionIDKey is the gin context key of the checkout session id
const SessionIDKey = "session_id"

type SessionMiddleware struct {
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewSessionMiddleware(cookieName string, ttl time.Duration, secure bool) *SessionMiddleware {
	return &SessionMiddleware{
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Ensure attaches the checkout session id, issuing a fresh HTTP-only cookie
// when the browser does not present a well-formed one.
func (m *SessionMiddleware) Ensure() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		sessionID, err := c.Cookie(m.cookieName)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
			log.Debug("Issuing checkout session", map[string]interface{}{
				"session_id": sessionID,
			})
		}

		// Sliding expiry
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.cookieName, sessionID, int(m.ttl.Seconds()), "/", "", m.secure, true)
		c.Set(SessionIDKey, sessionID)

		c.Next()
	}
}

// GetSessionID returns the checkout session id set by Ensure
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
