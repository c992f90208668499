package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mstasiak/storefront-backend/internal/session"
)

// Context keys for session state
const (
	SessionIDKey   = "session_id"
	SessionDataKey = "session_data"
)

type SessionMiddleware struct {
	store      session.Store
	cookieName string
}

func NewSessionMiddleware(store session.Store, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{
		store:      store,
		cookieName: cookieName,
	}
}

// Attach resolves the browser session: reads the session cookie, minting a new
// id when absent, and loads the stored data into the request context. The
// cookie carries no Max-Age so it expires when the browser closes.
func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		sid, err := c.Cookie(m.cookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(m.cookieName, sid, 0, "/", "", false, true)
			log.Debug("Minted new session", map[string]interface{}{
				"session_id": sid,
			})
		}

		data, err := m.store.Load(c.Request.Context(), sid)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error("Failed to load session, starting empty", err, map[string]interface{}{
					"session_id": sid,
				})
			}
			data = &session.Data{}
		}

		c.Set(SessionIDKey, sid)
		c.Set(SessionDataKey, data)

		c.Next()
	}
}

// GetSession extracts the session id and data from the request context.
// The data pointer is shared for the request; callers mutate it and persist
// via SaveSession.
func GetSession(c *gin.Context) (string, *session.Data) {
	sid := c.GetString(SessionIDKey)
	if v, exists := c.Get(SessionDataKey); exists {
		if data, ok := v.(*session.Data); ok {
			return sid, data
		}
	}
	return sid, &session.Data{}
}

// SaveSession persists the request's session data back to the store.
func SaveSession(c *gin.Context, store session.Store) error {
	sid, data := GetSession(c)
	if sid == "" {
		return nil
	}
	return store.Save(c.Request.Context(), sid, data)
}
