package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hostelportal/internal/session"
)

// CookieName is the cookie holding the signed session token.
const CookieName = "portal_session"

const (
	sessionKey = "session"
	storeKey   = "session_store"
	cookieKey  = "session_cookie"
)

type cookieWriter struct {
	issuer *Issuer
	secure bool
}

func (w cookieWriter) write(c *gin.Context, id string) error {
	token, _, err := w.issuer.Issue(id)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(w.issuer.TTL.Seconds()), "/", "", w.secure, true)
	return nil
}

// Sessions loads the caller's session into the gin context, creating one for
// first-time visitors. The cookie is refreshed on every request.
func Sessions(store session.Store, issuer *Issuer, secure bool, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		var sess *session.Session
		if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
			if id, perr := issuer.Parse(raw); perr == nil {
				got, gerr := store.Get(c.Request.Context(), id)
				switch {
				case gerr == nil:
					sess = got
				case errors.Is(gerr, session.ErrNotFound):
				default:
					log.Error("session store unavailable", zap.Error(gerr))
					c.AbortWithStatus(http.StatusServiceUnavailable)
					return
				}
			}
		}
		if sess == nil {
			sess = session.New()
		}

		cw := cookieWriter{issuer: issuer, secure: secure}
		if err := cw.write(c, sess.ID); err != nil {
			log.Error("session token issue failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(sessionKey, sess)
		c.Set(storeKey, store)
		c.Set(cookieKey, cw)
		c.Next()
	}
}

// Current returns the session loaded by Sessions. It panics when the
// middleware is not installed.
func Current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// Save persists the current session. Handlers call it before writing the
// response so the next request observes the change.
func Save(c *gin.Context) error {
	return c.MustGet(storeKey).(session.Store).Save(c.Request.Context(), Current(c))
}

// Rotate moves the current session to a fresh ID, deletes the record kept
// under the old one and re-issues the cookie. Call it whenever the login
// state changes; the caller still has to Save.
func Rotate(c *gin.Context) error {
	sess := Current(c)
	old := sess.Rekey()
	if err := c.MustGet(storeKey).(session.Store).Delete(c.Request.Context(), old); err != nil {
		return fmt.Errorf("drop rotated session: %w", err)
	}
	// The only cookie set so far is the one for the old ID.
	c.Writer.Header().Del("Set-Cookie")
	if err := c.MustGet(cookieKey).(cookieWriter).write(c, sess.ID); err != nil {
		return fmt.Errorf("issue rotated session token: %w", err)
	}
	return nil
}

// RequireAdmin redirects to loginPath unless the admin flags are set.
func RequireAdmin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Current(c).IsAdmin() {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStudent redirects to authPath unless a student is logged in.
func RequireStudent(authPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Current(c).IsStudent() {
			c.Redirect(http.StatusSeeOther, authPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
