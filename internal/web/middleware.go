package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hostelportal/internal/auth"
	"hostelportal/internal/portal"
)

// requestLogger logs one line per request, skipping the given paths.
func requestLogger(log *zap.Logger, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()))
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// inflight tracks sessions that have a form post being processed.
// It only sees requests served by this instance.
type inflight struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{busy: make(map[string]struct{})}
}

func (f *inflight) acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.busy[id]; ok {
		return false
	}
	f.busy[id] = struct{}{}
	return true
}

func (f *inflight) release(id string) {
	f.mu.Lock()
	delete(f.busy, id)
	f.mu.Unlock()
}

const busyText = "Please wait for the current request to finish."

// oneAtATime rejects a post while another one from the same session runs.
// The rejected request gets a notice that returns to page.
func (s *Server) oneAtATime(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.Current(c).ID
		if !s.inflight.acquire(id) {
			s.notice(c, http.StatusConflict,
				&portal.Toast{Kind: portal.ToastInfo, Text: busyText},
				&portal.Redirect{To: page, After: time.Second})
			c.Abort()
			return
		}
		defer s.inflight.release(id)
		c.Next()
	}
}
