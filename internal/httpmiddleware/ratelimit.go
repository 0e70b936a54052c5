package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// SimpleTokenBucket is an in-memory rate limiter keyed by client IP.
// Limits are per instance.
type SimpleTokenBucket struct {
	capacity int
	rate     int
	now      func() time.Time
	rejected *prometheus.CounterVec

	mu    sync.Mutex
	state map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewSimpleTokenBucket creates limiter with capacity tokens and rate per minute.
// reg may be nil.
func NewSimpleTokenBucket(capacity, perMinute int, reg prometheus.Registerer) *SimpleTokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	l := &SimpleTokenBucket{
		capacity: capacity,
		rate:     perMinute,
		now:      time.Now,
		state:    make(map[string]*bucket),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_rate_limited_total",
			Help: "Requests rejected by the token bucket, by route.",
		}, []string{"route"}),
	}
	if reg != nil {
		reg.MustRegister(l.rejected)
	}
	return l
}

// GinMiddleware returns gin handler enforcing per-IP limits. Rejected requests
// go to onLimit, which must write the response; nil answers 429.
func (l *SimpleTokenBucket) GinMiddleware(onLimit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(ip) {
			l.rejected.WithLabelValues(c.FullPath()).Inc()
			if onLimit == nil {
				c.AbortWithStatus(http.StatusTooManyRequests)
				return
			}
			onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *SimpleTokenBucket) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state[key]
	now := l.now()
	if !ok {
		b = &bucket{tokens: l.capacity - 1, last: now}
		l.state[key] = b
		return true
	}
	elapsed := now.Sub(b.last).Minutes()
	refill := int(elapsed * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
