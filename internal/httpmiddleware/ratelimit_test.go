package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func TestAllowRefillsPerMinute(t *testing.T) {
	l := NewSimpleTokenBucket(2, 2, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.allow("ip") || !l.allow("ip") {
		t.Fatalf("expected the first two requests through")
	}
	if l.allow("ip") {
		t.Fatalf("expected the bucket to be empty")
	}
	if !l.allow("other") {
		t.Fatalf("buckets must be per key")
	}
	now = now.Add(30 * time.Second)
	if !l.allow("ip") {
		t.Fatalf("expected one token after half a minute")
	}
}

func TestMiddlewareCallsOnLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	l := NewSimpleTokenBucket(1, 1, reg)
	r := gin.New()
	r.POST("/send", l.GinMiddleware(func(c *gin.Context) {
		c.String(http.StatusOK, "slow down")
	}), func(c *gin.Context) { c.String(http.StatusOK, "sent") })

	bodies := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/send", nil))
		bodies = append(bodies, w.Body.String())
	}
	if bodies[0] != "sent" || bodies[1] != "slow down" {
		t.Fatalf("unexpected bodies %v", bodies)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var got float64
	for _, mf := range families {
		if mf.GetName() == "portal_rate_limited_total" {
			got = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if got != 1 {
		t.Fatalf("expected one rejection counted, got %v", got)
	}
}
