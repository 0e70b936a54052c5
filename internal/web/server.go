// Package web serves the portal pages and translates their form posts into
// controller operations.
package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hostelportal/internal/auth"
	"hostelportal/internal/httpmiddleware"
	"hostelportal/internal/portal"
	"hostelportal/internal/session"
)

// Backend is everything the portal asks of the attendance API.
type Backend interface {
	portal.AdminAuthAPI
	portal.UserAuthAPI
	portal.RosterAPI
	portal.ProfileAPI
}

// Options wires a Server.
type Options struct {
	Log          *zap.Logger
	Backend      Backend
	Sessions     session.Store
	Issuer       *auth.Issuer
	CookieSecure bool
	AdminEmail   string
	Location     *time.Location
	// Limiter guards the posts that make the backend send mail. Optional.
	Limiter *httpmiddleware.SimpleTokenBucket
	// Metrics serves /metrics; defaults to the global Prometheus registry.
	Metrics http.Handler
}

// Server holds the page controllers and renders their pages.
type Server struct {
	log       *zap.Logger
	sessions  session.Store
	issuer    *auth.Issuer
	secure    bool
	limiter   *httpmiddleware.SimpleTokenBucket
	metrics   http.Handler
	inflight  *inflight
	templates map[string]*template.Template

	adminAuth *portal.AdminAuth
	userAuth  *portal.UserAuth
	adminDash *portal.AdminDash
	userDash  *portal.UserDash

	adminAuthPage pageDef[portal.AdminAuthState]
	userAuthPage  pageDef[portal.UserAuthState]
	adminDashPage pageDef[portal.AdminDashState]
	userDashPage  pageDef[portal.UserDashState]
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	s := &Server{
		log:       log,
		sessions:  opts.Sessions,
		issuer:    opts.Issuer,
		secure:    opts.CookieSecure,
		limiter:   opts.Limiter,
		metrics:   metrics,
		inflight:  newInflight(),
		templates: loadTemplates(),
		adminAuth: portal.NewAdminAuth(opts.Backend, opts.AdminEmail),
		userAuth:  portal.NewUserAuth(opts.Backend),
		adminDash: portal.NewAdminDash(opts.Backend),
		userDash:  portal.NewUserDash(opts.Backend, opts.Location),
	}

	s.adminAuthPage = pageDef[portal.AdminAuthState]{
		path: portal.PathAdminLogin, title: "Admin Login", tmpl: tmplAdminAuth,
		init: func() portal.AdminAuthState { return portal.AdminAuthState{Email: s.adminAuth.Email()} },
	}
	s.userAuthPage = pageDef[portal.UserAuthState]{
		path: portal.PathAuth, title: "Student Login", tmpl: tmplUserAuth,
		init: portal.NewUserAuthState,
	}
	s.adminDashPage = pageDef[portal.AdminDashState]{
		path: portal.PathAdmin, title: "Admin Dashboard", tmpl: tmplAdminDash,
		init: func() portal.AdminDashState { return portal.AdminDashState{} },
		load: func(ctx context.Context, _ *session.Session, st *portal.AdminDashState) portal.Result {
			return s.adminDash.Load(ctx, st)
		},
	}
	s.userDashPage = pageDef[portal.UserDashState]{
		path: portal.PathDashboard, title: "My Dashboard", tmpl: tmplUserDash,
		init: func() portal.UserDashState { return portal.UserDashState{} },
		load: func(ctx context.Context, sess *session.Session, st *portal.UserDashState) portal.Result {
			return s.userDash.Load(ctx, st, sess.UserSIC)
		},
	}
	return s
}

// Handler builds the gin engine with every route.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log, "/healthz", "/metrics"))
	r.Use(securityHeaders())

	r.GET("/metrics", gin.WrapH(s.metrics))
	r.GET("/healthz", func(c *gin.Context) {
		healthy := s.sessions.Healthy(c.Request.Context())
		status, text := http.StatusOK, "ok"
		if !healthy {
			status, text = http.StatusServiceUnavailable, "degraded"
		}
		c.JSON(status, gin.H{"status": text, "sessions": healthy})
	})
	r.GET("/assets/portal.css", s.asset("portal.css", "text/css; charset=utf-8"))
	r.GET("/assets/portal.js", s.asset("portal.js", "application/javascript"))

	pages := r.Group("", auth.Sessions(s.sessions, s.issuer, s.secure, s.log))
	pages.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, portal.PathAuth) })

	s.adminAuthRoutes(pages.Group(portal.PathAdminLogin))
	s.userAuthRoutes(pages.Group(portal.PathAuth))
	s.adminDashRoutes(pages.Group(portal.PathAdmin, auth.RequireAdmin(portal.PathAdminLogin)))
	s.userDashRoutes(pages.Group(portal.PathDashboard, auth.RequireStudent(portal.PathAuth)))
	return r
}

// mailing wraps the routes whose posts make the backend send an email.
func (s *Server) mailing(page string) gin.HandlerFunc {
	if s.limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return s.limiter.GinMiddleware(func(c *gin.Context) {
		s.reject(c, page, "Too many requests. Please wait a minute and try again.")
	})
}
