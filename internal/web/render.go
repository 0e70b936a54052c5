package web

import (
	"embed"
	"html/template"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"hostelportal/internal/portal"
	"hostelportal/internal/student"
)

//go:embed templates/*.html assets/portal.css assets/portal.js
var templatesFS embed.FS

const (
	tmplAdminAuth = "admin_auth"
	tmplUserAuth  = "user_auth"
	tmplAdminDash = "admin_dashboard"
	tmplUserDash  = "user_dashboard"
	tmplNotice    = "notice"
)

var funcs = template.FuncMap{
	"date": func(d *student.Date) string { return student.FormatDate(d, "-") },
	"pauseDate": func(d *student.Date) string {
		return student.FormatDate(d, "Not Set")
	},
	"isoDate": func(d *student.Date) string {
		if d == nil {
			return ""
		}
		return d.String()
	},
	"day":      student.FormatDay,
	"shortDay": student.FormatShortDay,
	"stamp":    student.FormatStamp,
	"yesNo": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"statuses": func() []student.Status { return student.Statuses },
	"millis":   func(d time.Duration) int64 { return d.Milliseconds() },
	"seconds":  func(d time.Duration) int64 { return int64(math.Ceil(d.Seconds())) },
}

func loadTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template)
	for _, name := range []string{tmplAdminAuth, tmplUserAuth, tmplAdminDash, tmplUserDash, tmplNotice} {
		out[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// view is what every template receives.
type view struct {
	Title    string
	Toast    *portal.Toast
	Redirect *portal.Redirect
	Page     any
}

func (s *Server) render(c *gin.Context, code int, name string, v view) {
	c.Render(code, render.HTML{Template: s.templates[name], Name: "layout.html", Data: v})
}

// notice renders a standalone message page, used when the session was just
// cleared and there is no page left to flash into.
func (s *Server) notice(c *gin.Context, code int, toast *portal.Toast, redirect *portal.Redirect) {
	s.render(c, code, tmplNotice, view{Title: "Hostel Attendance", Toast: toast, Redirect: redirect})
}

func (s *Server) asset(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := templatesFS.ReadFile("assets/" + name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, contentType, b)
	}
}
