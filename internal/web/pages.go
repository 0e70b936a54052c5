package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hostelportal/internal/auth"
	"hostelportal/internal/portal"
	"hostelportal/internal/session"
)

// flash carries a toast and an optional delayed navigation across the
// post/redirect/get hop.
type flash struct {
	Toast    *portal.Toast    `json:"toast,omitempty"`
	Redirect *portal.Redirect `json:"redirect,omitempty"`
}

// pageDef binds a controller state type to its path and template.
type pageDef[T any] struct {
	path  string
	title string
	tmpl  string
	init  func() T
	// load runs when the page is entered afresh. nil means nothing to fetch.
	load func(ctx context.Context, sess *session.Session, st *T) portal.Result
}

// show renders the page for a GET. A fresh entry resets the state and runs
// load; a continuation keeps the state and shows the pending flash.
// Only one request per session writes the session at a time.
func show[T any](s *Server, c *gin.Context, p pageDef[T]) {
	sess := auth.Current(c)
	fresh := sess.Enter(p.path)
	st := p.init()
	if !fresh {
		if _, err := sess.LoadPage(p.path, &st); err != nil {
			s.log.Warn("dropping unreadable page state", zap.String("page", p.path), zap.Error(err))
			st, fresh = p.init(), true
		}
	}

	var fl flash
	if _, err := sess.TakeFlash(&fl); err != nil {
		s.log.Warn("dropping unreadable flash", zap.Error(err))
	}
	if fresh && p.load != nil {
		res := p.load(c.Request.Context(), sess, &st)
		if res.Logout {
			s.leave(c, sess, res)
			return
		}
		if res.Toast != nil {
			fl = flash{Toast: res.Toast, Redirect: res.Redirect}
		}
	}

	v := view{Title: p.title, Toast: fl.Toast, Redirect: fl.Redirect, Page: &st}
	// While a post from this session runs, render without saving so the
	// post's own save is the one that lands.
	if !s.inflight.acquire(sess.ID) {
		s.render(c, http.StatusOK, p.tmpl, v)
		return
	}
	defer s.inflight.release(sess.ID)

	if err := sess.SavePage(p.path, st); err != nil {
		s.fail(c, err)
		return
	}
	if err := auth.Save(c); err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, p.tmpl, v)
}

// act applies op to the page state for a form post and redirects back.
func act[T any](s *Server, c *gin.Context, p pageDef[T], op func(ctx context.Context, st *T) portal.Result) {
	sess := auth.Current(c)
	ctx := c.Request.Context()
	st := p.init()
	ok, err := sess.LoadPage(p.path, &st)
	if err != nil {
		s.log.Warn("dropping unreadable page state", zap.String("page", p.path), zap.Error(err))
		st, ok = p.init(), false
	}
	if !ok && p.load != nil {
		if res := p.load(ctx, sess, &st); res.Logout {
			s.leave(c, sess, res)
			return
		}
	}
	s.finish(c, sess, p.path, st, op(ctx, &st))
}

// reject flashes a toast on the page without touching its state.
func (s *Server) reject(c *gin.Context, page, text string) {
	sess := auth.Current(c)
	if sess.Page != page {
		sess.Enter(page)
	}
	if err := sess.SetFlash(flash{Toast: &portal.Toast{Kind: portal.ToastError, Text: text}}); err != nil {
		s.fail(c, err)
		return
	}
	sess.Continue()
	if err := auth.Save(c); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, page)
}

func (s *Server) finish(c *gin.Context, sess *session.Session, page string, st any, res portal.Result) {
	if res.Grant != nil {
		if res.Grant.Admin {
			sess.GrantAdmin(res.Grant.Email)
		} else {
			sess.GrantStudent(res.Grant.SIC)
		}
		if err := auth.Rotate(c); err != nil {
			s.fail(c, err)
			return
		}
		s.log.Info("login verified", zap.Bool("admin", res.Grant.Admin), zap.String("sic", res.Grant.SIC))
	}
	if res.Logout {
		s.leave(c, sess, res)
		return
	}
	if err := sess.SavePage(page, st); err != nil {
		s.fail(c, err)
		return
	}
	if res.Redirect != nil && res.Redirect.After == 0 {
		if err := auth.Save(c); err != nil {
			s.fail(c, err)
			return
		}
		c.Redirect(http.StatusSeeOther, res.Redirect.To)
		return
	}
	if err := sess.SetFlash(flash{Toast: res.Toast, Redirect: res.Redirect}); err != nil {
		s.fail(c, err)
		return
	}
	sess.Continue()
	if err := auth.Save(c); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, page)
}

// leave clears the session. With a toast the user sees a notice page that
// moves on after the delay; otherwise the redirect is immediate.
func (s *Server) leave(c *gin.Context, sess *session.Session, res portal.Result) {
	sess.Clear()
	if err := auth.Rotate(c); err != nil {
		s.fail(c, err)
		return
	}
	if err := auth.Save(c); err != nil {
		s.fail(c, err)
		return
	}
	next := portal.Redirect{To: portal.PathAuth}
	if res.Redirect != nil {
		next = *res.Redirect
	}
	if res.Toast == nil {
		c.Redirect(http.StatusSeeOther, next.To)
		return
	}
	s.notice(c, http.StatusOK, res.Toast, &next)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.log.Error("session write failed", zap.Error(err))
	c.AbortWithStatus(http.StatusServiceUnavailable)
}
