package web

import (
	"context"

	"github.com/gin-gonic/gin"

	"hostelportal/internal/portal"
	"hostelportal/internal/student"
)

const badForm = "Invalid form submission. Please try again."

// bind decodes the posted form into in, flashing an error on page when the
// values cannot be parsed.
func (s *Server) bind(c *gin.Context, page string, in any) bool {
	if err := c.ShouldBind(in); err != nil {
		s.reject(c, page, badForm)
		return false
	}
	return true
}

type otpForm struct {
	OTP string `form:"otp"`
}

type confirmForm struct {
	Confirmed bool `form:"confirmed"`
}

func (s *Server) adminAuthRoutes(g *gin.RouterGroup) {
	p := s.adminAuthPage
	guard := s.oneAtATime(p.path)

	g.GET("", func(c *gin.Context) { show(s, c, p) })
	g.POST("/otp", guard, s.mailing(p.path), func(c *gin.Context) {
		act(s, c, p, func(ctx context.Context, st *portal.AdminAuthState) portal.Result {
			return s.adminAuth.RequestOTP(ctx, st)
		})
	})
	g.POST("/resend", guard, s.mailing(p.path), func(c *gin.Context) {
		act(s, c, p, func(ctx context.Context, st *portal.AdminAuthState) portal.Result {
			return s.adminAuth.Resend(ctx, st)
		})
	})
	g.POST("/verify", guard, func(c *gin.Context) {
		var in otpForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.AdminAuthState) portal.Result {
			return s.adminAuth.VerifyOTP(ctx, st, in.OTP)
		})
	})
}

type signupForm struct {
	SIC   string `form:"sic"`
	Email string `form:"email"`
}

type disclaimerForm struct {
	portal.ScrollMetrics
	Agree bool `form:"agree"`
}

func (s *Server) userAuthRoutes(g *gin.RouterGroup) {
	p := s.userAuthPage
	guard := s.oneAtATime(p.path)

	g.GET("", func(c *gin.Context) { show(s, c, p) })
	g.POST("/tab", guard, func(c *gin.Context) {
		var in struct {
			Tab string `form:"tab"`
		}
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(_ context.Context, st *portal.UserAuthState) portal.Result {
			return s.userAuth.SwitchTab(st, portal.Tab(in.Tab))
		})
	})

	g.POST("/login", guard, s.mailing(p.path), func(c *gin.Context) {
		var in struct {
			SIC string `form:"sic"`
		}
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.UserAuthState) portal.Result {
			return s.userAuth.SubmitSIC(ctx, st, in.SIC)
		})
	})
	g.POST("/login/resend", guard, s.mailing(p.path), func(c *gin.Context) {
		act(s, c, p, func(ctx context.Context, st *portal.UserAuthState) portal.Result {
			return s.userAuth.ResendLoginOTP(ctx, st)
		})
	})
	g.POST("/login/verify", guard, func(c *gin.Context) {
		var in otpForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.UserAuthState) portal.Result {
			return s.userAuth.VerifyLoginOTP(ctx, st, in.OTP)
		})
	})

	g.POST("/signup", guard, func(c *gin.Context) {
		var in signupForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(_ context.Context, st *portal.UserAuthState) portal.Result {
			st.Tab = portal.TabSignup
			return s.userAuth.SubmitSignup(st, in.SIC, in.Email)
		})
	})
	g.POST("/signup/continue", guard, s.mailing(p.path), func(c *gin.Context) {
		var in disclaimerForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.UserAuthState) portal.Result {
			s.userAuth.ScrollDisclaimer(st, in.ScrollMetrics)
			s.userAuth.SetAgree(st, in.Agree)
			return s.userAuth.ContinueAfterDisclaimer(ctx, st)
		})
	})
	g.POST("/signup/cancel", guard, func(c *gin.Context) {
		act(s, c, p, func(_ context.Context, st *portal.UserAuthState) portal.Result {
			return s.userAuth.CancelDisclaimer(st)
		})
	})
	g.POST("/signup/resend", guard, func(c *gin.Context) {
		act(s, c, p, func(_ context.Context, st *portal.UserAuthState) portal.Result {
			return s.userAuth.ResendSignupOTP(st)
		})
	})
	g.POST("/signup/verify", guard, func(c *gin.Context) {
		var in otpForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.UserAuthState) portal.Result {
			return s.userAuth.VerifySignupOTP(ctx, st, in.OTP)
		})
	})
}

type searchForm struct {
	Query string `form:"query"`
	Field string `form:"field"`
}

type openMessageForm struct {
	Email string `form:"email"`
	SIC   string `form:"sic"`
	ToAll bool   `form:"toAll"`
}

func (s *Server) adminDashRoutes(g *gin.RouterGroup) {
	p := s.adminDashPage
	guard := s.oneAtATime(p.path)
	dash := s.adminDash

	g.GET("", func(c *gin.Context) { show(s, c, p) })
	g.POST("/reload", guard, func(c *gin.Context) {
		act(s, c, p, func(ctx context.Context, st *portal.AdminDashState) portal.Result {
			return dash.Load(ctx, st)
		})
	})
	g.POST("/search", guard, func(c *gin.Context) {
		var in searchForm
		if !s.bind(c, p.path, &in) {
			return
		}
		field, _ := student.ParseField(in.Field)
		act(s, c, p, func(_ context.Context, st *portal.AdminDashState) portal.Result {
			return dash.Search(st, in.Query, field)
		})
	})
	g.POST("/search/clear", guard, func(c *gin.Context) {
		act(s, c, p, func(_ context.Context, st *portal.AdminDashState) portal.Result {
			return dash.ClearSearch(st)
		})
	})
	g.POST("/edit", guard, func(c *gin.Context) {
		var in struct {
			SlNo int64 `form:"slNo"`
		}
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(_ context.Context, st *portal.AdminDashState) portal.Result {
			return dash.EditStudent(st, in.SlNo)
		})
	})
	g.POST("/edit/save", guard, func(c *gin.Context) {
		var in portal.EditForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.AdminDashState) portal.Result {
			return dash.SubmitEdit(ctx, st, in)
		})
	})
	g.POST("/message", guard, func(c *gin.Context) {
		var in openMessageForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(_ context.Context, st *portal.AdminDashState) portal.Result {
			return dash.OpenMessage(st, in.Email, in.SIC, in.ToAll)
		})
	})
	g.POST("/message/broadcast", guard, func(c *gin.Context) {
		var in portal.MessageForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(_ context.Context, st *portal.AdminDashState) portal.Result {
			return dash.SetBroadcast(st, in)
		})
	})
	g.POST("/message/send", guard, s.mailing(p.path), func(c *gin.Context) {
		var in portal.MessageForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.AdminDashState) portal.Result {
			return dash.SubmitMessage(ctx, st, in)
		})
	})
	g.POST("/modal/close", guard, func(c *gin.Context) {
		act(s, c, p, func(_ context.Context, st *portal.AdminDashState) portal.Result {
			return dash.CloseModal(st)
		})
	})
	g.POST("/logout", guard, func(c *gin.Context) {
		var in confirmForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(_ context.Context, _ *portal.AdminDashState) portal.Result {
			return dash.Logout(in.Confirmed)
		})
	})
}

func (s *Server) userDashRoutes(g *gin.RouterGroup) {
	p := s.userDashPage
	guard := s.oneAtATime(p.path)
	dash := s.userDash

	g.GET("", func(c *gin.Context) { show(s, c, p) })
	g.POST("/email", guard, func(c *gin.Context) {
		act(s, c, p, func(_ context.Context, st *portal.UserDashState) portal.Result {
			return dash.OpenEmail(st)
		})
	})
	g.POST("/email/otp", guard, s.mailing(p.path), func(c *gin.Context) {
		var in struct {
			NewEmail string `form:"newEmail"`
		}
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.UserDashState) portal.Result {
			return dash.RequestEmailChange(ctx, st, in.NewEmail)
		})
	})
	g.POST("/email/verify", guard, func(c *gin.Context) {
		var in otpForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.UserDashState) portal.Result {
			return dash.VerifyEmailOTP(ctx, st, in.OTP)
		})
	})
	g.POST("/pause", guard, func(c *gin.Context) {
		act(s, c, p, func(_ context.Context, st *portal.UserDashState) portal.Result {
			return dash.OpenPause(st)
		})
	})
	g.POST("/pause/save", guard, func(c *gin.Context) {
		var in struct {
			Date string `form:"pauseDate"`
		}
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.UserDashState) portal.Result {
			return dash.SetPauseDate(ctx, st, in.Date)
		})
	})
	g.POST("/status", guard, func(c *gin.Context) {
		act(s, c, p, func(_ context.Context, st *portal.UserDashState) portal.Result {
			return dash.OpenStatus(st)
		})
	})
	g.POST("/status/save", guard, func(c *gin.Context) {
		var in struct {
			Status string `form:"status"`
		}
		if !s.bind(c, p.path, &in) {
			return
		}
		status, _ := student.ParseStatus(in.Status)
		act(s, c, p, func(ctx context.Context, st *portal.UserDashState) portal.Result {
			return dash.ChangeStatus(ctx, st, status)
		})
	})
	g.POST("/deactivate", guard, func(c *gin.Context) {
		var in confirmForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(ctx context.Context, st *portal.UserDashState) portal.Result {
			return dash.Deactivate(ctx, st, in.Confirmed)
		})
	})
	g.POST("/modal/close", guard, func(c *gin.Context) {
		act(s, c, p, func(_ context.Context, st *portal.UserDashState) portal.Result {
			return dash.CloseModal(st)
		})
	})
	g.POST("/logout", guard, func(c *gin.Context) {
		var in confirmForm
		if !s.bind(c, p.path, &in) {
			return
		}
		act(s, c, p, func(_ context.Context, _ *portal.UserDashState) portal.Result {
			return dash.Logout(in.Confirmed)
		})
	})
}
