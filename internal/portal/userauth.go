package portal

import (
	"context"
	"fmt"
	"strings"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/student"
)

// Tab is one of the two panes of the student auth page.
type Tab string

const (
	TabLogin  Tab = "login"
	TabSignup Tab = "signup"
)

// ScrollTolerance is how close, in pixels, the disclaimer must be scrolled to
// its end before the agree box unlocks.
const ScrollTolerance = 10

// ScrollMetrics is the scroll position of the disclaimer body.
type ScrollMetrics struct {
	Top    float64 `form:"scrollTop"`
	Client float64 `form:"clientHeight"`
	Height float64 `form:"scrollHeight"`
}

// AtEnd reports whether the content has been read to the end.
func (m ScrollMetrics) AtEnd() bool {
	return m.Top+m.Client >= m.Height-ScrollTolerance
}

// Disclaimer is the gate shown between the signup form and its OTP.
type Disclaimer struct {
	Open bool `json:"open"`
	// AgreeEnabled latches once the content was scrolled to the end.
	AgreeEnabled bool `json:"agreeEnabled"`
	Agreed       bool `json:"agreed"`
}

// CanContinue reports whether the continue button is enabled.
func (d Disclaimer) CanContinue() bool { return d.Open && d.AgreeEnabled && d.Agreed }

// LoginFlow is the login tab.
type LoginFlow struct {
	Phase Phase  `json:"phase"`
	SIC   string `json:"sic,omitempty"`
	Email string `json:"email,omitempty"`
}

// SignupFlow is the signup tab. SIC and Email hold the pending signup data
// while the disclaimer is open or the OTP is outstanding.
type SignupFlow struct {
	Phase Phase  `json:"phase"`
	SIC   string `json:"sic,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserAuthState is the student auth page.
type UserAuthState struct {
	Tab        Tab        `json:"tab"`
	Login      LoginFlow  `json:"login"`
	Signup     SignupFlow `json:"signup"`
	Disclaimer Disclaimer `json:"disclaimer"`
	// Prefill is the SIC shown in the login field.
	Prefill string `json:"prefill,omitempty"`
}

// NewUserAuthState opens the page on the login tab.
func NewUserAuthState() UserAuthState {
	return UserAuthState{Tab: TabLogin}
}

// UserAuth drives student login and signup.
type UserAuth struct {
	api UserAuthAPI
}

func NewUserAuth(api UserAuthAPI) *UserAuth { return &UserAuth{api: api} }

// SwitchTab activates tab and resets both flows.
func (u *UserAuth) SwitchTab(st *UserAuthState, tab Tab) Result {
	if tab != TabSignup {
		tab = TabLogin
	}
	*st = UserAuthState{Tab: tab}
	return Result{}
}

// SubmitSIC looks the student up and mails a login OTP to the registered email.
func (u *UserAuth) SubmitSIC(ctx context.Context, st *UserAuthState, sic string) Result {
	sic = strings.TrimSpace(sic)
	if sic == "" {
		return failure("Please enter your SIC")
	}
	st.Prefill = sic
	rec, err := u.api.GetStudent(ctx, sic)
	if err != nil {
		return pick(err, "SIC not found in our database. Please sign up first.", "Network error. Please check if the backend server is running.")
	}
	if err := u.api.SendLoginOTP(ctx, sic, rec.Email); err != nil {
		return pick(err, "Failed to send OTP. Please try again.", "Network error. Please check if the backend server is running.")
	}
	st.Login = LoginFlow{Phase: PhaseOtpPending, SIC: sic, Email: rec.Email}
	return success(fmt.Sprintf("Login OTP sent to %s", rec.Email))
}

// VerifyLoginOTP checks otp and grants the student session on success.
func (u *UserAuth) VerifyLoginOTP(ctx context.Context, st *UserAuthState, otp string) Result {
	if st.Login.Phase != PhaseOtpPending {
		return Result{}
	}
	otp, ok := checkOTP(otp)
	if !ok {
		return failure(invalidOTP)
	}
	if err := u.api.VerifyLoginOTP(ctx, st.Login.SIC, otp); err != nil {
		return pick(err, "Invalid OTP. Please try again.", "Verification failed. Please try again.")
	}
	st.Login.Phase = PhaseVerified
	res := success("Login successful! Redirecting...").redirect(PathDashboard, LoginRedirectDelay)
	res.Grant = &Grant{SIC: st.Login.SIC}
	return res
}

// ResendLoginOTP repeats SubmitSIC with the remembered SIC.
func (u *UserAuth) ResendLoginOTP(ctx context.Context, st *UserAuthState) Result {
	sic := st.Login.SIC
	if sic == "" {
		sic = st.Prefill
	}
	return u.SubmitSIC(ctx, st, sic)
}

// SubmitSignup validates the signup form and opens the disclaimer.
func (u *UserAuth) SubmitSignup(st *UserAuthState, sic, email string) Result {
	sic, email = strings.TrimSpace(sic), strings.TrimSpace(email)
	if sic == "" || email == "" {
		return failure("Please fill in all required fields")
	}
	if !validEmail(email) {
		return failure("Please enter a valid email address")
	}
	st.Signup = SignupFlow{Phase: PhaseForm, SIC: sic, Email: email}
	st.Disclaimer = Disclaimer{Open: true}
	return Result{}
}

// ScrollDisclaimer records the disclaimer scroll position. Once the end is
// reached the agree box stays enabled.
func (u *UserAuth) ScrollDisclaimer(st *UserAuthState, m ScrollMetrics) {
	if st.Disclaimer.Open && m.AtEnd() {
		st.Disclaimer.AgreeEnabled = true
	}
}

// SetAgree ticks or clears the agree box. It has no effect while disabled.
func (u *UserAuth) SetAgree(st *UserAuthState, agreed bool) {
	if !st.Disclaimer.Open || !st.Disclaimer.AgreeEnabled {
		st.Disclaimer.Agreed = false
		return
	}
	st.Disclaimer.Agreed = agreed
}

// ContinueAfterDisclaimer closes the gate and mails the signup OTP.
func (u *UserAuth) ContinueAfterDisclaimer(ctx context.Context, st *UserAuthState) Result {
	if !st.Disclaimer.CanContinue() {
		return Result{}
	}
	st.Disclaimer = Disclaimer{}
	if err := u.api.SendSignupOTP(ctx, st.Signup.SIC, st.Signup.Email); err != nil {
		if isTransport(err) {
			return failure("Network error. Please check if the backend server is running.")
		}
		return failure(signupRejection(err))
	}
	st.Signup.Phase = PhaseOtpPending
	return success(fmt.Sprintf("Verification OTP sent to %s", st.Signup.Email))
}

// signupRejection prefers the backend's message, then its raw text.
func signupRejection(err error) string {
	if se, ok := asStatus(err); ok {
		if se.Message != "" {
			return se.Message
		}
		if se.Text() != "" {
			return se.Text()
		}
	}
	return "This SIC or email may already be registered."
}

// CancelDisclaimer closes the gate and forgets the pending signup data.
func (u *UserAuth) CancelDisclaimer(st *UserAuthState) Result {
	st.Disclaimer = Disclaimer{}
	st.Signup = SignupFlow{}
	return Result{}
}

// VerifySignupOTP completes registration and moves to the login tab.
func (u *UserAuth) VerifySignupOTP(ctx context.Context, st *UserAuthState, otp string) Result {
	if st.Signup.Phase != PhaseOtpPending {
		return Result{}
	}
	otp, ok := checkOTP(otp)
	if !ok {
		return failure(invalidOTP)
	}
	reg := apiclient.Registration{SIC: st.Signup.SIC, Email: st.Signup.Email, OTP: otp, Status: student.Active}
	if err := u.api.Register(ctx, reg); err != nil {
		return pick(err, "Invalid OTP or registration failed. Please try again.", "Registration failed. Please try again.")
	}
	sic := st.Signup.SIC
	*st = UserAuthState{Tab: TabLogin, Prefill: sic}
	return success("Signup successful! Redirecting to login...")
}

// ResendSignupOTP reopens the disclaimer from scratch for the pending signup.
func (u *UserAuth) ResendSignupOTP(st *UserAuthState) Result {
	if st.Signup.SIC == "" {
		return Result{}
	}
	st.Disclaimer = Disclaimer{Open: true}
	return Result{}
}
