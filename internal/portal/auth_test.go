package portal

import (
	"context"
	"net/http"
	"testing"

	"hostelportal/internal/student"
)

const adminEmail = "warden@hostel.test"

func TestAdminRequestAndVerify(t *testing.T) {
	f := newFake()
	a := NewAdminAuth(f, adminEmail)
	st := &AdminAuthState{}
	ctx := context.Background()

	res := a.RequestOTP(ctx, st)
	if st.Phase != PhaseOtpPending {
		t.Fatalf("expected OTP pending, got %v (%s)", st.Phase, toastText(res))
	}
	if toastText(res) != "Admin verification OTP sent to "+adminEmail {
		t.Fatalf("unexpected toast %q", toastText(res))
	}

	res = a.VerifyOTP(ctx, st, " 123456 ")
	if st.Phase != PhaseVerified || res.Grant == nil || !res.Grant.Admin || res.Grant.Email != adminEmail {
		t.Fatalf("expected admin grant, got %+v", res)
	}
	if res.Redirect == nil || res.Redirect.To != PathAdmin || res.Redirect.After != LoginRedirectDelay {
		t.Fatalf("expected delayed redirect to admin, got %+v", res.Redirect)
	}
}

func TestAdminResendSendsAgain(t *testing.T) {
	f := newFake()
	a := NewAdminAuth(f, adminEmail)
	st := &AdminAuthState{}
	ctx := context.Background()

	a.RequestOTP(ctx, st)
	res := a.Resend(ctx, st)
	if f.count("send-admin-otp") != 2 {
		t.Fatalf("expected a second send, got %d", f.count("send-admin-otp"))
	}
	if st.Phase != PhaseOtpPending || toastText(res) != "Admin verification OTP sent to "+adminEmail {
		t.Fatalf("resend must stay pending with the sent toast, got %v %q", st.Phase, toastText(res))
	}

	f.errs["send-admin-otp"] = errDown
	res = a.Resend(ctx, st)
	if toastText(res) != "Network error. Please check if the backend server is running." {
		t.Fatalf("unexpected toast %q", toastText(res))
	}
	if st.Phase != PhaseOtpPending {
		t.Fatalf("a failed resend keeps the OTP step, got %v", st.Phase)
	}
}

func TestOTPLengthCheckedLocally(t *testing.T) {
	f := newFake()
	a := NewAdminAuth(f, adminEmail)
	u := NewUserAuth(f)
	ctx := context.Background()

	for _, otp := range []string{"", "12345", "1234567", "   "} {
		st := &AdminAuthState{Phase: PhaseOtpPending}
		if got := toastText(a.VerifyOTP(ctx, st, otp)); got != invalidOTP {
			t.Fatalf("admin otp %q: got %q", otp, got)
		}
		ust := &UserAuthState{Login: LoginFlow{Phase: PhaseOtpPending, SIC: "A1"}, Signup: SignupFlow{Phase: PhaseOtpPending, SIC: "A1", Email: "a@h.test"}}
		if got := toastText(u.VerifyLoginOTP(ctx, ust, otp)); got != invalidOTP {
			t.Fatalf("login otp %q: got %q", otp, got)
		}
		if got := toastText(u.VerifySignupOTP(ctx, ust, otp)); got != invalidOTP {
			t.Fatalf("signup otp %q: got %q", otp, got)
		}
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no backend calls, got %v", f.calls)
	}
}

func TestAdminFailures(t *testing.T) {
	ctx := context.Background()
	f := newFake()
	f.errs["send-admin-otp"] = rejected(http.StatusInternalServerError, "boom")
	a := NewAdminAuth(f, adminEmail)
	st := &AdminAuthState{}
	if got := toastText(a.RequestOTP(ctx, st)); got != "Failed to send OTP. Please try again." || st.Phase != PhaseForm {
		t.Fatalf("unexpected %q phase %v", got, st.Phase)
	}
	f.errs["send-admin-otp"] = errDown
	if got := toastText(a.RequestOTP(ctx, st)); got != "Network error. Please check if the backend server is running." {
		t.Fatalf("unexpected %q", got)
	}

	st.Phase = PhaseOtpPending
	f.errs["verify-admin-otp"] = rejected(http.StatusUnauthorized, "")
	res := a.VerifyOTP(ctx, st, "000000")
	if toastText(res) != "Invalid OTP. Please try again." || res.Grant != nil || st.Phase != PhaseOtpPending {
		t.Fatalf("unexpected %+v", res)
	}
	f.errs["verify-admin-otp"] = errDown
	if got := toastText(a.VerifyOTP(ctx, st, "000000")); got != "Verification failed. Please try again." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestVerifyIgnoredOutsideOtpPending(t *testing.T) {
	f := newFake()
	res := NewAdminAuth(f, adminEmail).VerifyOTP(context.Background(), &AdminAuthState{}, "123456")
	if res.Grant != nil || len(f.calls) != 0 {
		t.Fatalf("verify must need a pending OTP: %+v %v", res, f.calls)
	}
}

func TestLoginUnknownSICSkipsOTP(t *testing.T) {
	f := newFake()
	u := NewUserAuth(f)
	st := &UserAuthState{Tab: TabLogin}
	res := u.SubmitSIC(context.Background(), st, "22BCE1234")
	if toastText(res) != "SIC not found in our database. Please sign up first." {
		t.Fatalf("unexpected toast %q", toastText(res))
	}
	if f.count("send-login-otp") != 0 {
		t.Fatalf("no OTP must be sent for an unknown SIC")
	}
	if st.Login.Phase != PhaseForm {
		t.Fatalf("expected login form to stay")
	}
}

func TestLoginFlow(t *testing.T) {
	f := newFake()
	f.students["22BCE1234"] = student.Student{SIC: "22BCE1234", Email: "a@hostel.test"}
	u := NewUserAuth(f)
	st := &UserAuthState{Tab: TabLogin}
	ctx := context.Background()

	if got := toastText(u.SubmitSIC(ctx, st, "")); got != "Please enter your SIC" {
		t.Fatalf("unexpected %q", got)
	}
	if got := toastText(u.SubmitSIC(ctx, st, " 22BCE1234 ")); got != "Login OTP sent to a@hostel.test" {
		t.Fatalf("unexpected %q", got)
	}
	if st.Login.Phase != PhaseOtpPending || st.Login.SIC != "22BCE1234" {
		t.Fatalf("unexpected login flow %+v", st.Login)
	}

	u.ResendLoginOTP(ctx, st)
	if f.count("send-login-otp") != 2 {
		t.Fatalf("resend should send again, calls %v", f.calls)
	}

	res := u.VerifyLoginOTP(ctx, st, "654321")
	if res.Grant == nil || res.Grant.SIC != "22BCE1234" || res.Grant.Admin {
		t.Fatalf("expected student grant, got %+v", res)
	}
	if res.Redirect == nil || res.Redirect.To != PathDashboard || res.Redirect.After != LoginRedirectDelay {
		t.Fatalf("unexpected redirect %+v", res.Redirect)
	}
}

func TestLoginOTPRejected(t *testing.T) {
	f := newFake()
	f.students["A1"] = student.Student{SIC: "A1", Email: "a@h.test"}
	f.errs["send-login-otp"] = rejected(http.StatusBadRequest, "")
	st := &UserAuthState{}
	if got := toastText(NewUserAuth(f).SubmitSIC(context.Background(), st, "A1")); got != "Failed to send OTP. Please try again." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestScrollMetricsAtEnd(t *testing.T) {
	cases := []struct {
		m    ScrollMetrics
		want bool
	}{
		{ScrollMetrics{Top: 0, Client: 200, Height: 800}, false},
		{ScrollMetrics{Top: 589, Client: 200, Height: 800}, false},
		{ScrollMetrics{Top: 590, Client: 200, Height: 800}, true},
		{ScrollMetrics{Top: 600, Client: 200, Height: 800}, true},
		{ScrollMetrics{Top: 0, Client: 300, Height: 300}, true},
	}
	for _, c := range cases {
		if got := c.m.AtEnd(); got != c.want {
			t.Fatalf("%+v: got %v want %v", c.m, got, c.want)
		}
	}
}

func TestDisclaimerGate(t *testing.T) {
	f := newFake()
	u := NewUserAuth(f)
	st := &UserAuthState{Tab: TabSignup}
	ctx := context.Background()

	if got := toastText(u.SubmitSignup(st, "A1", "")); got != "Please fill in all required fields" {
		t.Fatalf("unexpected %q", got)
	}
	if got := toastText(u.SubmitSignup(st, "A1", "not-an-email")); got != "Please enter a valid email address" {
		t.Fatalf("unexpected %q", got)
	}
	u.SubmitSignup(st, "A1", "a@hostel.test")
	if !st.Disclaimer.Open || st.Disclaimer.AgreeEnabled {
		t.Fatalf("expected opened gate with agree disabled: %+v", st.Disclaimer)
	}

	u.SetAgree(st, true)
	if st.Disclaimer.Agreed {
		t.Fatalf("agree must stay off until scrolled to the end")
	}
	u.ContinueAfterDisclaimer(ctx, st)
	if f.count("send-signup-otp") != 0 {
		t.Fatalf("continue must be disabled")
	}

	u.ScrollDisclaimer(st, ScrollMetrics{Top: 600, Client: 200, Height: 800})
	u.ScrollDisclaimer(st, ScrollMetrics{Top: 0, Client: 200, Height: 800})
	if !st.Disclaimer.AgreeEnabled {
		t.Fatalf("agree should stay enabled once the end was reached")
	}
	u.SetAgree(st, false)
	if st.Disclaimer.CanContinue() {
		t.Fatalf("continue must be disabled while agree is unchecked")
	}
	u.SetAgree(st, true)
	res := u.ContinueAfterDisclaimer(ctx, st)
	if toastText(res) != "Verification OTP sent to a@hostel.test" || st.Signup.Phase != PhaseOtpPending || st.Disclaimer.Open {
		t.Fatalf("unexpected %+v state %+v", res, st)
	}
}

func TestCancelDisclaimerForgetsSignup(t *testing.T) {
	u := NewUserAuth(newFake())
	st := &UserAuthState{Tab: TabSignup}
	u.SubmitSignup(st, "A1", "a@hostel.test")
	u.CancelDisclaimer(st)
	if st.Disclaimer.Open || st.Signup.SIC != "" || st.Signup.Email != "" {
		t.Fatalf("expected pending signup dropped: %+v", st)
	}
}

func openedGate(u *UserAuth, st *UserAuthState) {
	u.SubmitSignup(st, "A1", "a@hostel.test")
	u.ScrollDisclaimer(st, ScrollMetrics{Top: 1, Client: 1, Height: 1})
	u.SetAgree(st, true)
}

func TestSignupRejectionText(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		err  error
		want string
	}{
		{rejectedWithMessage(http.StatusConflict, "SIC already registered"), "SIC already registered"},
		{rejected(http.StatusConflict, "Email taken"), "Email taken"},
		{rejected(http.StatusConflict, ""), "This SIC or email may already be registered."},
		{errDown, "Network error. Please check if the backend server is running."},
	}
	for _, c := range cases {
		f := newFake()
		f.errs["send-signup-otp"] = c.err
		u := NewUserAuth(f)
		st := &UserAuthState{Tab: TabSignup}
		openedGate(u, st)
		if got := toastText(u.ContinueAfterDisclaimer(ctx, st)); got != c.want {
			t.Fatalf("got %q want %q", got, c.want)
		}
	}
}

func TestSignupCompletesToLoginTab(t *testing.T) {
	f := newFake()
	u := NewUserAuth(f)
	st := &UserAuthState{Tab: TabSignup}
	ctx := context.Background()
	openedGate(u, st)
	u.ContinueAfterDisclaimer(ctx, st)

	res := u.VerifySignupOTP(ctx, st, "111111")
	if toastText(res) != "Signup successful! Redirecting to login..." {
		t.Fatalf("unexpected %q", toastText(res))
	}
	if st.Tab != TabLogin || st.Prefill != "A1" || st.Signup.Phase != PhaseForm {
		t.Fatalf("expected login tab prefilled, got %+v", st)
	}
	reg := f.register[0]
	if reg.SIC != "A1" || reg.Email != "a@hostel.test" || reg.OTP != "111111" || reg.Status != student.Active {
		t.Fatalf("unexpected registration %+v", reg)
	}
}

func TestSignupRegisterRejected(t *testing.T) {
	f := newFake()
	f.errs["register"] = rejected(http.StatusBadRequest, "bad otp")
	u := NewUserAuth(f)
	st := &UserAuthState{Signup: SignupFlow{Phase: PhaseOtpPending, SIC: "A1", Email: "a@h.test"}}
	if got := toastText(u.VerifySignupOTP(context.Background(), st, "111111")); got != "Invalid OTP or registration failed. Please try again." {
		t.Fatalf("unexpected %q", got)
	}
	if st.Signup.Phase != PhaseOtpPending {
		t.Fatalf("expected OTP step kept")
	}
}

func TestResendSignupReopensGate(t *testing.T) {
	u := NewUserAuth(newFake())
	st := &UserAuthState{Signup: SignupFlow{Phase: PhaseOtpPending, SIC: "A1", Email: "a@h.test"}}
	u.ResendSignupOTP(st)
	if !st.Disclaimer.Open || st.Disclaimer.AgreeEnabled || st.Disclaimer.Agreed {
		t.Fatalf("expected a fresh gate, got %+v", st.Disclaimer)
	}
}

func TestSwitchTabResetsFlows(t *testing.T) {
	u := NewUserAuth(newFake())
	st := &UserAuthState{
		Tab:        TabLogin,
		Login:      LoginFlow{Phase: PhaseOtpPending, SIC: "A1"},
		Signup:     SignupFlow{Phase: PhaseOtpPending, SIC: "B2"},
		Disclaimer: Disclaimer{Open: true},
	}
	u.SwitchTab(st, TabSignup)
	if st.Tab != TabSignup || st.Login.Phase != PhaseForm || st.Signup.Phase != PhaseForm || st.Disclaimer.Open {
		t.Fatalf("expected reset, got %+v", st)
	}
}
