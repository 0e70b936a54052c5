package portal

import (
	"context"
	"fmt"
)

// AdminAuthState is the admin login page.
type AdminAuthState struct {
	Phase Phase `json:"phase"`
	// Email is shown on the page; it is the configured admin address.
	Email string `json:"email,omitempty"`
}

// AdminAuth sends and verifies OTPs for the single configured admin email.
type AdminAuth struct {
	api   AdminAuthAPI
	email string
}

func NewAdminAuth(api AdminAuthAPI, email string) *AdminAuth {
	return &AdminAuth{api: api, email: email}
}

// Email is the address admin OTPs go to.
func (a *AdminAuth) Email() string { return a.email }

// RequestOTP asks the backend to mail an OTP to the admin address.
func (a *AdminAuth) RequestOTP(ctx context.Context, st *AdminAuthState) Result {
	if st.Phase == PhaseVerified {
		return Result{}
	}
	if err := a.api.SendAdminOTP(ctx, a.email); err != nil {
		return pick(err, "Failed to send OTP. Please try again.", "Network error. Please check if the backend server is running.")
	}
	st.Phase = PhaseOtpPending
	return success(fmt.Sprintf("Admin verification OTP sent to %s", a.email))
}

// VerifyOTP checks otp and grants the admin session on success.
func (a *AdminAuth) VerifyOTP(ctx context.Context, st *AdminAuthState, otp string) Result {
	if st.Phase != PhaseOtpPending {
		return Result{}
	}
	otp, ok := checkOTP(otp)
	if !ok {
		return failure(invalidOTP)
	}
	if err := a.api.VerifyAdminOTP(ctx, a.email, otp); err != nil {
		return pick(err, "Invalid OTP. Please try again.", "Verification failed. Please try again.")
	}
	st.Phase = PhaseVerified
	res := success("Verification successful! Redirecting to admin panel...").redirect(PathAdmin, LoginRedirectDelay)
	res.Grant = &Grant{Admin: true, Email: a.email}
	return res
}

// Resend requests a fresh OTP; the entered code is discarded by the page.
func (a *AdminAuth) Resend(ctx context.Context, st *AdminAuthState) Result {
	return a.RequestOTP(ctx, st)
}
