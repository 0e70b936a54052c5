// Package portal holds the page controllers of the hostel portal. Each
// controller operates on an explicit state value and reports what the page
// should show next as a Result; rendering lives in package web.
package portal

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/student"
)

// Page paths, also used as session page keys.
const (
	PathAdminLogin = "/admin/login"
	PathAuth       = "/auth"
	PathAdmin      = "/admin"
	PathDashboard  = "/dashboard"
)

// Delays before the follow-up navigation of a successful flow.
const (
	LoginRedirectDelay = 1500 * time.Millisecond
	LeaveRedirectDelay = 2 * time.Second
)

// ToastKind selects the toast styling.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

type Toast struct {
	Kind ToastKind `json:"kind"`
	Text string    `json:"text"`
}

// Redirect is a navigation that happens After the toast has been shown.
type Redirect struct {
	To    string        `json:"to"`
	After time.Duration `json:"after"`
}

// Grant is a verified login to be written into the session.
type Grant struct {
	Admin bool
	Email string
	SIC   string
}

// Result is the outcome of one controller operation.
type Result struct {
	Toast    *Toast
	Redirect *Redirect
	Grant    *Grant
	// Logout asks for every session flag to be cleared.
	Logout bool
}

func success(text string) Result { return Result{Toast: &Toast{Kind: ToastSuccess, Text: text}} }
func failure(text string) Result { return Result{Toast: &Toast{Kind: ToastError, Text: text}} }
func info(text string) Result    { return Result{Toast: &Toast{Kind: ToastInfo, Text: text}} }

func (r Result) redirect(to string, after time.Duration) Result {
	r.Redirect = &Redirect{To: to, After: after}
	return r
}

// Phase is the progress of an OTP flow.
type Phase int

const (
	PhaseForm Phase = iota
	PhaseOtpPending
	PhaseVerified
)

const invalidOTP = "Please enter a valid 6-digit OTP"

// checkOTP trims otp and reports whether it has exactly six characters.
// Content is left for the backend to judge.
func checkOTP(otp string) (string, bool) {
	otp = strings.TrimSpace(otp)
	return otp, utf8.RuneCountInString(otp) == 6
}

var validate = validator.New()

func validEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func isTransport(err error) bool { return errors.Is(err, apiclient.ErrTransport) }

func asStatus(err error) (*apiclient.StatusError, bool) {
	var se *apiclient.StatusError
	ok := errors.As(err, &se)
	return se, ok
}

// pick chooses the toast for a failed backend call: transport failures get
// network, everything else rejected.
func pick(err error, rejected, network string) Result {
	if isTransport(err) {
		return failure(network)
	}
	return failure(rejected)
}

// AdminAuthAPI is the slice of the backend used by the admin login page.
type AdminAuthAPI interface {
	SendAdminOTP(ctx context.Context, email string) error
	VerifyAdminOTP(ctx context.Context, email, otp string) error
}

// UserAuthAPI is the slice of the backend used by the student login page.
type UserAuthAPI interface {
	GetStudent(ctx context.Context, sic string) (student.Student, error)
	SendLoginOTP(ctx context.Context, sic, email string) error
	VerifyLoginOTP(ctx context.Context, sic, otp string) error
	SendSignupOTP(ctx context.Context, sic, email string) error
	Register(ctx context.Context, reg apiclient.Registration) error
}

// RosterAPI is the slice of the backend used by the admin dashboard.
type RosterAPI interface {
	ListStudents(ctx context.Context) ([]student.Student, error)
	UpdateStudent(ctx context.Context, sic string, rec student.Student, otp string) error
	SendMessage(ctx context.Context, toEmail, subject, body string) error
	SendMessageToAll(ctx context.Context, subject, body string) (int, error)
}

// ProfileAPI is the slice of the backend used by the student dashboard.
type ProfileAPI interface {
	GetStudent(ctx context.Context, sic string) (student.Student, error)
	SendEmailChangeOTP(ctx context.Context, sic, newEmail string) error
	UpdateStudent(ctx context.Context, sic string, rec student.Student, otp string) error
}
