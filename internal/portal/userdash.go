package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hostelportal/internal/student"
)

// UserDashState is the student dashboard.
type UserDashState struct {
	Loaded  bool            `json:"loaded"`
	Student student.Student `json:"student"`

	Modal Modal `json:"modal,omitempty"`
	// EmailPending is true once an OTP went to NewEmail.
	EmailPending bool   `json:"emailPending,omitempty"`
	NewEmail     string `json:"newEmail,omitempty"`
	// MinPause is the earliest date the pause dialog accepts.
	MinPause string `json:"minPause,omitempty"`
}

// Today is the attendance label of the loaded record.
func (s *UserDashState) Today() student.Today { return student.TodayOf(s.Student) }

// UserDash is the student self-service dashboard for one SIC.
type UserDash struct {
	api ProfileAPI
	loc *time.Location
	now func() time.Time
}

// NewUserDash builds the controller; loc decides what "today" means.
func NewUserDash(api ProfileAPI, loc *time.Location) *UserDash {
	if loc == nil {
		loc = time.UTC
	}
	return &UserDash{api: api, loc: loc, now: time.Now}
}

func (u *UserDash) today() student.Date { return student.DateOf(u.now().In(u.loc)) }

// Load fetches the student's record. A rejected lookup ends the session.
func (u *UserDash) Load(ctx context.Context, st *UserDashState, sic string) Result {
	rec, err := u.api.GetStudent(ctx, sic)
	if err != nil {
		if isTransport(err) {
			return failure("Network error. Please refresh the page.")
		}
		res := failure("Failed to load student data").redirect(PathAuth, LeaveRedirectDelay)
		res.Logout = true
		return res
	}
	st.Loaded = true
	st.Student = rec
	return Result{}
}

// reload refreshes the record after a successful mutation, keeping ok unless
// the reload itself produced a toast.
func (u *UserDash) reload(ctx context.Context, st *UserDashState, ok Result) Result {
	if r := u.Load(ctx, st, st.Student.SIC); r.Toast != nil {
		return r
	}
	return ok
}

func (u *UserDash) put(ctx context.Context, rec student.Student, otp string) error {
	rec.EnforcePauseInvariant()
	return u.api.UpdateStudent(ctx, rec.SIC, rec, otp)
}

// OpenEmail opens the email dialog at its first step.
func (u *UserDash) OpenEmail(st *UserDashState) Result {
	st.Modal, st.EmailPending, st.NewEmail = ModalEmail, false, ""
	return Result{}
}

// RequestEmailChange mails an OTP to newEmail.
func (u *UserDash) RequestEmailChange(ctx context.Context, st *UserDashState, newEmail string) Result {
	newEmail = strings.TrimSpace(newEmail)
	if newEmail == "" {
		return failure("Please enter a new email address")
	}
	if !validEmail(newEmail) {
		return failure("Please enter a valid email address")
	}
	if err := u.api.SendEmailChangeOTP(ctx, st.Student.SIC, newEmail); err != nil {
		return pick(err, "Failed to send OTP. Email may already be in use.", "Network error. Please try again.")
	}
	st.EmailPending, st.NewEmail = true, newEmail
	return success(fmt.Sprintf("Verification OTP sent to %s", newEmail))
}

// VerifyEmailOTP stores the new email, letting the backend check otp.
func (u *UserDash) VerifyEmailOTP(ctx context.Context, st *UserDashState, otp string) Result {
	if !st.EmailPending {
		return Result{}
	}
	otp, ok := checkOTP(otp)
	if !ok {
		return failure(invalidOTP)
	}
	rec := st.Student
	rec.Email = st.NewEmail
	if err := u.put(ctx, rec, otp); err != nil {
		return pick(err, "Invalid OTP or update failed", "Update failed. Please try again.")
	}
	st.Modal, st.EmailPending, st.NewEmail = ModalNone, false, ""
	return u.reload(ctx, st, success("Email updated successfully!"))
}

// OpenPause opens the pause dialog with its earliest selectable date.
func (u *UserDash) OpenPause(st *UserDashState) Result {
	st.Modal = ModalPause
	st.MinPause = student.MinPauseDate(u.today(), st.Student.IsTaken).String()
	return Result{}
}

// SetPauseDate pauses the account until date.
func (u *UserDash) SetPauseDate(ctx context.Context, st *UserDashState, date string) Result {
	if strings.TrimSpace(date) == "" {
		return failure("Please select a date")
	}
	d, err := student.ParseDate(date)
	if err != nil {
		return failure("Please select a date")
	}
	switch err := student.CheckPauseDate(d, u.today(), st.Student.IsTaken); err {
	case student.ErrPastDate:
		return failure("Cannot select a past date")
	case student.ErrTodayTaken:
		return failure("Cannot select today as attendance is already taken")
	}
	rec := st.Student
	rec.Status = student.Paused
	rec.PauseTill = &d
	if err := u.put(ctx, rec, ""); err != nil {
		return pick(err, "Failed to update pause date", "Update failed. Please try again.")
	}
	st.Modal = ModalNone
	return u.reload(ctx, st, success("Pause date updated successfully!"))
}

// OpenStatus opens the status dialog.
func (u *UserDash) OpenStatus(st *UserDashState) Result {
	st.Modal = ModalStatus
	return Result{}
}

// ChangeStatus moves the account to status.
func (u *UserDash) ChangeStatus(ctx context.Context, st *UserDashState, status student.Status) Result {
	if !status.Valid() {
		return failure("Please select a valid status")
	}
	if status == st.Student.Status {
		return info(fmt.Sprintf("Status is already set to %s", status))
	}
	if err := u.put(ctx, st.Student.WithStatus(status), ""); err != nil {
		return pick(err, "Failed to update status", "Update failed. Please try again.")
	}
	st.Modal = ModalNone
	return u.reload(ctx, st, success("Account status updated successfully!"))
}

// Deactivate stops automatic attendance for good and ends the session.
func (u *UserDash) Deactivate(ctx context.Context, st *UserDashState, confirmed bool) Result {
	if !confirmed {
		return Result{}
	}
	if err := u.put(ctx, st.Student.WithStatus(student.Deactivated), ""); err != nil {
		return pick(err, "Failed to deactivate account", "Deactivation failed. Please try again.")
	}
	res := success("Account deactivated successfully").redirect(PathAuth, LeaveRedirectDelay)
	res.Logout = true
	return res
}

// CloseModal dismisses whichever dialog is open.
func (u *UserDash) CloseModal(st *UserDashState) Result {
	st.Modal, st.EmailPending, st.NewEmail = ModalNone, false, ""
	return Result{}
}

// Logout ends the student session.
func (u *UserDash) Logout(confirmed bool) Result {
	if !confirmed {
		return Result{}
	}
	return Result{Logout: true, Redirect: &Redirect{To: PathAuth}}
}
