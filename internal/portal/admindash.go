package portal

import (
	"context"
	"fmt"
	"strings"

	"hostelportal/internal/student"
)

// Modal names which dialog of a dashboard is open.
type Modal string

const (
	ModalNone    Modal = ""
	ModalEdit    Modal = "edit"
	ModalMessage Modal = "message"
	ModalEmail   Modal = "email"
	ModalPause   Modal = "pause"
	ModalStatus  Modal = "status"
)

// MessageDraft is the message dialog.
type MessageDraft struct {
	ToAll   bool   `json:"toAll"`
	Email   string `json:"email,omitempty"`
	SIC     string `json:"sic,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

// AdminDashState is the admin dashboard.
type AdminDashState struct {
	// Loaded is false until the roster was fetched once.
	Loaded   bool              `json:"loaded"`
	Roster   []student.Student `json:"roster,omitempty"`
	Filtered []student.Student `json:"filtered,omitempty"`
	Query    string            `json:"query,omitempty"`
	Field    student.Field     `json:"field,omitempty"`
	Searched bool              `json:"searched,omitempty"`

	Modal   Modal           `json:"modal,omitempty"`
	Editing student.Student `json:"editing"`
	Message MessageDraft    `json:"message"`
}

// Visible is the roster as currently displayed.
func (s *AdminDashState) Visible() []student.Student {
	if s.Searched {
		return s.Filtered
	}
	return s.Roster
}

// Stats are computed over the whole roster, never the filtered view.
func (s *AdminDashState) Stats() student.Stats { return student.Summarize(s.Roster) }

// EditForm is the edit dialog as submitted.
type EditForm struct {
	SlNo            int64  `form:"slNo"`
	SIC             string `form:"sic"`
	Email           string `form:"email"`
	AttendanceCount int    `form:"attendanceCount"`
	Status          string `form:"status"`
	IsTaken         bool   `form:"isTaken"`
	IsVerified      bool   `form:"isVerified"`
	PauseTill       string `form:"pauseTill"`
}

// MessageForm is the message dialog as submitted.
type MessageForm struct {
	ToAll   bool   `form:"sendToAll"`
	Email   string `form:"toEmail"`
	Subject string `form:"subject"`
	Body    string `form:"body"`
}

// AdminDash is the roster console.
type AdminDash struct {
	api RosterAPI
}

func NewAdminDash(api RosterAPI) *AdminDash { return &AdminDash{api: api} }

// Load fetches the roster and clears the active search. On failure the table
// keeps whatever it showed before.
func (a *AdminDash) Load(ctx context.Context, st *AdminDashState) Result {
	list, err := a.api.ListStudents(ctx)
	if err != nil {
		return pick(err, "Failed to load students", "Network error. Please refresh the page.")
	}
	if list == nil {
		list = []student.Student{}
	}
	st.Loaded = true
	st.Roster = list
	st.clearSearch()
	return Result{}
}

// Search filters the loaded roster without calling the backend.
func (a *AdminDash) Search(st *AdminDashState, query string, field student.Field) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return failure("Please enter a search term")
	}
	if field != student.FieldEmail {
		field = student.FieldSIC
	}
	st.Query, st.Field, st.Searched = query, field, true
	st.Filtered = student.Filter(st.Roster, query, field)
	if len(st.Filtered) == 0 {
		return info("No students found matching your search")
	}
	return Result{}
}

// ClearSearch restores the full roster.
func (a *AdminDash) ClearSearch(st *AdminDashState) Result {
	st.clearSearch()
	return Result{}
}

func (s *AdminDashState) clearSearch() {
	s.Query, s.Field, s.Searched, s.Filtered = "", "", false, nil
}

// EditStudent opens the edit dialog for slNo.
func (a *AdminDash) EditStudent(st *AdminDashState, slNo int64) Result {
	rec, ok := student.FindBySlNo(st.Roster, slNo)
	if !ok {
		return failure("Student not found")
	}
	st.Modal = ModalEdit
	st.Editing = rec
	return Result{}
}

// SubmitEdit replaces the record with the edited one. addedOn and takenOn
// are carried over from the loaded copy; the PUT goes to the original SIC.
func (a *AdminDash) SubmitEdit(ctx context.Context, st *AdminDashState, form EditForm) Result {
	orig, ok := student.FindBySlNo(st.Roster, form.SlNo)
	if !ok {
		return failure("Student not found")
	}
	status, err := student.ParseStatus(form.Status)
	if err != nil {
		return failure("Please select a valid status")
	}
	rec := student.Student{
		SlNo:            form.SlNo,
		SIC:             strings.TrimSpace(form.SIC),
		Email:           strings.TrimSpace(form.Email),
		AttendanceCount: form.AttendanceCount,
		Status:          status,
		IsTaken:         form.IsTaken,
		IsVerified:      form.IsVerified,
		TakenOn:         orig.TakenOn,
		AddedOn:         orig.AddedOn,
	}
	if p := strings.TrimSpace(form.PauseTill); p != "" {
		d, err := student.ParseDate(p)
		if err != nil {
			return failure("Please enter a valid pause date")
		}
		rec.PauseTill = &d
	}
	rec.EnforcePauseInvariant()

	if err := a.api.UpdateStudent(ctx, orig.SIC, rec, ""); err != nil {
		if isTransport(err) {
			return failure("Update failed. Please try again.")
		}
		if se, ok := asStatus(err); ok && se.Text() != "" {
			return failure(se.Text())
		}
		return failure("Failed to update student")
	}
	st.Modal, st.Editing = ModalNone, student.Student{}
	res := success("Student updated successfully!")
	if r := a.Load(ctx, st); r.Toast != nil {
		res.Toast = r.Toast
	}
	return res
}

// OpenMessage opens the message dialog for one student or, with toAll, for
// everyone.
func (a *AdminDash) OpenMessage(st *AdminDashState, email, sic string, toAll bool) Result {
	st.Modal = ModalMessage
	if toAll {
		st.Message = MessageDraft{ToAll: true}
	} else {
		st.Message = MessageDraft{Email: email, SIC: sic}
	}
	return Result{}
}

// SetBroadcast toggles the send-to-all box to form.ToAll, keeping whatever
// was typed so far.
func (a *AdminDash) SetBroadcast(st *AdminDashState, form MessageForm) Result {
	st.Message.ToAll = form.ToAll
	st.Message.Email = strings.TrimSpace(form.Email)
	st.Message.Subject, st.Message.Body = form.Subject, form.Body
	return Result{}
}

// SubmitMessage sends the drafted message.
func (a *AdminDash) SubmitMessage(ctx context.Context, st *AdminDashState, form MessageForm) Result {
	a.SetBroadcast(st, form)

	if !form.ToAll && st.Message.Email == "" {
		return failure("Please enter a recipient email")
	}
	if strings.TrimSpace(form.Subject) == "" || strings.TrimSpace(form.Body) == "" {
		return failure("Please fill in subject and message")
	}

	var text string
	if form.ToAll {
		n, err := a.api.SendMessageToAll(ctx, form.Subject, form.Body)
		if err != nil {
			return messageFailure(err)
		}
		text = fmt.Sprintf("Message sent to %d students!", n)
	} else {
		if err := a.api.SendMessage(ctx, st.Message.Email, form.Subject, form.Body); err != nil {
			return messageFailure(err)
		}
		text = "Message sent successfully!"
	}
	st.Modal, st.Message = ModalNone, MessageDraft{}
	return success(text)
}

func messageFailure(err error) Result {
	if isTransport(err) {
		return failure("Failed to send message. Please try again.")
	}
	if se, ok := asStatus(err); ok && se.Message != "" {
		return failure(se.Message)
	}
	return failure("Failed to send message")
}

// CloseModal dismisses whichever dialog is open.
func (a *AdminDash) CloseModal(st *AdminDashState) Result {
	st.Modal = ModalNone
	st.Editing = student.Student{}
	return Result{}
}

// Logout ends the admin session.
func (a *AdminDash) Logout(confirmed bool) Result {
	if !confirmed {
		return Result{}
	}
	return Result{Logout: true, Redirect: &Redirect{To: PathAdminLogin}}
}
