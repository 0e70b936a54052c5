package portal

import (
	"context"
	"fmt"
	"net/http"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/student"
)

// fakeBackend records calls and answers from its fields. A non-nil err for a
// call name is returned instead of the canned answer.
type fakeBackend struct {
	calls    []string
	errs     map[string]error
	students map[string]student.Student
	roster   []student.Student
	sentAll  int

	updated  []student.Student
	updOTPs  []string
	updSICs  []string
	register []apiclient.Registration
}

func newFake() *fakeBackend {
	return &fakeBackend{errs: map[string]error{}, students: map[string]student.Student{}}
}

func (f *fakeBackend) called(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeBackend) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func rejected(code int, body string) error {
	return &apiclient.StatusError{Endpoint: "test", Code: code, Body: body}
}

func rejectedWithMessage(code int, msg string) error {
	return &apiclient.StatusError{Endpoint: "test", Code: code, Body: fmt.Sprintf(`{"message":%q}`, msg), Message: msg}
}

var errDown = fmt.Errorf("test: %w: connection refused", apiclient.ErrTransport)

func (f *fakeBackend) SendAdminOTP(_ context.Context, email string) error {
	return f.called("send-admin-otp")
}

func (f *fakeBackend) VerifyAdminOTP(_ context.Context, email, otp string) error {
	return f.called("verify-admin-otp")
}

func (f *fakeBackend) GetStudent(_ context.Context, sic string) (student.Student, error) {
	if err := f.called("get-student"); err != nil {
		return student.Student{}, err
	}
	s, ok := f.students[sic]
	if !ok {
		return student.Student{}, rejected(http.StatusNotFound, "")
	}
	return s, nil
}

func (f *fakeBackend) SendLoginOTP(_ context.Context, sic, email string) error {
	return f.called("send-login-otp")
}

func (f *fakeBackend) VerifyLoginOTP(_ context.Context, sic, otp string) error {
	return f.called("verify-login-otp")
}

func (f *fakeBackend) SendSignupOTP(_ context.Context, sic, email string) error {
	return f.called("send-signup-otp")
}

func (f *fakeBackend) Register(_ context.Context, reg apiclient.Registration) error {
	if err := f.called("register"); err != nil {
		return err
	}
	f.register = append(f.register, reg)
	return nil
}

func (f *fakeBackend) SendEmailChangeOTP(_ context.Context, sic, newEmail string) error {
	return f.called("send-email-change-otp")
}

func (f *fakeBackend) ListStudents(context.Context) ([]student.Student, error) {
	if err := f.called("list-students"); err != nil {
		return nil, err
	}
	return append([]student.Student(nil), f.roster...), nil
}

func (f *fakeBackend) UpdateStudent(_ context.Context, sic string, rec student.Student, otp string) error {
	if err := f.called("update-student"); err != nil {
		return err
	}
	f.updSICs = append(f.updSICs, sic)
	f.updated = append(f.updated, rec)
	f.updOTPs = append(f.updOTPs, otp)
	if _, ok := f.students[sic]; ok {
		delete(f.students, sic)
		f.students[rec.SIC] = rec
	}
	return nil
}

func (f *fakeBackend) SendMessage(_ context.Context, toEmail, subject, body string) error {
	return f.called("send-message")
}

func (f *fakeBackend) SendMessageToAll(_ context.Context, subject, body string) (int, error) {
	if err := f.called("send-message-all"); err != nil {
		return 0, err
	}
	return f.sentAll, nil
}

func toastText(r Result) string {
	if r.Toast == nil {
		return ""
	}
	return r.Toast.Text
}
