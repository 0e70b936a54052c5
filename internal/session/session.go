package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a Store for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// UserType is the role recorded by a successful OTP login.
type UserType string

const (
	UserAdmin   UserType = "admin"
	UserStudent UserType = "student"
)

// Session carries the login flags plus the state of the page currently in use.
// Only one page's state is kept at a time; activating a page drops the others.
type Session struct {
	ID         string   `json:"id"`
	UserType   UserType `json:"userType,omitempty"`
	AdminAuth  bool     `json:"adminAuth,omitempty"`
	AdminEmail string   `json:"adminEmail,omitempty"`
	UserSIC    string   `json:"userSic,omitempty"`

	Page      string          `json:"page,omitempty"`
	PageState json.RawMessage `json:"pageState,omitempty"`
	// Carry is set by a form post right before it redirects back to Page,
	// so the following GET continues the page instead of loading it afresh.
	Carry bool `json:"carry,omitempty"`
	// Flash is a one-shot message for the next continuation of Page.
	Flash json.RawMessage `json:"flash,omitempty"`
}

// New returns an empty session with a fresh random ID.
func New() *Session {
	return &Session{ID: uuid.NewString()}
}

// IsAdmin reports whether the admin flags are both present.
func (s *Session) IsAdmin() bool {
	return s.AdminAuth && s.UserType == UserAdmin
}

// IsStudent reports whether a student is logged in.
func (s *Session) IsStudent() bool {
	return s.UserSIC != "" && s.UserType == UserStudent
}

// GrantAdmin records a verified admin login.
func (s *Session) GrantAdmin(email string) {
	s.AdminAuth = true
	s.UserType = UserAdmin
	s.AdminEmail = email
	s.UserSIC = ""
}

// GrantStudent records a verified student login.
func (s *Session) GrantStudent(sic string) {
	s.UserSIC = sic
	s.UserType = UserStudent
	s.AdminAuth = false
	s.AdminEmail = ""
}

// Rekey gives the session a fresh random ID and returns the previous one.
func (s *Session) Rekey() string {
	old := s.ID
	s.ID = uuid.NewString()
	return old
}

// Clear drops every flag and all page state, keeping the ID.
func (s *Session) Clear() {
	*s = Session{ID: s.ID}
}

// Enter makes page the active page. It returns true when the page starts
// afresh, i.e. it was not active or the request is not a form-post continuation.
// A fresh page loses whatever state and flash it had.
func (s *Session) Enter(page string) bool {
	carry := s.Carry && s.Page == page
	s.Carry = false
	if carry {
		return false
	}
	s.Page = page
	s.PageState = nil
	s.Flash = nil
	return true
}

// Continue marks the next GET of the active page as a continuation.
func (s *Session) Continue() { s.Carry = true }

// LoadPage decodes the state of page into v. It reports false when page is
// not active or has no state yet.
func (s *Session) LoadPage(page string, v any) (bool, error) {
	if s.Page != page || len(s.PageState) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(s.PageState, v); err != nil {
		return false, fmt.Errorf("decode %s state: %w", page, err)
	}
	return true, nil
}

// SavePage stores v as the state of page and makes it the active page.
func (s *Session) SavePage(page string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s state: %w", page, err)
	}
	if s.Page != page {
		s.Carry = false
	}
	s.Page = page
	s.PageState = b
	return nil
}

// SetFlash stores v for the next continuation.
func (s *Session) SetFlash(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	s.Flash = b
	return nil
}

// TakeFlash decodes and removes the pending flash. It reports false when
// there is none.
func (s *Session) TakeFlash(v any) (bool, error) {
	if len(s.Flash) == 0 {
		return false, nil
	}
	raw := s.Flash
	s.Flash = nil
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode flash: %w", err)
	}
	return true, nil
}

// Store persists sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Healthy(ctx context.Context) bool
}
