package student

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status governs whether automatic attendance marking applies to a student.
type Status string

const (
	Active      Status = "ACTIVE"
	Paused      Status = "PAUSED"
	Deactivated Status = "DEACTIVATED"
)

// Statuses lists every status in display order.
var Statuses = []Status{Active, Paused, Deactivated}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case Active, Paused, Deactivated:
		return true
	}
	return false
}

// Class is the lowercase badge class used by the pages.
func (s Status) Class() string { return strings.ToLower(string(s)) }

// Student mirrors the record owned by the attendance backend.
type Student struct {
	SlNo            int64     `json:"slNo"`
	SIC             string    `json:"sic"`
	Email           string    `json:"email"`
	AttendanceCount int       `json:"attendanceCount"`
	Status          Status    `json:"status"`
	IsTaken         bool      `json:"isTaken"`
	IsVerified      bool      `json:"isVerified"`
	PauseTill       *Date     `json:"pauseTill"`
	TakenOn         *DateTime `json:"takenOn"`
	AddedOn         DateTime  `json:"addedOn"`
}

// EnforcePauseInvariant clears PauseTill unless the student is paused.
func (s *Student) EnforcePauseInvariant() {
	if s.Status != Paused {
		s.PauseTill = nil
	}
}

// WithStatus returns a copy of s moved to status, with the pause invariant applied.
func (s Student) WithStatus(status Status) Student {
	s.Status = status
	s.EnforcePauseInvariant()
	return s
}

const dateLayout = "2006-01-02"

// Date is a calendar day without time or zone, encoded as YYYY-MM-DD.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) String() string { return d.t.Format(dateLayout) }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays moves the date by n days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateTime is a local timestamp as produced by the backend. Zone-less input
// stays zone-less on the way back; input with an offset keeps its offset.
type DateTime struct {
	time.Time
	zoned bool
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// ParseDateTime accepts ISO local datetimes with or without fraction or offset.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{Time: t, zoned: layout == time.RFC3339Nano}, nil
		}
	}
	return DateTime{}, fmt.Errorf("parse datetime %q: unsupported layout", s)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	if d.zoned {
		return json.Marshal(d.Format(time.RFC3339Nano))
	}
	return json.Marshal(d.Format(dateTimeLayouts[0]))
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = DateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = DateTime{}
		return nil
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
