package student

import (
	"errors"
	"fmt"
	"strings"
)

// Today is the composite attendance label derived from isTaken and isVerified.
type Today int

const (
	NotMarked Today = iota
	MarkedPending
	MarkedVerified
)

// TodayOf derives the label for s.
func TodayOf(s Student) Today {
	switch {
	case s.IsTaken && s.IsVerified:
		return MarkedVerified
	case s.IsTaken:
		return MarkedPending
	default:
		return NotMarked
	}
}

func (t Today) Label() string {
	switch t {
	case MarkedVerified:
		return "Marked & Verified"
	case MarkedPending:
		return "Marked (Pending)"
	default:
		return "Not Marked"
	}
}

// Tone names the visual treatment: success, warning or muted.
func (t Today) Tone() string {
	switch t {
	case MarkedVerified:
		return "success"
	case MarkedPending:
		return "warning"
	default:
		return "muted"
	}
}

// Stats are the aggregate counters shown above the roster.
type Stats struct {
	Total       int
	Active      int
	Paused      int
	Deactivated int
}

// Summarize counts the roster by status.
func Summarize(list []Student) Stats {
	st := Stats{Total: len(list)}
	for _, s := range list {
		switch s.Status {
		case Active:
			st.Active++
		case Paused:
			st.Paused++
		case Deactivated:
			st.Deactivated++
		}
	}
	return st
}

// Field selects which column a roster search matches against.
type Field string

const (
	FieldSIC   Field = "sic"
	FieldEmail Field = "email"
)

// ParseField accepts "sic" or "email".
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldSIC, FieldEmail:
		return f, nil
	}
	return "", fmt.Errorf("unknown search field %q", s)
}

// Filter keeps the students whose field contains query, ignoring case.
// The result never aliases list.
func Filter(list []Student, query string, field Field) []Student {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Student, 0, len(list))
	for _, s := range list {
		var v string
		switch field {
		case FieldSIC:
			v = s.SIC
		case FieldEmail:
			v = s.Email
		default:
			continue
		}
		if strings.Contains(strings.ToLower(v), q) {
			out = append(out, s)
		}
	}
	return out
}

// FindBySlNo looks a student up by serial number.
func FindBySlNo(list []Student, slNo int64) (Student, bool) {
	for _, s := range list {
		if s.SlNo == slNo {
			return s, true
		}
	}
	return Student{}, false
}

var (
	ErrPastDate   = errors.New("pause date is in the past")
	ErrTodayTaken = errors.New("attendance already taken today")
)

// MinPauseDate is the earliest selectable pause date.
func MinPauseDate(today Date, isTaken bool) Date {
	if isTaken {
		return today.AddDays(1)
	}
	return today
}

// CheckPauseDate validates a requested pause-until date against today.
func CheckPauseDate(d, today Date, isTaken bool) error {
	if d.Before(today) {
		return ErrPastDate
	}
	if isTaken && d.Equal(today) {
		return ErrTodayTaken
	}
	return nil
}
