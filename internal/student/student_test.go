package student

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

const backendRecord = `{
	"slNo": 7,
	"sic": "22BCE1234",
	"email": "a@hostel.test",
	"addedOn": "2026-07-01T08:15:30.123456",
	"attendanceCount": 12,
	"isTaken": true,
	"status": "PAUSED",
	"pauseTill": "2026-10-20",
	"isVerified": false,
	"takenOn": null
}`

func TestDecodeBackendRecord(t *testing.T) {
	var s Student
	if err := json.Unmarshal([]byte(backendRecord), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.SlNo != 7 || s.SIC != "22BCE1234" || s.Status != Paused {
		t.Fatalf("unexpected record %+v", s)
	}
	if s.PauseTill == nil || s.PauseTill.String() != "2026-10-20" {
		t.Fatalf("expected pauseTill 2026-10-20, got %v", s.PauseTill)
	}
	if s.TakenOn != nil {
		t.Fatalf("expected nil takenOn")
	}
	if s.AddedOn.Hour() != 8 || s.AddedOn.Minute() != 15 {
		t.Fatalf("unexpected addedOn %v", s.AddedOn)
	}
}

func TestEncodeWritesExplicitNulls(t *testing.T) {
	s := Student{SIC: "X1", Email: "x@hostel.test", Status: Active, AddedOn: DateTime{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"pauseTill":null`) {
		t.Fatalf("expected explicit null pauseTill, got %s", out)
	}
	if !strings.Contains(out, `"takenOn":null`) {
		t.Fatalf("expected explicit null takenOn, got %s", out)
	}
	if !strings.Contains(out, `"addedOn":"2026-01-02T03:04:05"`) {
		t.Fatalf("expected local datetime addedOn, got %s", out)
	}
}

func TestParseDateTimeLayouts(t *testing.T) {
	for _, in := range []string{"2026-10-14T09:30:00", "2026-10-14T09:30:00.5", "2026-10-14T09:30", "2026-10-14T09:30:00Z"} {
		d, err := ParseDateTime(in)
		if err != nil {
			t.Fatalf("parse %s: %v", in, err)
		}
		if d.Hour() != 9 || d.Minute() != 30 {
			t.Fatalf("parse %s: got %v", in, d)
		}
	}
	if _, err := ParseDateTime("yesterday"); err == nil {
		t.Fatalf("expected error for bad datetime")
	}
}

func TestDateTimeKeepsOffset(t *testing.T) {
	for _, in := range []string{"2026-10-14T09:30:00Z", "2026-10-14T09:30:00+05:30", "2026-10-14T09:30:00"} {
		var d DateTime
		if err := json.Unmarshal([]byte(`"`+in+`"`), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		out, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("marshal %s: %v", in, err)
		}
		if string(out) != `"`+in+`"` {
			t.Fatalf("round trip of %s gave %s", in, out)
		}
	}
}

func TestWithStatusClearsPause(t *testing.T) {
	pause := NewDate(2026, 11, 1)
	base := Student{Status: Paused, PauseTill: &pause}

	for _, st := range []Status{Active, Deactivated} {
		got := base.WithStatus(st)
		if got.PauseTill != nil {
			t.Fatalf("status %s: expected pauseTill cleared", st)
		}
	}
	if got := base.WithStatus(Paused); got.PauseTill == nil {
		t.Fatalf("expected pauseTill kept for PAUSED")
	}
	if base.PauseTill == nil {
		t.Fatalf("WithStatus must not mutate the receiver's copy source")
	}
}

func TestParseStatus(t *testing.T) {
	if st, err := ParseStatus("paused"); err != nil || st != Paused {
		t.Fatalf("expected PAUSED, got %s err=%v", st, err)
	}
	if _, err := ParseStatus("SUSPENDED"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestFormatting(t *testing.T) {
	d := NewDate(2026, 3, 5)
	if got := FormatDate(&d, "-"); got != "5/3/2026" {
		t.Fatalf("unexpected short date %s", got)
	}
	if got := FormatDate(nil, "Not Set"); got != "Not Set" {
		t.Fatalf("expected fallback, got %s", got)
	}
	stamp := DateTime{Time: time.Date(2026, 3, 5, 14, 7, 0, 0, time.UTC)}
	if got := FormatStamp(&stamp); got != "5 Mar 2026, 02:07 pm" {
		t.Fatalf("unexpected stamp %s", got)
	}
	if got := FormatStamp(nil); got != "Never" {
		t.Fatalf("expected Never, got %s", got)
	}
	if got := FormatDay(stamp); got != "5 Mar 2026" {
		t.Fatalf("unexpected day %s", got)
	}
}
