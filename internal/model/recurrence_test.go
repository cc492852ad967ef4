package model

import (
	"reflect"
	"testing"
	"time"
)

func TestRecurrenceRoundTrip(t *testing.T) {
	rules := []RecurrenceRule{
		PeriodRule(PeriodDaily),
		PeriodRule(PeriodBiweekly),
		PeriodRule(PeriodQuarterly),
		WeekdayRule(Monday, Wednesday, Friday),
		WeekdayRule(Sunday),
		CustomRule(2, UnitWeeks, Tuesday, Thursday),
		CustomRule(3, UnitDays),
		CustomRule(1, UnitYears),
	}
	for _, rule := range rules {
		encoded, err := EncodeRecurrence(rule)
		if err != nil {
			t.Fatalf("encode %+v: %v", rule, err)
		}
		decoded, ok := DecodeRecurrence(encoded)
		if !ok {
			t.Fatalf("decode %q failed", encoded)
		}
		if !reflect.DeepEqual(decoded, rule) {
			t.Fatalf("round trip mismatch: %+v != %+v", decoded, rule)
		}
		again, err := EncodeRecurrence(decoded)
		if err != nil || again != encoded {
			t.Fatalf("re-encode mismatch: %q != %q (%v)", again, encoded, err)
		}
	}
}

func TestRecurrenceCustomEncodingAndFormat(t *testing.T) {
	rule := CustomRule(2, UnitWeeks, Thursday, Tuesday)
	encoded, err := EncodeRecurrence(rule)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded != `custom:{"interval":2,"type":"weeks","days":[1,3]}` {
		t.Fatalf("unexpected encoding: %s", encoded)
	}
	if got := FormatRecurrence(rule); got != "Every 2 weeks\nTuesday & Thursday" {
		t.Fatalf("unexpected format: %q", got)
	}
	if got := FormatRecurrence(CustomRule(1, UnitDays)); got != "Every 1 day" {
		t.Fatalf("unexpected singular format: %q", got)
	}
	if got := FormatRecurrence(CustomRule(1, UnitWeeks, Monday, Wednesday, Friday)); got != "Every 1 week\nMonday, Wednesday & Friday" {
		t.Fatalf("unexpected weekly format: %q", got)
	}
}

func TestRecurrenceDecodeNamedPeriodsIgnoreCase(t *testing.T) {
	rule, ok := DecodeRecurrence("bi-WEEKLY")
	if !ok || rule.Kind != RecurrencePeriod || rule.Period != PeriodBiweekly {
		t.Fatalf("unexpected decode: %+v ok=%v", rule, ok)
	}
	if got, _ := CanonicalRecurrence("monthly"); got != "Monthly" {
		t.Fatalf("expected canonical Monthly, got %q", got)
	}
}

func TestRecurrenceDecodeWeekdaySubstrings(t *testing.T) {
	rule, ok := DecodeRecurrence("friday,monday")
	if !ok || rule.Kind != RecurrenceWeekdays {
		t.Fatalf("unexpected decode: %+v ok=%v", rule, ok)
	}
	if !reflect.DeepEqual(rule.Weekdays, []Weekday{Monday, Friday}) {
		t.Fatalf("unexpected weekdays: %v", rule.Weekdays)
	}
	encoded, _ := EncodeRecurrence(rule)
	if encoded != "Monday, Friday" {
		t.Fatalf("unexpected canonical weekday set: %q", encoded)
	}
}

func TestRecurrenceDecodeRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"Fortnightly",
		"custom:",
		"custom:{not json",
		`custom:{"interval":0,"type":"days"}`,
		`custom:{"interval":2,"type":"hours"}`,
		`custom:{"interval":2,"type":"days","days":[1]}`,
		`custom:{"interval":2,"type":"weeks","days":[7]}`,
		`custom:{"interval":2,"type":"weeks","days":[1,1]}`,
		`custom:{"interval":1.5,"type":"weeks"}`,
	}
	for _, in := range inputs {
		if rule, ok := DecodeRecurrence(in); ok {
			t.Fatalf("expected %q to be rejected, got %+v", in, rule)
		}
	}
}

func TestRecurrenceEncodeValidates(t *testing.T) {
	if _, err := EncodeRecurrence(CustomRule(0, UnitDays)); err == nil {
		t.Fatal("expected interval error")
	}
	if _, err := EncodeRecurrence(PeriodRule(Period("Hourly"))); err == nil {
		t.Fatal("expected period error")
	}
	if _, err := EncodeRecurrence(WeekdayRule()); err == nil {
		t.Fatal("expected empty weekday set error")
	}
}

func TestNextOccurrencePeriods(t *testing.T) {
	anchor := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	from := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	next, err := NextOccurrence(PeriodRule(PeriodDaily), anchor, from)
	if err != nil || next.Format("2006-01-02 15:04") != "2026-02-11 09:00" {
		t.Fatalf("daily: %s %v", next, err)
	}
	next, _ = NextOccurrence(PeriodRule(PeriodBiweekly), anchor, from)
	if next.Format("2006-01-02") != "2026-02-14" {
		t.Fatalf("bi-weekly: %s", next)
	}
	next, _ = NextOccurrence(PeriodRule(PeriodYearly), anchor, from)
	if next.Format("2006-01-02") != "2027-01-31" {
		t.Fatalf("yearly: %s", next)
	}
	next, _ = NextOccurrence(PeriodRule(PeriodDaily), anchor, anchor.AddDate(0, 0, -3))
	if !next.Equal(anchor) {
		t.Fatalf("expected anchor before start, got %s", next)
	}
}

func TestNextOccurrenceWeekdays(t *testing.T) {
	anchor := time.Date(2026, 2, 9, 8, 30, 0, 0, time.UTC) // Monday
	from := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)  // Friday

	next, err := NextOccurrence(WeekdayRule(Monday, Wednesday), anchor, from)
	if err != nil {
		t.Fatalf("next weekday failed: %v", err)
	}
	if next.Weekday() != time.Monday || next.Format("2006-01-02 15:04") != "2026-02-16 08:30" {
		t.Fatalf("unexpected next weekday: %s", next.Format(time.RFC3339))
	}
}

func TestPreviewCustomWeeklyRespectsInterval(t *testing.T) {
	anchor := time.Date(2026, 2, 9, 7, 0, 0, 0, time.UTC) // Monday
	rule := CustomRule(2, UnitWeeks, Tuesday, Thursday)

	got, err := PreviewRecurrence(rule, anchor, anchor, 4)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	want := []string{"2026-02-10", "2026-02-12", "2026-02-24", "2026-02-26"}
	for i, ts := range got {
		if ts.Format("2006-01-02") != want[i] {
			t.Fatalf("occurrence %d: got %s want %s", i, ts.Format("2006-01-02"), want[i])
		}
	}
}

func TestWeekdayConversions(t *testing.T) {
	if Monday.Time() != time.Monday || Sunday.Time() != time.Sunday {
		t.Fatal("unexpected time.Weekday mapping")
	}
	sunday := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	if WeekdayOf(sunday) != Sunday {
		t.Fatalf("expected Sunday, got %s", WeekdayOf(sunday))
	}
}
