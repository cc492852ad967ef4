package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type RecurrenceKind int

const (
	RecurrencePeriod RecurrenceKind = iota + 1
	RecurrenceWeekdays
	RecurrenceCustom
)

type Period string

const (
	PeriodDaily     Period = "Daily"
	PeriodWeekly    Period = "Weekly"
	PeriodBiweekly  Period = "Bi-weekly"
	PeriodMonthly   Period = "Monthly"
	PeriodQuarterly Period = "Quarterly"
	PeriodYearly    Period = "Yearly"
)

var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodBiweekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}

func (p Period) IsValid() bool {
	for _, known := range Periods {
		if p == known {
			return true
		}
	}
	return false
}

type RecurrenceUnit string

const (
	UnitDays   RecurrenceUnit = "days"
	UnitWeeks  RecurrenceUnit = "weeks"
	UnitMonths RecurrenceUnit = "months"
	UnitYears  RecurrenceUnit = "years"
)

func (u RecurrenceUnit) IsValid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	default:
		return false
	}
}

// Weekday indexes the week starting on Monday (0) through Sunday (6).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Weekday) IsValid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.IsValid() {
		return "Weekday(" + strconv.Itoa(int(d)) + ")"
	}
	return weekdayNames[d]
}

func (d Weekday) Time() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

func WeekdayOf(ts time.Time) Weekday {
	return Weekday((int(ts.Weekday()) + 6) % 7)
}

const customPrefix = "custom:"

var (
	ErrInvalidRecurrenceKind = errors.New("model: invalid recurrence kind")
	ErrInvalidPeriod         = errors.New("model: invalid recurrence period")
	ErrInvalidInterval       = errors.New("model: invalid recurrence interval")
	ErrInvalidUnit           = errors.New("model: invalid recurrence unit")
	ErrInvalidWeekday        = errors.New("model: invalid recurrence weekday")
)

// RecurrenceRule is one of three shapes selected by Kind. Weekdays are held
// Monday-first without duplicates.
type RecurrenceRule struct {
	Kind     RecurrenceKind
	Period   Period
	Weekdays []Weekday
	Interval int
	Unit     RecurrenceUnit
}

func PeriodRule(p Period) RecurrenceRule {
	return RecurrenceRule{Kind: RecurrencePeriod, Period: p}
}

func WeekdayRule(days ...Weekday) RecurrenceRule {
	return RecurrenceRule{Kind: RecurrenceWeekdays, Weekdays: canonicalWeekdays(days)}
}

func CustomRule(interval int, unit RecurrenceUnit, days ...Weekday) RecurrenceRule {
	return RecurrenceRule{Kind: RecurrenceCustom, Interval: interval, Unit: unit, Weekdays: canonicalWeekdays(days)}
}

func (r RecurrenceRule) Validate() error {
	switch r.Kind {
	case RecurrencePeriod:
		if !r.Period.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidPeriod, r.Period)
		}
	case RecurrenceWeekdays:
		if len(r.Weekdays) == 0 {
			return errors.New("model: weekday recurrence needs at least one day")
		}
		return validateWeekdays(r.Weekdays)
	case RecurrenceCustom:
		if r.Interval < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidInterval, r.Interval)
		}
		if !r.Unit.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidUnit, r.Unit)
		}
		if len(r.Weekdays) > 0 && r.Unit != UnitWeeks {
			return errors.New("model: weekdays only apply to weekly custom recurrence")
		}
		return validateWeekdays(r.Weekdays)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidRecurrenceKind, r.Kind)
	}
	return nil
}

func validateWeekdays(days []Weekday) error {
	seen := make(map[Weekday]bool, len(days))
	for _, d := range days {
		if !d.IsValid() {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
		if seen[d] {
			return errors.New("model: duplicate weekday in recurrence")
		}
		seen[d] = true
	}
	return nil
}

type customPayload struct {
	Interval int            `json:"interval"`
	Type     RecurrenceUnit `json:"type"`
	Days     []Weekday      `json:"days,omitempty"`
}

// EncodeRecurrence produces the stored form of a rule: the period token, the
// weekday names joined by ", ", or "custom:" followed by a JSON payload.
func EncodeRecurrence(r RecurrenceRule) (string, error) {
	r.Weekdays = canonicalWeekdays(r.Weekdays)
	if err := r.Validate(); err != nil {
		return "", err
	}
	switch r.Kind {
	case RecurrencePeriod:
		return string(r.Period), nil
	case RecurrenceWeekdays:
		return strings.Join(weekdayStrings(r.Weekdays), ", "), nil
	default:
		raw, err := json.Marshal(customPayload{Interval: r.Interval, Type: r.Unit, Days: r.Weekdays})
		if err != nil {
			return "", err
		}
		return customPrefix + string(raw), nil
	}
}

// DecodeRecurrence parses a stored rule. ok is false for anything that is
// not a recognized rule, which callers treat as "does not repeat".
func DecodeRecurrence(s string) (RecurrenceRule, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RecurrenceRule{}, false
	}
	if strings.HasPrefix(s, customPrefix) {
		return decodeCustom(strings.TrimPrefix(s, customPrefix))
	}
	for _, p := range Periods {
		if strings.EqualFold(s, string(p)) {
			return PeriodRule(p), true
		}
	}
	lower := strings.ToLower(s)
	var days []Weekday
	for i, name := range weekdayNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			days = append(days, Weekday(i))
		}
	}
	if len(days) == 0 {
		return RecurrenceRule{}, false
	}
	return WeekdayRule(days...), true
}

func decodeCustom(payload string) (RecurrenceRule, bool) {
	var p customPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return RecurrenceRule{}, false
	}
	if err := validateWeekdays(p.Days); err != nil {
		return RecurrenceRule{}, false
	}
	rule := CustomRule(p.Interval, p.Type, p.Days...)
	if rule.Validate() != nil {
		return RecurrenceRule{}, false
	}
	return rule, true
}

// CanonicalRecurrence re-encodes a stored value; ok is false when it does not
// decode.
func CanonicalRecurrence(s string) (string, bool) {
	rule, ok := DecodeRecurrence(s)
	if !ok {
		return "", false
	}
	out, err := EncodeRecurrence(rule)
	if err != nil {
		return "", false
	}
	return out, true
}

// FormatRecurrence renders a rule for display, e.g. "Every 2 weeks\nTuesday & Thursday".
func FormatRecurrence(r RecurrenceRule) string {
	switch r.Kind {
	case RecurrencePeriod:
		return string(r.Period)
	case RecurrenceWeekdays:
		return JoinList(weekdayStrings(canonicalWeekdays(r.Weekdays)))
	case RecurrenceCustom:
		unit := strings.TrimSuffix(string(r.Unit), "s")
		if r.Interval != 1 {
			unit += "s"
		}
		out := fmt.Sprintf("Every %d %s", r.Interval, unit)
		if r.Unit == UnitWeeks && len(r.Weekdays) > 0 {
			out += "\n" + JoinList(weekdayStrings(canonicalWeekdays(r.Weekdays)))
		}
		return out
	default:
		return ""
	}
}

// JoinList joins with ", " and puts " & " before the last item.
func JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " & " + items[len(items)-1]
	}
}

// NextOccurrence returns the first occurrence strictly after from. The anchor
// fixes the phase of the rule and the clock time of each occurrence.
func NextOccurrence(r RecurrenceRule, anchor, from time.Time) (time.Time, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, err
	}
	if anchor.IsZero() {
		return time.Time{}, errors.New("model: recurrence anchor is required")
	}
	switch r.Kind {
	case RecurrenceWeekdays:
		return nextWeekday(r.Weekdays, anchor, from), nil
	case RecurrenceCustom:
		if r.Unit == UnitWeeks && len(r.Weekdays) > 0 {
			return nextWeeklyOnDays(r.Interval, r.Weekdays, anchor, from), nil
		}
		return nextStep(r.Unit, r.Interval, anchor, from), nil
	default:
		unit, n := periodStep(r.Period)
		return nextStep(unit, n, anchor, from), nil
	}
}

// PreviewRecurrence lists the next count occurrences after from.
func PreviewRecurrence(r RecurrenceRule, anchor, from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return []time.Time{}, nil
	}
	out := make([]time.Time, 0, count)
	cursor := from
	for i := 0; i < count; i++ {
		next, err := NextOccurrence(r, anchor, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cursor = next
	}
	return out, nil
}

func periodStep(p Period) (RecurrenceUnit, int) {
	switch p {
	case PeriodDaily:
		return UnitDays, 1
	case PeriodWeekly:
		return UnitWeeks, 1
	case PeriodBiweekly:
		return UnitWeeks, 2
	case PeriodMonthly:
		return UnitMonths, 1
	case PeriodQuarterly:
		return UnitMonths, 3
	default:
		return UnitYears, 1
	}
}

func nextStep(unit RecurrenceUnit, n int, anchor, from time.Time) time.Time {
	if from.Before(anchor) {
		return anchor
	}
	add := func(k int) time.Time {
		switch unit {
		case UnitDays:
			return anchor.AddDate(0, 0, k*n)
		case UnitWeeks:
			return anchor.AddDate(0, 0, 7*k*n)
		case UnitMonths:
			return anchor.AddDate(0, k*n, 0)
		default:
			return anchor.AddDate(k*n, 0, 0)
		}
	}
	// Jump close to from, then walk forward to absorb calendar irregularities.
	k := 0
	switch unit {
	case UnitDays:
		k = int(from.Sub(anchor).Hours()/24) / n
	case UnitWeeks:
		k = int(from.Sub(anchor).Hours()/(24*7)) / n
	case UnitMonths:
		k = monthsBetween(anchor, from) / n
	default:
		k = (from.Year() - anchor.Year()) / n
	}
	if k > 0 {
		k--
	}
	next := add(k)
	for !next.After(from) {
		k++
		next = add(k)
	}
	return next
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func nextWeekday(days []Weekday, anchor, from time.Time) time.Time {
	allowed := weekdaySet(days)
	probe := withAnchorClock(from, anchor)
	for !probe.After(from) || !allowed[WeekdayOf(probe)] {
		probe = withAnchorClock(probe.AddDate(0, 0, 1), anchor)
	}
	return probe
}

func nextWeeklyOnDays(interval int, days []Weekday, anchor, from time.Time) time.Time {
	allowed := weekdaySet(days)
	anchorWeek := StartOfDay(anchor).AddDate(0, 0, -int(WeekdayOf(anchor)))
	probe := withAnchorClock(from, anchor)
	if probe.Before(anchor) {
		probe = anchor
	}
	for {
		if probe.After(from) && !probe.Before(anchor) && allowed[WeekdayOf(probe)] {
			weeks := int(StartOfDay(probe).Sub(anchorWeek).Hours()/24+0.5) / 7
			if weeks%interval == 0 {
				return probe
			}
		}
		probe = withAnchorClock(probe.AddDate(0, 0, 1), anchor)
	}
}

func weekdaySet(days []Weekday) map[Weekday]bool {
	m := make(map[Weekday]bool, len(days))
	for _, d := range days {
		m[d] = true
	}
	return m
}

func withAnchorClock(date time.Time, anchor time.Time) time.Time {
	date = date.In(anchor.Location())
	y, m, d := date.Date()
	return time.Date(y, m, d, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
}

func canonicalWeekdays(days []Weekday) []Weekday {
	if len(days) == 0 {
		return nil
	}
	out := make([]Weekday, 0, len(days))
	seen := make(map[Weekday]bool, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func weekdayStrings(days []Weekday) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	return out
}
