package model

import "time"

type DateFormat struct {
	WithTime     bool
	ShowTimezone bool
}

// FormatTaskDate renders ts relative to now: "Today at 3 PM",
// "Tomorrow at 3:30 PM", "Mon, Dec 25" within the current year and
// "Dec 25, 2024" otherwise.
func FormatTaskDate(ts, now time.Time, f DateFormat) string {
	ts = ts.In(now.Location())
	day := StartOfDay(ts)
	today := StartOfDay(now)

	var out string
	switch {
	case day.Equal(today):
		out = "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		out = "Tomorrow"
	case ts.Year() == now.Year():
		out = ts.Format("Mon, Jan 2")
	default:
		out = ts.Format("Jan 2, 2006")
	}
	if f.WithTime {
		if ts.Minute() == 0 {
			out += " at " + ts.Format("3 PM")
		} else {
			out += " at " + ts.Format("3:04 PM")
		}
	}
	if f.ShowTimezone {
		name, _ := ts.Zone()
		out += " " + name
	}
	return out
}

// FormatStoredDate formats a temporal value; date-only values never carry a
// clock. Unparseable values are returned verbatim.
func FormatStoredDate(v string, now time.Time, showTimezone bool) string {
	ts, dateOnly, err := ParseTimestamp(v, now.Location())
	if err != nil {
		return v
	}
	return FormatTaskDate(ts, now, DateFormat{WithTime: !dateOnly, ShowTimezone: showTimezone && !dateOnly})
}

type DatePreset struct {
	Label string
	At    time.Time
}

// DatePresets are the quick picks for due dates and reminders, all at 09:00.
func DatePresets(now time.Time) []DatePreset {
	nine := func(d time.Time) time.Time {
		y, m, dd := d.Date()
		return time.Date(y, m, dd, 9, 0, 0, 0, now.Location())
	}
	return []DatePreset{
		{Label: "Today", At: nine(now)},
		{Label: "Tomorrow", At: nine(now.AddDate(0, 0, 1))},
		{Label: "Next week", At: nine(now.AddDate(0, 0, 7))},
	}
}
