package openinghours

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// parseClock converts "HH:MM" into minutes after midnight. "24:00" is accepted as the end
// of the day.
func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 || hours < 0 || hours > 24 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	total := hours*60 + minutes
	if total > minutesPerDay {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return total, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// segment is the part of a booking window that falls on one local calendar day, in
// minutes after that day's midnight. end == minutesPerDay means the window runs past midnight.
type segment struct {
	date  time.Time
	start int
	end   int
}

func (s segment) empty() bool { return s.start >= s.end }

func (s segment) key() string { return s.date.Format(time.DateOnly) }

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// splitByDay cuts [begin, end) into per-day segments in loc. Every calendar date from
// begin's date through end's date gets a segment, which can be empty on the last date.
// Starts are floored and ends are ceiled to whole minutes.
func splitByDay(begin, end time.Time, loc *time.Location) []segment {
	begin, end = begin.In(loc), end.In(loc)
	var out []segment

	for day := midnight(begin); !day.After(end); day = time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc) {
		next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)

		seg := segment{date: day, start: 0, end: minutesPerDay}
		if begin.After(day) {
			seg.start = begin.Hour()*60 + begin.Minute()
		}
		if end.Before(next) {
			seg.end = end.Hour()*60 + end.Minute()
			if end.Second() != 0 || end.Nanosecond() != 0 {
				seg.end++
			}
			if end.Equal(day) {
				seg.end = 0
			}
		}
		out = append(out, seg)
	}
	return out
}
