package transcript

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date form accepted for window bounds and
// read from the front of every message date.
const DateLayout = "2006-01-02"

// DefaultWindowDays is the trailing window used when no bounds are given.
const DefaultWindowDays = 7

// DateWindow is an inclusive range of calendar days. A nil bound is open.
//
// Days are represented as midnight UTC of the calendar date so that
// comparisons never depend on a time zone.
type DateWindow struct {
	Start *time.Time
	End   *time.Time
}

// DefaultWindow returns [today-7 days, today] where today is now's calendar
// date in now's location. Both ends are inclusive, so the window spans eight
// calendar days: the seven days before today plus today itself.
func DefaultWindow(now time.Time) DateWindow {
	today := calendarDay(now)
	start := today.AddDate(0, 0, -DefaultWindowDays)
	return DateWindow{Start: &start, End: &today}
}

// ParseWindow builds a window from optional ISO date strings. The default
// window applies only when both are empty.
func ParseWindow(start string, end string, now time.Time) (DateWindow, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" {
		return DefaultWindow(now), nil
	}

	var w DateWindow
	if start != "" {
		day, err := parseDay(start)
		if err != nil {
			return DateWindow{}, fmt.Errorf("%w: start_date %q: expected YYYY-MM-DD", ErrInvalidDate, start)
		}
		w.Start = &day
	}
	if end != "" {
		day, err := parseDay(end)
		if err != nil {
			return DateWindow{}, fmt.Errorf("%w: end_date %q: expected YYYY-MM-DD", ErrInvalidDate, end)
		}
		w.End = &day
	}
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return DateWindow{}, fmt.Errorf("%w: start_date %s is after end_date %s", ErrInvalidDate, start, end)
	}
	return w, nil
}

// Contains reports whether day falls within the window, bounds included.
func (w DateWindow) Contains(day time.Time) bool {
	day = calendarDay(day)
	if w.Start != nil && day.Before(*w.Start) {
		return false
	}
	if w.End != nil && day.After(*w.End) {
		return false
	}
	return true
}

// Filter returns the messages whose calendar day lies in w, in their original
// order. A message with an unparseable date fails the whole call.
func Filter(messages []RawMessage, w DateWindow) ([]RawMessage, error) {
	kept := make([]RawMessage, 0, len(messages))
	for i, msg := range messages {
		day, err := MessageDay(msg.Date)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		if w.Contains(day) {
			kept = append(kept, msg)
		}
	}
	return kept, nil
}

// MessageDay parses the leading YYYY-MM-DD of a provider timestamp.
func MessageDay(date string) (time.Time, error) {
	if len(date) < len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, date)
	}
	day, err := parseDay(date[:len(DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, date)
	}
	return day, nil
}

func parseDay(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
