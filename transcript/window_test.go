package transcript

import (
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func strPtr(s string) *string { return &s }

func messagesOn(dates ...string) []RawMessage {
	out := make([]RawMessage, 0, len(dates))
	for _, date := range dates {
		out = append(out, RawMessage{Text: strPtr("on " + date), Date: date})
	}
	return out
}

func dates(messages []RawMessage) []string {
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		out = append(out, msg.Date)
	}
	return out
}

func TestDefaultWindowIsTrailingSevenDays(t *testing.T) {
	now := time.Date(2024, time.March, 10, 23, 59, 0, 0, time.Local)
	w := DefaultWindow(now)

	be.Equal(t, w.Start.Format(DateLayout), "2024-03-03")
	be.Equal(t, w.End.Format(DateLayout), "2024-03-10")
	be.Equal(t, w.End.Sub(*w.Start), time.Duration(DefaultWindowDays)*24*time.Hour)

	w2, err := ParseWindow("", "  ", now)
	be.Err(t, err, nil)
	be.Equal(t, *w2.Start, *w.Start)
	be.Equal(t, *w2.End, *w.End)
}

func TestFilterBoundsAreInclusive(t *testing.T) {
	w, err := ParseWindow("2024-03-05", "2024-03-07", time.Now())
	be.Err(t, err, nil)

	msgs := messagesOn(
		"2024-03-04 23:59:59",
		"2024-03-05 00:00:00",
		"2024-03-06 12:00:00",
		"2024-03-07 23:59:59",
		"2024-03-08 00:00:00",
	)
	kept, err := Filter(msgs, w)
	be.Err(t, err, nil)
	be.Equal(t, dates(kept), []string{"2024-03-05 00:00:00", "2024-03-06 12:00:00", "2024-03-07 23:59:59"})

	again, err := Filter(kept, w)
	be.Err(t, err, nil)
	be.Equal(t, again, kept)
}

func TestFilterSingleBoundLeavesOtherOpen(t *testing.T) {
	msgs := messagesOn("2001-01-01", "2024-03-05", "2099-12-31")

	w, err := ParseWindow("2024-03-05", "", time.Now())
	be.Err(t, err, nil)
	be.True(t, w.End == nil)
	kept, err := Filter(msgs, w)
	be.Err(t, err, nil)
	be.Equal(t, dates(kept), []string{"2024-03-05", "2099-12-31"})

	w, err = ParseWindow("", "2024-03-05", time.Now())
	be.Err(t, err, nil)
	be.True(t, w.Start == nil)
	kept, err = Filter(msgs, w)
	be.Err(t, err, nil)
	be.Equal(t, dates(kept), []string{"2001-01-01", "2024-03-05"})
}

func TestParseWindowRejectsBadDates(t *testing.T) {
	for _, pair := range [][2]string{
		{"yesterday", ""},
		{"", "2024-13-01"},
		{"2024/03/05", ""},
		{"2024-03-08", "2024-03-05"},
	} {
		_, err := ParseWindow(pair[0], pair[1], time.Now())
		be.Err(t, err, ErrInvalidDate)
	}
}

func TestFilterFailsOnMalformedTimestamp(t *testing.T) {
	w := DateWindow{}
	for _, date := range []string{"", "2024-3-5", "March 5th 2024"} {
		_, err := Filter(messagesOn("2024-03-05 10:00:00", date), w)
		be.Err(t, err, ErrMalformedTimestamp)
	}
}

func TestMessageDayUsesLeadingDate(t *testing.T) {
	day, err := MessageDay("2024-03-05T23:30:00-08:00")
	be.Err(t, err, nil)
	be.Equal(t, day, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
}
