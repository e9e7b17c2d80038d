// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// DateLayout is the calendar date format used for every date-keyed record.
const DateLayout = "2006-01-02"

// Message is one canonical conversation row handed over by ingestion.
// A zero Timestamp means the source timestamp could not be parsed.
type Message struct {
	Timestamp time.Time // instant the message was sent; zero when unknown
	SenderRaw string    // sender exactly as written, e.g. "Rohan (Member)"
	RoleHint  string    // role column from the source, may be blank
	Text      string    // message body
}

// Timed reports whether the message carries a usable timestamp.
func (m Message) Timed() bool { return !m.Timestamp.IsZero() }

// Date returns the calendar date of the message, or "" when untimed.
func (m Message) Date() string { return DateOf(m.Timestamp) }

// DateOf formats t as a calendar date in its own location.
func DateOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ClockOf formats t as HH:MM, or "" when t is zero.
func ClockOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04")
}

// Before orders two instants ascending with zero (untimed) values last.
func Before(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.Before(b)
	}
}

// SortMessages returns a copy of msgs ordered by timestamp ascending.
// Untimed messages keep their relative order at the end.
func SortMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return Before(out[i].Timestamp, out[j].Timestamp)
	})
	return out
}
