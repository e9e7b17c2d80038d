// Package timeparse converts free-text time expressions into minute-of-day
// and duration values.
//
// Every parser returns a (value, ok) pair. A token that does not parse is not
// an error: callers fall through to the next strategy or record nothing.
package timeparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MinutesPerDay is the wrap applied to ranges that cross midnight.
const MinutesPerDay = 24 * 60

// MaxMinutes caps durations read from unbounded hour counts so the
// float to int conversion cannot overflow.
const MaxMinutes = math.MaxInt32

const (
	timeToken = `(?:\d{1,2}[:.]\d{2}(?:\s*(?:am|pm))?|\d{1,2}\s*(?:am|pm)|\d{2}:\d{2}|\d{1,2})`
	rangeSep  = `(?:-|\x{2013}|\x{2014}|to)`
)

var (
	rangeRE    = regexp.MustCompile(`(?i)\b(` + timeToken + `)\s*` + rangeSep + `\s*(` + timeToken + `)\b`)
	hourMinRE  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*h(?:ours?)?\s*(\d{1,2})\s*m(?:in(?:s|utes)?)?\b`)
	hourOnlyRE = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*h(?:ours?|rs|r)?\b`)
	minOnlyRE  = regexp.MustCompile(`(?i)\b(\d{1,3})\s*m(?:in(?:s|utes)?)?\b`)
	looseHrsRE = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*hours?`)
)

// Range is a clock interval quoted in text.
type Range struct {
	Start    int // minute of day, 0..1439
	End      int // minute of day, 0..1439, not wrapped
	Duration int // minutes, wrapped past midnight when End <= Start
}

// Strategy is one way of reading a duration out of text.
type Strategy func(text string) (int, bool)

// FirstOf composes strategies, returning the first successful result.
func FirstOf(strategies ...Strategy) Strategy {
	return func(text string) (int, bool) {
		for _, s := range strategies {
			if v, ok := s(text); ok {
				return v, true
			}
		}
		return 0, false
	}
}

// NonZero drops zero results so the next strategy gets a chance.
func NonZero(s Strategy) Strategy {
	return func(text string) (int, bool) {
		v, ok := s(text)
		if !ok || v == 0 {
			return 0, false
		}
		return v, true
	}
}

// ClockMinutes parses a single clock token ("23:45", "6pm", "7.15 am", "9")
// into minute of day. Hours above 23 or minutes above 59 fail.
func ClockMinutes(tok string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(tok))
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ".", ":")

	meridiem := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	hourPart, minPart, hasMin := strings.Cut(s, ":")
	h, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, false
	}
	m := 0
	if hasMin {
		if m, err = strconv.Atoi(minPart); err != nil {
			return 0, false
		}
	}

	if meridiem != "" {
		h %= 12
		if meridiem == "pm" {
			h += 12
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ParseRange finds the first pair of clock tokens joined by a hyphen, en dash,
// em dash or "to" whose tokens both parse.
func ParseRange(text string) (Range, bool) {
	for _, m := range rangeRE.FindAllStringSubmatch(text, -1) {
		start, ok := ClockMinutes(m[1])
		if !ok {
			continue
		}
		end, ok := ClockMinutes(m[2])
		if !ok {
			continue
		}
		dur := end - start
		if dur <= 0 {
			dur += MinutesPerDay
		}
		return Range{Start: start, End: end, Duration: dur}, true
	}
	return Range{}, false
}

// RangeMinutes is ParseRange reduced to its duration.
func RangeMinutes(text string) (int, bool) {
	r, ok := ParseRange(text)
	return r.Duration, ok
}

// HourMinute reads "<h>h<m>m" forms such as "6h 45m" or "1 hour 30 mins".
func HourMinute(text string) (int, bool) {
	m := hourMinRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return h*60 + mins, true
}

// HourOnly reads "<float>h" forms such as "1.5h" or "7 hours", rounded to the minute.
func HourOnly(text string) (int, bool) {
	m := hourOnlyRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	h, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return hoursToMinutes(math.Round(h * 60)), true
}

// MinuteOnly reads "<int>m" forms such as "40m" or "35 mins".
func MinuteOnly(text string) (int, bool) {
	m := minOnlyRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// LooseHours reads a bare "<N> hours" mention, truncated to the minute.
func LooseHours(text string) (int, bool) {
	m := looseHrsRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	h, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return hoursToMinutes(math.Trunc(h * 60)), true
}

func hoursToMinutes(m float64) int {
	if m > MaxMinutes {
		return MaxMinutes
	}
	return int(m)
}

// Duration tries hour+minute, hour-only, then minute-only, in that order.
var Duration = FirstOf(HourMinute, HourOnly, MinuteOnly)

// DurationThenRange prefers an explicit duration and falls back to a range.
var DurationThenRange = FirstOf(Duration, RangeMinutes)

// FormatClock renders minute of day as HH:MM.
func FormatClock(minute int) string {
	minute = ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	h, m := minute/60, minute%60
	return pad2(h) + ":" + pad2(m)
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
