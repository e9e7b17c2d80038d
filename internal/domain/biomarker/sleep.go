package biomarker

import (
	"math"
	"strings"

	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
	"github.com/okian/carelog/internal/domain/timeparse"
)

// Sleep duration bounds in minutes.
const (
	MinSleepMinutes = 180
	MaxSleepMinutes = 960
)

var sleepWords = []string{
	"sleep", "slept", "asleep", "tst", "garmin", "advik", "bedtime", "woke up", "wake up",
}

// SleepReading is the sleep information quoted in one message.
type SleepReading struct {
	Bedtime  string
	Waketime string
	Minutes  int
}

// MentionsSleep reports whether lowercase text carries a sleep keyword.
func MentionsSleep(low string) bool {
	return containsAny(low, sleepWords)
}

// ParseSleep resolves a sleep reading from lowercase text: a time range
// first (which also yields bed and wake times), then a non-zero duration,
// then a loose "N hours" mention. Minutes are clamped to the sleep bounds.
func ParseSleep(low string) (SleepReading, bool) {
	var r SleepReading
	if rng, ok := timeparse.ParseRange(low); ok {
		r.Bedtime = timeparse.FormatClock(rng.Start)
		r.Waketime = timeparse.FormatClock(rng.End)
		r.Minutes = rng.Duration
	} else if d, ok := timeparse.NonZero(timeparse.Duration)(low); ok {
		r.Minutes = d
	} else if d, ok := timeparse.LooseHours(low); ok {
		r.Minutes = d
	} else {
		return SleepReading{}, false
	}
	r.Minutes = ClampSleep(r.Minutes)
	return r, true
}

// ClampSleep bounds minutes to [MinSleepMinutes, MaxSleepMinutes].
func ClampSleep(minutes int) int {
	if minutes < MinSleepMinutes {
		return MinSleepMinutes
	}
	if minutes > MaxSleepMinutes {
		return MaxSleepMinutes
	}
	return minutes
}

// ExtractSleep yields one record per calendar date; the chronologically
// last sleep message of a date wins. Untimed messages are dropped.
func ExtractSleep(msgs []model.Message, resolver identity.Resolver) []model.SleepRecord {
	var (
		out   []model.SleepRecord
		index = make(map[string]int)
	)
	for _, m := range model.SortMessages(msgs) {
		if !m.Timed() {
			continue
		}
		low := strings.ToLower(m.Text)
		if !MentionsSleep(low) {
			continue
		}
		r, ok := ParseSleep(low)
		if !ok {
			continue
		}
		rec := model.SleepRecord{
			Date:      m.Date(),
			Timestamp: m.Timestamp,
			Bedtime:   r.Bedtime,
			Waketime:  r.Waketime,
			Minutes:   r.Minutes,
			Hours:     Round(float64(r.Minutes)/60, 2),
			Source:    resolver.Resolve(m.SenderRaw, m.RoleHint).Name,
		}
		if i, seen := index[rec.Date]; seen {
			out[i] = rec
			continue
		}
		index[rec.Date] = len(out)
		out = append(out, rec)
	}
	return out
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
