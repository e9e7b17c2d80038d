package biomarker

import (
	"strings"

	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
	"github.com/okian/carelog/internal/domain/timeparse"
)

// A single exercise duration above MaxExerciseMinutes is replaced by
// OverflowExerciseMinutes. It is a substitution, not a cap.
const (
	MaxExerciseMinutes      = 180
	OverflowExerciseMinutes = 45
)

// DefaultActivityType is used when no specific activity keyword matches.
const DefaultActivityType = "exercise"

var exerciseWords = []string{
	"workout", "exercise", "training", "session", "gym", "run", "jog", "walk",
	"steps", "cycle", "cycling", "ride", "swim", "swimming", "row", "rowing",
	"elliptical", "treadmill", "yoga", "pilates", "hiit", "strength", "weights",
	"lifting", "hike", "tennis", "badminton", "football", "cricket",
}

// activityTypes is ordered by priority; the first hit names the activity.
var activityTypes = []string{
	"hiit", "run", "jog", "walk", "cycle", "ride", "swim", "row", "elliptical",
	"treadmill", "yoga", "pilates", "strength", "weights", "gym", "hike",
	"tennis", "badminton", "football", "cricket",
}

var exerciseDuration = timeparse.FirstOf(
	timeparse.NonZero(timeparse.Duration),
	timeparse.NonZero(timeparse.RangeMinutes),
)

// MentionsExercise reports whether lowercase text names any exercise keyword.
func MentionsExercise(low string) bool {
	return containsAny(low, exerciseWords)
}

// ExerciseMinutes resolves the exercise duration quoted in lowercase text,
// duration first then range, applying the overflow substitution.
func ExerciseMinutes(low string) (int, bool) {
	minutes, ok := exerciseDuration(low)
	if !ok {
		return 0, false
	}
	if minutes > MaxExerciseMinutes {
		minutes = OverflowExerciseMinutes
	}
	return minutes, true
}

// ActivityType picks the activity label for lowercase text.
func ActivityType(low string) string {
	for _, k := range activityTypes {
		if strings.Contains(low, k) {
			return k
		}
	}
	return DefaultActivityType
}

// ExtractActivity sums exercise minutes per calendar date. Type and source
// are taken from the chronologically last contributing message.
func ExtractActivity(msgs []model.Message, resolver identity.Resolver) []model.ActivityRecord {
	var (
		out   []model.ActivityRecord
		index = make(map[string]int)
	)
	for _, m := range model.SortMessages(msgs) {
		if !m.Timed() {
			continue
		}
		low := strings.ToLower(m.Text)
		if !MentionsExercise(low) {
			continue
		}
		minutes, ok := ExerciseMinutes(low)
		if !ok || minutes <= 0 {
			continue
		}
		source := resolver.Resolve(m.SenderRaw, m.RoleHint).Name
		date := m.Date()
		i, seen := index[date]
		if !seen {
			index[date] = len(out)
			out = append(out, model.ActivityRecord{Date: date})
			i = len(out) - 1
		}
		rec := &out[i]
		rec.Minutes += minutes
		rec.ActivityType = ActivityType(low)
		rec.Source = source
		rec.LastTimestamp = m.Timestamp
	}
	return out
}

func containsAny(low string, words []string) bool {
	for _, w := range words {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}
