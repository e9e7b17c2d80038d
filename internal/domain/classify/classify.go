// Package classify detects life events in conversation messages.
//
// Each rule is an independent predicate over one message; a message yields
// one event per matching rule.
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/okian/carelog/internal/domain/biomarker"
	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
	"github.com/okian/carelog/internal/domain/timeparse"
)

// Event titles.
const (
	TitleTravel       = "Travel / Trip"
	TitleDiagnostics  = "Diagnostics / Scheduling"
	TitleIntervention = "Plan / Coaching Update"
	TitleSummary      = "Weekly Summary"
	TitleSleep        = "Sleep Tracking"
	TitleExercise     = "Exercise Tracking"
)

// HomeBase suppresses travel detection when mentioned.
const HomeBase = "singapore"

var (
	cities = []string{
		"london", "new york", "nyc", "jakarta", "seoul", "paris", "dubai", "tokyo",
		"delhi", "mumbai", "bangkok", "hong kong", "sydney", "los angeles", "chicago",
		"san francisco", "toronto", "berlin", "rome", "madrid", "zurich", "amsterdam", "bali",
	}
	diagnosticWords = []string{
		"book", "schedule", "panel", "test", "scan", "ecg", "cimt", "blood draw", "mri", "ct", "ultrasound",
	}
	interventionWords = []string{
		"diet", "meal plan", "hiit", "supplement", "omega-3", "vitamin", "workout", "strength",
		"cardio", "mobility", "plan", "routine", "session",
	}
	sleepEventWords = []string{"sleep", "tst", "garmin", "advik"}

	summaryPhrases = []string{"weekly summary", "week summary", "weekly progress summary"}
	weeklyRE       = regexp.MustCompile(`\bweekly\b`)
	weeklyTopicRE  = regexp.MustCompile(`\b(?:update|report|progress|summary|check)\b`)
	summaryWeekRE  = regexp.MustCompile(`summary.{0,50}week|week.{0,50}summary`)
	weekRE         = regexp.MustCompile(`\bweek(?:'s)?\b`)
	weekTopicRE    = regexp.MustCompile(`\b(?:summary|update|report)\b`)
	weeklyNotes    = []string{"summary", "update", "report", "progress", "check", "notes"}
)

// rule turns a lowercase message into an event detail when it matches.
type rule struct {
	typ   model.EventType
	title string
	match func(text, low string) (detail string, ok bool)
}

// Classifier is safe for concurrent use once built.
type Classifier struct {
	resolver identity.Resolver
	rules    []rule
}

// New builds a classifier resolving senders with resolver.
func New(resolver identity.Resolver) *Classifier {
	return &Classifier{
		resolver: resolver,
		rules: []rule{
			{model.EventTravel, TitleTravel, raw(IsTravel)},
			{model.EventDiagnostics, TitleDiagnostics, raw(func(low string) bool { return containsAny(low, diagnosticWords) })},
			{model.EventIntervention, TitleIntervention, raw(func(low string) bool { return containsAny(low, interventionWords) })},
			{model.EventSummary, TitleSummary, raw(IsSummary)},
			{model.EventBiomarker, TitleSleep, sleepDetail},
			{model.EventBiomarker, TitleExercise, exerciseDetail},
		},
	}
}

// Classify returns all events in msgs ordered by timestamp, untimed last.
func (c *Classifier) Classify(msgs []model.Message) []model.Event {
	var out []model.Event
	for _, m := range msgs {
		out = append(out, c.ClassifyMessage(m)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return model.Before(out[i].Timestamp, out[j].Timestamp)
	})
	return out
}

// ClassifyMessage returns the events of a single message in rule order.
func (c *Classifier) ClassifyMessage(m model.Message) []model.Event {
	low := strings.ToLower(m.Text)
	var (
		out []model.Event
		who identity.Identity
	)
	for _, r := range c.rules {
		detail, ok := r.match(m.Text, low)
		if !ok {
			continue
		}
		if who.Name == "" {
			who = c.resolver.Resolve(m.SenderRaw, m.RoleHint)
		}
		out = append(out, model.Event{
			Timestamp: m.Timestamp,
			Date:      m.Date(),
			Type:      r.typ,
			Title:     r.title,
			Detail:    detail,
			Sender:    who.Name,
			Role:      who.Role,
		})
	}
	return out
}

// IsTravel reports a trip mention outside the home base.
func IsTravel(low string) bool {
	if strings.Contains(low, HomeBase) {
		return false
	}
	return strings.Contains(low, "travel") || containsAny(low, cities)
}

// IsSummary recognizes the weekly summary phrasing family.
func IsSummary(low string) bool {
	switch {
	case low == "":
		return false
	case containsAny(low, summaryPhrases):
		return true
	case weeklyRE.MatchString(low) && weeklyTopicRE.MatchString(low):
		return true
	case summaryWeekRE.MatchString(low):
		return true
	case weekRE.MatchString(low) && weekTopicRE.MatchString(low):
		return true
	case strings.Contains(low, "weekly") && containsAny(low, weeklyNotes):
		return true
	}
	return false
}

// SleepEventMinutes resolves a sleep duration for event tracking, floored at
// the minimum sleep duration.
func SleepEventMinutes(low string) (int, bool) {
	minutes, ok := timeparse.DurationThenRange(low)
	if !ok {
		return 0, false
	}
	if minutes < biomarker.MinSleepMinutes {
		minutes = biomarker.MinSleepMinutes
	}
	return minutes, true
}

func sleepDetail(text, low string) (string, bool) {
	if !containsAny(low, sleepEventWords) {
		return "", false
	}
	minutes, ok := SleepEventMinutes(low)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Sleep log (normalized): %d min | raw: %s", minutes, text), true
}

func exerciseDetail(text, low string) (string, bool) {
	if !biomarker.MentionsExercise(low) {
		return "", false
	}
	minutes, ok := biomarker.ExerciseMinutes(low)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Exercise log (normalized): %d min | raw: %s", minutes, text), true
}

// raw adapts a predicate into a rule whose detail is the message text.
func raw(pred func(low string) bool) func(text, low string) (string, bool) {
	return func(text, low string) (string, bool) {
		if !pred(low) {
			return "", false
		}
		return text, true
	}
}

func containsAny(low string, words []string) bool {
	for _, w := range words {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}
