// Package types contains the flat row shapes served over HTTP and exported
// to files.
package types

import (
	"time"

	"github.com/okian/carelog/internal/domain/model"
)

// EventRow is a life event.
type EventRow struct {
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	Sender    string `json:"sender"`
	Role      string `json:"role"`
}

// LabRow is a lab reading.
type LabRow struct {
	Timestamp string  `json:"timestamp"`
	Date      string  `json:"date"`
	Marker    string  `json:"marker"`
	Value     float64 `json:"value"`
}

// SleepRow is the sleep record of one date.
type SleepRow struct {
	Date         string  `json:"date"`
	Timestamp    string  `json:"timestamp"`
	Bedtime      string  `json:"bedtime"`
	Waketime     string  `json:"waketime"`
	SleepMinutes int     `json:"sleep_minutes"`
	SleepHours   float64 `json:"sleep_hours"`
	Source       string  `json:"source"`
}

// ActivityRow is the activity record of one date.
type ActivityRow struct {
	Date            string `json:"date"`
	Timestamp       string `json:"timestamp"`
	ActivityMinutes int    `json:"activity_minutes"`
	ActivityType    string `json:"activity_type"`
	Source          string `json:"source"`
}

// BiomarkerRow is one point of the merged series.
type BiomarkerRow struct {
	Timestamp string  `json:"timestamp"`
	Date      string  `json:"date"`
	Marker    string  `json:"marker"`
	Value     float64 `json:"value"`
}

// DecisionRow is a decision with its rationale.
type DecisionRow struct {
	Timestamp         string   `json:"timestamp"`
	Date              string   `json:"date"`
	DecisionText      string   `json:"decision_text"`
	By                string   `json:"by"`
	Role              string   `json:"role"`
	RationaleSnippets []string `json:"rationale_snippets"`
}

// EffortRow is the effort estimate of one role.
type EffortRow struct {
	Role         string  `json:"role"`
	Interactions int     `json:"interactions"`
	EstMinutes   float64 `json:"est_minutes"`
	EstHours     float64 `json:"est_hours"`
	PctShare     float64 `json:"pct_share"`
}

// FormatTime renders t as RFC3339, or "" when t is zero.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Events converts events to rows.
func Events(in []model.Event) []EventRow {
	out := make([]EventRow, 0, len(in))
	for _, e := range in {
		out = append(out, EventRow{
			Timestamp: FormatTime(e.Timestamp),
			Date:      e.Date,
			Type:      string(e.Type),
			Title:     e.Title,
			Detail:    e.Detail,
			Sender:    e.Sender,
			Role:      string(e.Role),
		})
	}
	return out
}

// Labs converts lab readings to rows.
func Labs(in []model.LabReading) []LabRow {
	out := make([]LabRow, 0, len(in))
	for _, l := range in {
		out = append(out, LabRow{
			Timestamp: FormatTime(l.Timestamp),
			Date:      model.DateOf(l.Timestamp),
			Marker:    string(l.Marker),
			Value:     l.Value,
		})
	}
	return out
}

// Sleep converts sleep records to rows.
func Sleep(in []model.SleepRecord) []SleepRow {
	out := make([]SleepRow, 0, len(in))
	for _, s := range in {
		out = append(out, SleepRow{
			Date:         s.Date,
			Timestamp:    FormatTime(s.Timestamp),
			Bedtime:      s.Bedtime,
			Waketime:     s.Waketime,
			SleepMinutes: s.Minutes,
			SleepHours:   s.Hours,
			Source:       s.Source,
		})
	}
	return out
}

// Activity converts activity records to rows.
func Activity(in []model.ActivityRecord) []ActivityRow {
	out := make([]ActivityRow, 0, len(in))
	for _, a := range in {
		out = append(out, ActivityRow{
			Date:            a.Date,
			Timestamp:       FormatTime(a.LastTimestamp),
			ActivityMinutes: a.Minutes,
			ActivityType:    a.ActivityType,
			Source:          a.Source,
		})
	}
	return out
}

// Biomarkers converts the merged series to rows.
func Biomarkers(in []model.BiomarkerEntry) []BiomarkerRow {
	out := make([]BiomarkerRow, 0, len(in))
	for _, b := range in {
		out = append(out, BiomarkerRow{
			Timestamp: FormatTime(b.Timestamp),
			Date:      model.DateOf(b.Timestamp),
			Marker:    b.Marker,
			Value:     b.Value,
		})
	}
	return out
}

// Decisions converts decisions to rows.
func Decisions(in []model.Decision) []DecisionRow {
	out := make([]DecisionRow, 0, len(in))
	for _, d := range in {
		snippets := d.Rationale
		if snippets == nil {
			snippets = []string{}
		}
		out = append(out, DecisionRow{
			Timestamp:         FormatTime(d.Timestamp),
			Date:              d.Date,
			DecisionText:      d.DecisionText,
			By:                d.By,
			Role:              string(d.Role),
			RationaleSnippets: snippets,
		})
	}
	return out
}

// Effort converts effort records to rows.
func Effort(in []model.EffortRecord) []EffortRow {
	out := make([]EffortRow, 0, len(in))
	for _, e := range in {
		out = append(out, EffortRow{
			Role:         string(e.Role),
			Interactions: e.Interactions,
			EstMinutes:   e.Minutes,
			EstHours:     e.Hours,
			PctShare:     e.PctShare,
		})
	}
	return out
}
