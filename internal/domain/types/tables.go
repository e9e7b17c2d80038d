package types

import (
	"github.com/okian/carelog/internal/domain/model"
	"github.com/okian/carelog/internal/domain/pipeline"
)

// Table names accepted by the API and the exporter.
const (
	TableEvents     = "events"
	TableLabs       = "labs"
	TableSleep      = "sleep"
	TableActivity   = "activity"
	TableBiomarkers = "biomarkers"
	TableDecisions  = "decisions"
	TableEffort     = "effort"
)

// TableNames lists every table in export order.
func TableNames() []string {
	return []string{
		TableEvents, TableLabs, TableSleep, TableActivity,
		TableBiomarkers, TableDecisions, TableEffort,
	}
}

// Tables is every output table of a run as flat rows.
type Tables struct {
	Events       []EventRow       `json:"events"`
	Labs         []LabRow         `json:"labs"`
	Sleep        []SleepRow       `json:"sleep"`
	Activity     []ActivityRow    `json:"activity"`
	Biomarkers   []BiomarkerRow   `json:"biomarkers"`
	Decisions    []DecisionRow    `json:"decisions"`
	Effort       []EffortRow      `json:"effort"`
	EffortReport []EffortRow      `json:"effort_report"`
	Summary      pipeline.Summary `json:"summary"`
}

// FromResult flattens a finalized pipeline result.
func FromResult(res pipeline.Result) Tables {
	return Tables{
		Events:       Events(res.Events),
		Labs:         Labs(res.Labs),
		Sleep:        Sleep(res.Sleep),
		Activity:     Activity(res.Activity),
		Biomarkers:   Biomarkers(res.Biomarkers),
		Decisions:    Decisions(res.Decisions),
		Effort:       Effort(res.Effort),
		EffortReport: Effort(res.EffortReport),
		Summary:      res.Summary,
	}
}

// SnapshotMessage is a message of the snapshot day.
type SnapshotMessage struct {
	Time   string `json:"time"`
	Sender string `json:"sender"`
	Role   string `json:"role"`
	Text   string `json:"text"`
}

// SnapshotPivot is the last value per marker on one date.
type SnapshotPivot struct {
	Date   string             `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Snapshot is the day view.
type Snapshot struct {
	Date       string            `json:"date"`
	Messages   []SnapshotMessage `json:"messages"`
	Biomarkers []SnapshotPivot   `json:"biomarkers"`
	Sleep      *SleepRow         `json:"sleep"`
	Activity   *ActivityRow      `json:"activity"`
}

// FromSnapshot flattens a day snapshot.
func FromSnapshot(s pipeline.DaySnapshot) Snapshot {
	out := Snapshot{
		Date:       s.Date,
		Messages:   make([]SnapshotMessage, 0, len(s.Messages)),
		Biomarkers: make([]SnapshotPivot, 0, len(s.Biomarkers)),
	}
	for _, m := range s.Messages {
		out.Messages = append(out.Messages, SnapshotMessage{
			Time:   m.Time,
			Sender: m.Sender,
			Role:   string(m.Role),
			Text:   m.Text,
		})
	}
	for _, p := range s.Biomarkers {
		out.Biomarkers = append(out.Biomarkers, SnapshotPivot{Date: p.Date, Values: p.Values})
	}
	if s.Sleep != nil {
		row := Sleep([]model.SleepRecord{*s.Sleep})[0]
		out.Sleep = &row
	}
	if s.Activity != nil {
		row := Activity([]model.ActivityRecord{*s.Activity})[0]
		out.Activity = &row
	}
	return out
}
