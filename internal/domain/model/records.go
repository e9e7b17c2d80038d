package model

import "time"

// EventType classifies a life event.
type EventType string

// Event types.
const (
	EventTravel       EventType = "Travel"
	EventDiagnostics  EventType = "Test/Diagnostics"
	EventIntervention EventType = "Intervention"
	EventSummary      EventType = "Summary"
	EventBiomarker    EventType = "Biomarker"
)

// Event is a life event detected in a single message.
type Event struct {
	Timestamp time.Time
	Date      string
	Type      EventType
	Title     string
	Detail    string
	Sender    string
	Role      Role
}

// Marker names a clinical lab measurement.
type Marker string

// Lab markers.
const (
	MarkerLDL              Marker = "LDL"
	MarkerHDL              Marker = "HDL"
	MarkerTriglycerides    Marker = "Triglycerides"
	MarkerTotalCholesterol Marker = "Total Cholesterol"
	MarkerApoB             Marker = "ApoB"
	MarkerHsCRP            Marker = "hs-CRP"
	MarkerSBP              Marker = "SBP"
	MarkerDBP              Marker = "DBP"
	MarkerVO2max           Marker = "VO2max"
	MarkerHRV              Marker = "HRV"
)

// LabReading is one numeric lab value quoted in a message.
type LabReading struct {
	Timestamp time.Time
	Marker    Marker
	Value     float64
}

// SleepRecord is the sleep outcome for one calendar date.
type SleepRecord struct {
	Date      string
	Timestamp time.Time // message that produced the record
	Bedtime   string    // HH:MM, empty unless a time range was quoted
	Waketime  string    // HH:MM, empty unless a time range was quoted
	Minutes   int
	Hours     float64
	Source    string
}

// ActivityRecord is the summed exercise time for one calendar date.
type ActivityRecord struct {
	Date          string
	Minutes       int
	ActivityType  string
	Source        string
	LastTimestamp time.Time
}

// Series labels for non-lab entries in the merged biomarker series.
const (
	SeriesSleepHours      = "Sleep (hrs)"
	SeriesExerciseMinutes = "Exercise (min)"
)

// BiomarkerEntry is one point of the merged biomarker time series.
type BiomarkerEntry struct {
	Timestamp time.Time
	Marker    string
	Value     float64
}

// Decision is a care decision with the evidence that preceded it.
type Decision struct {
	Timestamp    time.Time
	Date         string
	DecisionText string
	By           string
	Role         Role
	Rationale    []string
}

// EffortRecord is the estimated internal effort for one role.
type EffortRecord struct {
	Role         Role
	Interactions int
	Minutes      float64
	Hours        float64
	PctShare     float64
}
