// Package pipeline wires the extractors into one pass over a message stream.
//
// A run is a fixed table of independent stages followed by Finalize, which
// fuses stage outputs. Stages read the same immutable message slice and each
// writes only its own Result field, so they may execute concurrently.
package pipeline

import (
	"time"

	"github.com/okian/carelog/internal/domain/biomarker"
	"github.com/okian/carelog/internal/domain/classify"
	"github.com/okian/carelog/internal/domain/decision"
	"github.com/okian/carelog/internal/domain/effort"
	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
)

// Stage names.
const (
	StageEvents    = "events"
	StageLabs      = "labs"
	StageSleep     = "sleep"
	StageActivity  = "activity"
	StageDecisions = "decisions"
	StageEffort    = "effort"
)

// Result holds every output table of one run.
type Result struct {
	Events       []model.Event
	Labs         []model.LabReading
	Sleep        []model.SleepRecord
	Activity     []model.ActivityRecord
	Biomarkers   []model.BiomarkerEntry
	Decisions    []model.Decision
	Effort       []model.EffortRecord
	EffortReport []model.EffortRecord
	Summary      Summary
}

// Summary holds headline figures for a run.
type Summary struct {
	Messages    int `json:"messages"`
	Untimed     int `json:"untimed"`
	JourneyDays int `json:"journey_days"`
	Decisions   int `json:"decisions"`
	LabMarkers  int `json:"lab_markers"`
	Events      int `json:"events"`
}

// Stage is one independent extractor over the message stream.
type Stage struct {
	Name string
	Run  func(msgs []model.Message, out *Result)
}

// Pipeline is safe for concurrent use; per-run state lives in Result.
type Pipeline struct {
	resolver   identity.Resolver
	classifier *classify.Classifier
	decisions  *decision.Extractor
	effort     *effort.Aggregator
}

// Option configures a Pipeline.
type Option func(*config)

type config struct {
	weights       map[string]float64
	defaultWeight float64
	window        time.Duration
	maxRationale  int
}

// WithWeights sets the effort weight table and its fallback.
func WithWeights(table map[string]float64, defaultWeight float64) Option {
	return func(c *config) {
		c.weights = table
		c.defaultWeight = defaultWeight
	}
}

// WithRationaleWindow sets how far back decision rationale is searched.
func WithRationaleWindow(d time.Duration) Option {
	return func(c *config) { c.window = d }
}

// WithMaxRationale caps rationale snippets per decision.
func WithMaxRationale(n int) Option {
	return func(c *config) { c.maxRationale = n }
}

// New builds a pipeline around resolver.
func New(resolver identity.Resolver, opts ...Option) *Pipeline {
	c := config{
		defaultWeight: effort.DefaultWeight,
		window:        decision.DefaultWindow,
		maxRationale:  decision.DefaultMaxRationale,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &Pipeline{
		resolver:   resolver,
		classifier: classify.New(resolver),
		decisions: decision.New(resolver,
			decision.WithWindow(c.window),
			decision.WithMaxRationale(c.maxRationale),
		),
		effort: effort.NewAggregator(resolver, effort.WithWeights(c.weights, c.defaultWeight)),
	}
}

// Resolver returns the identity resolver shared by all stages.
func (p *Pipeline) Resolver() identity.Resolver { return p.resolver }

// Weights returns the configured effort weights merged with overrides.
func (p *Pipeline) Weights(overrides map[string]float64) effort.Weights {
	return p.effort.Weights().Merge(overrides)
}

// Stages returns the stage table for one run. overrides are merged over the
// configured effort weights for this run only.
func (p *Pipeline) Stages(overrides map[string]float64) []Stage {
	agg := p.effort
	if len(overrides) > 0 {
		agg = p.effort.WithOverrides(overrides)
	}
	return []Stage{
		{StageEvents, func(msgs []model.Message, out *Result) {
			out.Events = p.classifier.Classify(msgs)
		}},
		{StageLabs, func(msgs []model.Message, out *Result) {
			out.Labs = biomarker.ExtractLabs(msgs)
		}},
		{StageSleep, func(msgs []model.Message, out *Result) {
			out.Sleep = biomarker.ExtractSleep(msgs, p.resolver)
		}},
		{StageActivity, func(msgs []model.Message, out *Result) {
			out.Activity = biomarker.ExtractActivity(msgs, p.resolver)
		}},
		{StageDecisions, func(msgs []model.Message, out *Result) {
			out.Decisions = p.decisions.Extract(msgs)
		}},
		{StageEffort, func(msgs []model.Message, out *Result) {
			out.Effort = agg.Aggregate(msgs)
		}},
	}
}

// Run executes every stage sequentially and finalizes the result.
func (p *Pipeline) Run(msgs []model.Message, overrides map[string]float64) Result {
	var res Result
	for _, s := range p.Stages(overrides) {
		s.Run(msgs, &res)
	}
	Finalize(msgs, &res)
	return res
}

// Finalize fuses stage outputs: the merged biomarker series, the effort
// report and the summary. Nil tables become empty ones.
func Finalize(msgs []model.Message, res *Result) {
	if res.Events == nil {
		res.Events = []model.Event{}
	}
	if res.Labs == nil {
		res.Labs = []model.LabReading{}
	}
	if res.Sleep == nil {
		res.Sleep = []model.SleepRecord{}
	}
	if res.Activity == nil {
		res.Activity = []model.ActivityRecord{}
	}
	if res.Decisions == nil {
		res.Decisions = []model.Decision{}
	}
	if res.Effort == nil {
		res.Effort = []model.EffortRecord{}
	}
	res.Biomarkers = biomarker.Merge(res.Labs, res.Sleep, res.Activity)
	res.EffortReport = effort.Report(res.Effort)
	res.Summary = Summarize(msgs, res)
}

// Summarize computes the headline figures of a finalized result.
func Summarize(msgs []model.Message, res *Result) Summary {
	s := Summary{
		Messages:  len(msgs),
		Decisions: len(res.Decisions),
		Events:    len(res.Events),
	}
	var first, last time.Time
	for _, m := range msgs {
		if !m.Timed() {
			s.Untimed++
			continue
		}
		if first.IsZero() || m.Timestamp.Before(first) {
			first = m.Timestamp
		}
		if last.IsZero() || m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}
	if !first.IsZero() {
		s.JourneyDays = int(last.Sub(first).Hours()/24) + 1
	}
	markers := make(map[model.Marker]struct{})
	for _, l := range res.Labs {
		markers[l.Marker] = struct{}{}
	}
	s.LabMarkers = len(markers)
	return s
}
