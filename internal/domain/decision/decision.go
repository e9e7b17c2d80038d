// Package decision finds care decisions and the evidence quoted shortly
// before them.
package decision

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
)

// Defaults for the rationale search.
const (
	DefaultWindow       = 72 * time.Hour
	DefaultMaxRationale = 6
)

var (
	decisionWords = []string{
		"start", "add", "begin", "initiate", "reduce", "increase", "switch", "replace",
		"schedule", "book", "recheck", "test", "panel", "scan", "session", "hiit",
		"supplement", "vitamin", "omega-3", "d3", "plan", "target", "goal", "adjust", "prescribe",
	}
	rationaleWords = []string{
		"because", "so that", "to ", "due to", "shows", "panel", "result", "scan",
		"ldl", "crp", "hrv", "bp", "sleep", "jet lag", "travel",
	}
)

// Extractor is safe for concurrent use.
type Extractor struct {
	resolver identity.Resolver
	window   time.Duration
	max      int
}

// New returns an Extractor with the default window and snippet limit.
func New(resolver identity.Resolver, opts ...Option) *Extractor {
	e := &Extractor{
		resolver: resolver,
		window:   DefaultWindow,
		max:      DefaultMaxRationale,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsDecision reports whether lowercase text carries a decision keyword.
func IsDecision(low string) bool {
	return containsAny(low, decisionWords)
}

// IsRationale reports whether lowercase text carries supporting evidence.
func IsRationale(low string) bool {
	return containsAny(low, rationaleWords)
}

// Extract returns one decision per timed decision message, in timestamp
// order. Rationale snippets come from timed messages within
// [timestamp-window, timestamp], oldest first.
func (e *Extractor) Extract(msgs []model.Message) []model.Decision {
	sorted := model.SortMessages(msgs)
	timed := sorted[:countTimed(sorted)]

	var out []model.Decision
	for _, m := range timed {
		if !IsDecision(strings.ToLower(m.Text)) {
			continue
		}
		who := e.resolver.Resolve(m.SenderRaw, m.RoleHint)
		out = append(out, model.Decision{
			Timestamp:    m.Timestamp,
			Date:         m.Date(),
			DecisionText: m.Text,
			By:           who.Name,
			Role:         who.Role,
			Rationale:    e.rationale(timed, m.Timestamp),
		})
	}
	return out
}

func (e *Extractor) rationale(timed []model.Message, at time.Time) []string {
	from := at.Add(-e.window)
	i := sort.Search(len(timed), func(i int) bool {
		return !timed[i].Timestamp.Before(from)
	})

	snippets := []string{}
	for ; i < len(timed) && !timed[i].Timestamp.After(at); i++ {
		if len(snippets) >= e.max {
			break
		}
		c := timed[i]
		if !IsRationale(strings.ToLower(c.Text)) {
			continue
		}
		who := e.resolver.Resolve(c.SenderRaw, c.RoleHint)
		snippets = append(snippets, model.ClockOf(c.Timestamp)+" "+who.Name+": "+c.Text)
	}
	return snippets
}

// countTimed relies on untimed messages sorting last.
func countTimed(sorted []model.Message) int {
	for i, m := range sorted {
		if !m.Timed() {
			return i
		}
	}
	return len(sorted)
}

func containsAny(low string, words []string) bool {
	for _, w := range words {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}
