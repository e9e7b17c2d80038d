// Package effort estimates care-team time spent per role from message counts.
package effort

import (
	"sort"
	"strings"

	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
)

// Roles are re-inferred from senders when more than this share of rows is
// Member, or when only one role appears overall.
const memberShareThreshold = 0.6

const (
	hoursDecimals = 2
	shareDecimals = 1
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWeights sets the minutes-per-interaction table and the fallback weight.
func WithWeights(table map[string]float64, defaultWeight float64) Option {
	return func(a *Aggregator) {
		a.weights = NewWeights(table, defaultWeight)
	}
}

// Aggregator turns a message stream into per-role effort records.
type Aggregator struct {
	resolver identity.Resolver
	weights  Weights
}

// NewAggregator creates an Aggregator; without WithWeights every role
// weighs DefaultWeight.
func NewAggregator(resolver identity.Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver: resolver,
		weights:  NewWeights(nil, DefaultWeight),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithOverrides returns a copy of a whose weights are merged with overrides.
func (a *Aggregator) WithOverrides(overrides map[string]float64) *Aggregator {
	return &Aggregator{resolver: a.resolver, weights: a.weights.Merge(overrides)}
}

// Weights returns the effective weight table.
func (a *Aggregator) Weights() Weights { return a.weights }

// RawRole is the role recorded on the message itself: the role hint, else
// the sender's parenthetical role text before any "/". Blank means Member.
func RawRole(m model.Message) model.Role {
	hint := strings.TrimSpace(m.RoleHint)
	if hint == "" {
		if _, roleText, ok := identity.SplitSender(m.SenderRaw); ok {
			hint = roleText
			if i := strings.Index(hint, "/"); i >= 0 {
				hint = strings.TrimSpace(hint[:i])
			}
		}
	}
	if hint == "" {
		return model.RoleMember
	}
	return model.ParseRole(hint)
}

// Degenerate reports whether the raw roles are too uninformative to trust.
func Degenerate(roles []model.Role) bool {
	if len(roles) == 0 {
		return false
	}
	distinct := make(map[model.Role]struct{})
	members := 0
	for _, r := range roles {
		distinct[r] = struct{}{}
		if r == model.RoleMember {
			members++
		}
	}
	return float64(members)/float64(len(roles)) > memberShareThreshold || len(distinct) == 1
}

// Aggregate counts timed interactions per (date, role), weighs them and sums
// per role. Records are ordered by hours descending, then role name.
func (a *Aggregator) Aggregate(msgs []model.Message) []model.EffortRecord {
	roles := make([]model.Role, len(msgs))
	for i, m := range msgs {
		roles[i] = RawRole(m)
	}
	if Degenerate(roles) {
		for i, m := range msgs {
			roles[i] = a.resolver.InferRole(m.SenderRaw, roles[i])
		}
	}

	type key struct {
		date string
		role model.Role
	}
	counts := make(map[key]int)
	for i, m := range msgs {
		if !m.Timed() {
			continue
		}
		counts[key{m.Date(), roles[i]}]++
	}

	byRole := make(map[model.Role]*model.EffortRecord)
	for k, n := range counts {
		rec, ok := byRole[k.role]
		if !ok {
			rec = &model.EffortRecord{Role: k.role}
			byRole[k.role] = rec
		}
		rec.Interactions += n
		rec.Minutes += float64(n) * a.weights.For(k.role)
	}

	out := make([]model.EffortRecord, 0, len(byRole))
	for _, rec := range byRole {
		rec.Hours = round(rec.Minutes/60, hoursDecimals)
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Role < out[j].Role
	})
	return out
}

// Reportable reports whether a role belongs in the staff effort report.
func Reportable(rec model.EffortRecord) bool {
	return rec.Role.IsStaff() && rec.Interactions > 0
}

// Report keeps staff roles with interactions and fills in each role's share
// of the total hours.
func Report(records []model.EffortRecord) []model.EffortRecord {
	out := make([]model.EffortRecord, 0, len(records))
	total := 0.0
	for _, rec := range records {
		if !Reportable(rec) {
			continue
		}
		total += rec.Hours
		out = append(out, rec)
	}
	for i := range out {
		if total > 0 {
			out[i].PctShare = round(out[i].Hours/total*100, shareDecimals)
		} else {
			out[i].PctShare = 0
		}
	}
	return out
}
