// Package identity resolves free-text senders into display names and
// canonical care-team roles.
//
// Resolution is a fixed chain of strategies, first match wins:
//  1. honorifics (Dr./Mr./Ms./Mrs./Prof.) are dropped from the name
//  2. a parenthetical suffix in the sender overrides the role hint
//  3. exact match of the cleaned name against the known-name table
//  4. substring match of a known name inside the cleaned name
//  5. role keyword found in the role hint or the name
//  6. a surviving role hint, title-cased, is used verbatim
//  7. Member
//
// Resolution is pure; identical inputs always produce identical identities.
package identity

import (
	"regexp"
	"strings"

	"github.com/okian/carelog/internal/domain/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fallback display names.
const (
	UnknownName = "Unknown"
	LabName     = "Lab"
)

// Identity is a resolved sender.
type Identity struct {
	Name string
	Role model.Role
}

// Resolver maps raw senders to identities.
type Resolver interface {
	// Resolve returns the display name and canonical role for a sender.
	Resolve(senderRaw, roleHint string) Identity

	// InferRole re-derives a role from the raw sender text using only the
	// keyword path. A current staff role is returned unchanged.
	InferRole(senderRaw string, current model.Role) model.Role
}

type nameEntry struct {
	key  string
	role model.Role
}

type keywordEntry struct {
	key       string
	role      model.Role
	wholeWord *regexp.Regexp // non-nil when the key must match as a word
}

var (
	drDotRE      = regexp.MustCompile(`(?i)\bdr\.?\s+`)
	honorificRE  = regexp.MustCompile(`(?i)\b(?:dr|mr|ms|mrs|prof)(?:\.\s*|\s+)`)
	parentheseRE = regexp.MustCompile(`^([^(]*)\(([^)]*)\)`)
)

// Rules is the table-driven Resolver. The zero value is not usable; build
// one with NewRules.
type Rules struct {
	names    []nameEntry
	keywords []keywordEntry
}

// NewRules returns a Resolver loaded with the built-in care-team tables.
func NewRules() *Rules {
	return &Rules{
		names: []nameEntry{
			{"ruby", model.RoleConcierge},
			{"dr warren", model.RolePhysician},
			{"warren", model.RolePhysician},
			{"advik", model.RolePerformanceScientist},
			{"carla", model.RoleNutritionist},
			{"rachel", model.RolePhysiotherapist},
			{"neel", model.RoleConciergeLead},
			{"lab tech", model.RoleLab},
			{"lab", model.RoleLab},
		},
		keywords: []keywordEntry{
			{key: "concierge lead", role: model.RoleConciergeLead},
			{key: "concierge", role: model.RoleConcierge},
			{key: "orchestrator", role: model.RoleConcierge},
			{key: "ruby", role: model.RoleConcierge},
			{key: "neel", role: model.RoleConciergeLead},
			{key: "physician", role: model.RolePhysician},
			{key: "doctor", role: model.RolePhysician},
			{key: "dr.", role: model.RolePhysician},
			{key: "warren", role: model.RolePhysician},
			{key: "performance", role: model.RolePerformanceScientist},
			{key: "advik", role: model.RolePerformanceScientist},
			{key: "nutrition", role: model.RoleNutritionist},
			{key: "carla", role: model.RoleNutritionist},
			{key: "physio", role: model.RolePhysiotherapist},
			{key: "pt", role: model.RolePhysiotherapist, wholeWord: regexp.MustCompile(`\bpt\b`)},
			{key: "rachel", role: model.RolePhysiotherapist},
			{key: "lab", role: model.RoleLab},
		},
	}
}

// SplitSender separates "Name (Role)" into its name and role text.
// ok is false when the sender has no parenthetical part.
func SplitSender(senderRaw string) (name, roleText string, ok bool) {
	m := parentheseRE.FindStringSubmatch(strings.TrimSpace(senderRaw))
	if m == nil {
		return strings.TrimSpace(senderRaw), "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// Resolve implements Resolver.
func (r *Rules) Resolve(senderRaw, roleHint string) Identity {
	s := drDotRE.ReplaceAllString(strings.TrimSpace(senderRaw), "dr ")
	name := s
	roleText := strings.TrimSpace(roleHint)
	if n, rt, ok := SplitSender(s); ok {
		name, roleText = n, rt
	}

	clean := strings.TrimSpace(honorificRE.ReplaceAllString(name, ""))
	low := strings.ToLower(clean)

	for _, e := range r.names {
		if low == e.key {
			return finish(firstNonEmpty(clean, titleCase(e.key)), e.role)
		}
	}
	for _, e := range r.names {
		if low != "" && strings.Contains(low, e.key) {
			return finish(firstNonEmpty(clean, name), e.role)
		}
	}
	if role, ok := r.matchKeyword(strings.ToLower(roleText), low); ok {
		return finish(firstNonEmpty(clean, name), role)
	}
	if roleText != "" {
		return finish(firstNonEmpty(clean, name), model.ParseRole(titleCase(beforeSlash(roleText))))
	}
	return finish(firstNonEmpty(clean, name), model.RoleMember)
}

// InferRole implements Resolver.
func (r *Rules) InferRole(senderRaw string, current model.Role) model.Role {
	if current.IsStaff() {
		return current
	}
	low := strings.ToLower(senderRaw)
	if _, roleText, ok := SplitSender(senderRaw); ok {
		roleText = beforeSlash(roleText)
		if role, ok := r.matchKeyword(strings.ToLower(roleText), low); ok {
			return role
		}
		if roleText != "" {
			return model.ParseRole(titleCase(roleText))
		}
		return model.RoleMember
	}
	if role, ok := r.matchKeyword("", low); ok {
		return role
	}
	return model.RoleMember
}

func (r *Rules) matchKeyword(roleText, name string) (model.Role, bool) {
	for _, k := range r.keywords {
		if k.wholeWord != nil {
			if k.wholeWord.MatchString(roleText) || k.wholeWord.MatchString(name) {
				return k.role, true
			}
			continue
		}
		if strings.Contains(roleText, k.key) || strings.Contains(name, k.key) {
			return k.role, true
		}
	}
	return "", false
}

// finish applies the display-name fallbacks.
func finish(name string, role model.Role) Identity {
	switch strings.ToLower(name) {
	case "", "unknown", "member":
		if role == model.RoleLab {
			return Identity{Name: LabName, Role: role}
		}
		if name == "" {
			name = UnknownName
		}
	}
	return Identity{Name: name, Role: role}
}

func beforeSlash(s string) string {
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// titleCase is created per call; a cases.Caser must not be shared.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
