package model

import "strings"

// Role is a canonical care-team role. Values outside the closed set below
// carry free text taken from the sender's role hint.
type Role string

// Canonical roles.
const (
	RoleConcierge            Role = "Concierge"
	RoleConciergeLead        Role = "Concierge Lead"
	RolePhysician            Role = "Physician"
	RoleNutritionist         Role = "Nutritionist"
	RolePhysiotherapist      Role = "Physiotherapist"
	RolePerformanceScientist Role = "Performance Scientist"
	RoleLab                  Role = "Lab"
	RoleMember               Role = "Member"
)

var canonicalRoles = []Role{
	RoleConcierge,
	RoleConciergeLead,
	RolePhysician,
	RoleNutritionist,
	RolePhysiotherapist,
	RolePerformanceScientist,
	RoleLab,
	RoleMember,
}

// CanonicalRoles lists the closed role taxonomy in display order.
func CanonicalRoles() []Role {
	out := make([]Role, len(canonicalRoles))
	copy(out, canonicalRoles)
	return out
}

// ParseRole maps s onto a canonical role when it names one (case-insensitive),
// otherwise returns it as an Other role with surrounding space trimmed.
func ParseRole(s string) Role {
	s = strings.TrimSpace(s)
	for _, r := range canonicalRoles {
		if strings.EqualFold(s, string(r)) {
			return r
		}
	}
	return Role(s)
}

// IsOther reports whether r falls outside the canonical taxonomy.
func (r Role) IsOther() bool {
	for _, c := range canonicalRoles {
		if r == c {
			return false
		}
	}
	return true
}

// IsStaff reports whether r names a care-team member, i.e. it is neither
// Member nor blank nor "Unknown".
func (r Role) IsStaff() bool {
	s := strings.ToLower(strings.TrimSpace(string(r)))
	return s != "" && s != "member" && s != "unknown"
}

func (r Role) String() string { return string(r) }
