package domain

import "strings"

// MixedTeam is the reserved pseudo-team anyone may act for. It exists so
// ad-hoc rosters without a Discord role can still run a veto.
const MixedTeam = "Mixed Team"

// TeamIdentity maps a canonical team name (the Discord role name) to the
// aliases players type when starting a match.
type TeamIdentity struct {
	Name    string
	Aliases []string
}

// Directory resolves free-text team names and answers membership
// questions from a caller's role names.
type Directory struct {
	teams []TeamIdentity
}

// NewDirectory builds a directory over the configured teams.
func NewDirectory(teams []TeamIdentity) *Directory {
	d := &Directory{teams: make([]TeamIdentity, len(teams))}
	copy(d.teams, teams)
	return d
}

// Names returns the canonical team names in configuration order.
func (d *Directory) Names() []string {
	names := make([]string, len(d.teams))
	for i, t := range d.teams {
		names[i] = t.Name
	}
	return names
}

// Resolve matches name case-insensitively against canonical names and
// aliases. The reserved name "Mixed Team" always resolves to the Mixed
// pseudo-team.
func (d *Directory) Resolve(name string) (string, bool) {
	if strings.EqualFold(name, MixedTeam) {
		return MixedTeam, true
	}
	for _, t := range d.teams {
		if strings.EqualFold(name, t.Name) {
			return t.Name, true
		}
		for _, a := range t.Aliases {
			if strings.EqualFold(name, a) {
				return t.Name, true
			}
		}
	}
	return "", false
}

// CallerTeams returns the canonical names of every team the caller
// appears to belong to. A team matches when any of its aliases occurs
// case-insensitively inside any of the caller's role names, which copes
// with decorated role names like "[EQ] Equinox".
func (d *Directory) CallerTeams(roles []string) []string {
	var out []string
	for _, t := range d.teams {
		if d.rolesMatch(t, roles) {
			out = append(out, t.Name)
		}
	}
	return out
}

func (d *Directory) rolesMatch(t TeamIdentity, roles []string) bool {
	for _, role := range roles {
		lower := strings.ToLower(role)
		for _, a := range t.Aliases {
			if strings.Contains(lower, strings.ToLower(a)) {
				return true
			}
		}
	}
	return false
}

// Caller identifies who issued a command: their platform user ID, role
// names, and whether they hold an admin/organizer role that bypasses
// team-membership checks.
type Caller struct {
	ID    string
	Roles []string
	Admin bool
}

// TeamSlot is one side of a match. Name is the display name shown in
// announcements; Base is the canonical team used for membership checks.
// They differ only for mirror matches, where identical teams get " A"
// and " B" suffixed display names over the same base.
type TeamSlot struct {
	Name string
	Base string
}

// HasMember reports whether the caller belongs to this slot's team.
// Mixed slots accept anyone; otherwise one of the caller's role names
// must exactly equal the base canonical name.
func (t TeamSlot) HasMember(c Caller) bool {
	if t.Base == MixedTeam {
		return true
	}
	for _, role := range c.Roles {
		if role == t.Base {
			return true
		}
	}
	return false
}
