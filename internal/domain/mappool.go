package domain

import (
	"errors"
	"fmt"
	"strings"
)

// PoolCategory splits a registry into the two disjoint map pools.
type PoolCategory string

const (
	// CategoryStandard maps are banned and picked by name.
	CategoryStandard PoolCategory = "Standard"
	// CategoryWildcard maps are only ever drawn at random.
	CategoryWildcard PoolCategory = "Wildcard"
)

// ParseCategory resolves user input to a pool category.
func ParseCategory(s string) (PoolCategory, bool) {
	switch {
	case strings.EqualFold(s, string(CategoryStandard)):
		return CategoryStandard, true
	case strings.EqualFold(s, string(CategoryWildcard)):
		return CategoryWildcard, true
	}
	return "", false
}

// ErrPoolNotFound is returned by pool loaders when no pool exists under
// the requested name.
var ErrPoolNotFound = errors.New("map pool not found")

// ErrPoolMalformed wraps registry validation failures: duplicate official
// names, alias collisions, or an unknown category.
var ErrPoolMalformed = errors.New("map pool malformed")

// MapEntry describes one map in a registry: its official (engine) name,
// the aliases players type in chat, and which pool it belongs to.
type MapEntry struct {
	Name     string
	Aliases  []string
	Category PoolCategory
}

// Registry is an immutable, ordered map-pool definition. Iteration order
// is the definition order, which keeps listings and autocomplete stable.
type Registry struct {
	entries []MapEntry
}

// NewRegistry validates the entries and builds a registry. Every official
// name and alias must be unique across the whole registry (compared
// case-insensitively), and every category must be Standard or Wildcard.
func NewRegistry(entries []MapEntry) (*Registry, error) {
	seen := make(map[string]string, len(entries)*2)
	claim := func(name, owner string) error {
		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q collides between %s and %s", ErrPoolMalformed, name, prev, owner)
		}
		seen[key] = owner
		return nil
	}
	for _, e := range entries {
		if e.Category != CategoryStandard && e.Category != CategoryWildcard {
			return nil, fmt.Errorf("%w: map %q has unknown category %q", ErrPoolMalformed, e.Name, e.Category)
		}
		if err := claim(e.Name, e.Name); err != nil {
			return nil, err
		}
		for _, a := range e.Aliases {
			if err := claim(a, e.Name); err != nil {
				return nil, err
			}
		}
	}
	r := &Registry{entries: make([]MapEntry, len(entries))}
	copy(r.entries, entries)
	return r, nil
}

// Resolve matches name case-insensitively against official names and
// aliases, in definition order, and returns the official name.
func (r *Registry) Resolve(name string) (string, bool) {
	for _, e := range r.entries {
		if strings.EqualFold(name, e.Name) {
			return e.Name, true
		}
		for _, a := range e.Aliases {
			if strings.EqualFold(name, a) {
				return e.Name, true
			}
		}
	}
	return "", false
}

// Category returns the pool category of an official map name.
func (r *Registry) Category(official string) (PoolCategory, bool) {
	for _, e := range r.entries {
		if e.Name == official {
			return e.Category, true
		}
	}
	return "", false
}

// InCategory returns the official names of the given category, in
// definition order.
func (r *Registry) InCategory(cat PoolCategory) []string {
	var names []string
	for _, e := range r.entries {
		if e.Category == cat {
			names = append(names, e.Name)
		}
	}
	return names
}

// Len returns the number of maps in the registry.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Clone returns an independent copy, used as a session's working set of
// remaining maps.
func (r *Registry) Clone() *Registry {
	out := &Registry{entries: make([]MapEntry, len(r.entries))}
	copy(out.entries, r.entries)
	return out
}

// Remove deletes the map with the given official name. It reports
// whether the map was present.
func (r *Registry) Remove(official string) bool {
	for i, e := range r.entries {
		if e.Name == official {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}
