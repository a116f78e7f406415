package domain

import (
	"errors"
	"testing"
)

func testEntries() []MapEntry {
	return []MapEntry{
		{Name: "nt_envoy_ctg", Aliases: []string{"Envoy"}, Category: CategoryStandard},
		{Name: "nt_oilstain_ctg", Aliases: []string{"Oilstain"}, Category: CategoryStandard},
		{Name: "nt_tetsu_ctg_b6f", Aliases: []string{"Tetsu", "Testu"}, Category: CategoryStandard},
		{Name: "nt_dawnlife_ctg_b1", Aliases: []string{"Dawnlife"}, Category: CategoryWildcard},
		{Name: "nt_turmuk_ctg_beta3", Aliases: []string{"Turmuk", "Tarmac"}, Category: CategoryWildcard},
	}
}

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(testEntries())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestResolveOfficialAndAlias(t *testing.T) {
	r := mustRegistry(t)

	cases := []struct {
		in   string
		want string
	}{
		{"nt_envoy_ctg", "nt_envoy_ctg"},
		{"NT_ENVOY_CTG", "nt_envoy_ctg"},
		{"Envoy", "nt_envoy_ctg"},
		{"envoy", "nt_envoy_ctg"},
		{"Testu", "nt_tetsu_ctg_b6f"}, // deliberate misspelling alias
		{"tarmac", "nt_turmuk_ctg_beta3"},
	}
	for _, c := range cases {
		got, ok := r.Resolve(c.in)
		if !ok || got != c.want {
			t.Fatalf("Resolve(%q) = %q, %v; want %q", c.in, got, ok, c.want)
		}
	}
	if _, ok := r.Resolve("nt_unknown"); ok {
		t.Fatalf("Resolve of unknown map should fail")
	}
}

func TestAliasResolutionMatchesOfficial(t *testing.T) {
	r := mustRegistry(t)
	for _, e := range testEntries() {
		official, _ := r.Resolve(e.Name)
		for _, a := range e.Aliases {
			viaAlias, ok := r.Resolve(a)
			if !ok || viaAlias != official {
				t.Fatalf("alias %q resolved to %q, official name to %q", a, viaAlias, official)
			}
		}
	}
}

func TestNewRegistryRejectsCollisions(t *testing.T) {
	cases := [][]MapEntry{
		// duplicate official name
		{
			{Name: "nt_envoy_ctg", Category: CategoryStandard},
			{Name: "NT_Envoy_CTG", Category: CategoryWildcard},
		},
		// alias collides with another map's official name
		{
			{Name: "nt_envoy_ctg", Category: CategoryStandard},
			{Name: "nt_rogue_ctg_b4", Aliases: []string{"nt_envoy_ctg"}, Category: CategoryStandard},
		},
		// alias collides with another map's alias
		{
			{Name: "nt_envoy_ctg", Aliases: []string{"Envoy"}, Category: CategoryStandard},
			{Name: "nt_rogue_ctg_b4", Aliases: []string{"envoy"}, Category: CategoryStandard},
		},
	}
	for i, entries := range cases {
		if _, err := NewRegistry(entries); !errors.Is(err, ErrPoolMalformed) {
			t.Fatalf("case %d: want ErrPoolMalformed, got %v", i, err)
		}
	}
}

func TestNewRegistryRejectsUnknownCategory(t *testing.T) {
	_, err := NewRegistry([]MapEntry{{Name: "nt_envoy_ctg", Category: "Casual"}})
	if !errors.Is(err, ErrPoolMalformed) {
		t.Fatalf("want ErrPoolMalformed, got %v", err)
	}
}

func TestInCategoryPreservesOrder(t *testing.T) {
	r := mustRegistry(t)
	std := r.InCategory(CategoryStandard)
	want := []string{"nt_envoy_ctg", "nt_oilstain_ctg", "nt_tetsu_ctg_b6f"}
	if len(std) != len(want) {
		t.Fatalf("standard maps = %v, want %v", std, want)
	}
	for i := range want {
		if std[i] != want[i] {
			t.Fatalf("standard maps = %v, want %v", std, want)
		}
	}
	if wc := r.InCategory(CategoryWildcard); len(wc) != 2 {
		t.Fatalf("wildcard maps = %v, want 2 entries", wc)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := mustRegistry(t)
	working := r.Clone()

	if !working.Remove("nt_envoy_ctg") {
		t.Fatalf("Remove should report presence")
	}
	if working.Remove("nt_envoy_ctg") {
		t.Fatalf("second Remove should report absence")
	}
	if _, ok := working.Resolve("Envoy"); ok {
		t.Fatalf("removed map should no longer resolve")
	}
	if working.Len() != r.Len()-1 {
		t.Fatalf("working len = %d, registry len = %d", working.Len(), r.Len())
	}
	if _, ok := r.Resolve("Envoy"); !ok {
		t.Fatalf("source registry must be unaffected by Remove on a clone")
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("standard"); !ok || c != CategoryStandard {
		t.Fatalf("ParseCategory(standard) = %v, %v", c, ok)
	}
	if c, ok := ParseCategory("WILDCARD"); !ok || c != CategoryWildcard {
		t.Fatalf("ParseCategory(WILDCARD) = %v, %v", c, ok)
	}
	if _, ok := ParseCategory("ranked"); ok {
		t.Fatalf("ParseCategory(ranked) should fail")
	}
}
