package trigger

import (
	"testing"

	"github.com/ovrlab/streambot/internal/domain"
)

func mustReplace(t *testing.T, r *Registry, triggers []domain.Trigger) {
	t.Helper()
	if err := r.Replace(triggers); err != nil {
		t.Fatalf("Replace: %v", err)
	}
}

func TestLookupLongestAliasWins(t *testing.T) {
	r := NewRegistry()
	mustReplace(t, r, []domain.Trigger{
		{Key: "so", Body: "say short"},
		{Key: "shoutout", Body: "shoutout ${1}"},
	})

	trig, alias, ok := r.Lookup("shoutout somebody")
	if !ok {
		t.Fatal("expected a match")
	}
	if trig.Key != "shoutout" || alias != "shoutout" {
		t.Errorf("matched %q via alias %q, want shoutout", trig.Key, alias)
	}
}

func TestLookupRequiresWordBoundary(t *testing.T) {
	r := NewRegistry()
	mustReplace(t, r, []domain.Trigger{
		{Key: "so", Body: "say hi"},
	})

	if _, _, ok := r.Lookup("sofa is comfy"); ok {
		t.Error("partial word must not trigger")
	}
	if _, _, ok := r.Lookup("so"); !ok {
		t.Error("exact match at end of string must trigger")
	}
	if _, _, ok := r.Lookup("so there"); !ok {
		t.Error("match followed by whitespace must trigger")
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	mustReplace(t, r, []domain.Trigger{
		{Key: "quote", Body: "quote ${1}"},
	})

	trig, _, ok := r.Lookup("QuOtE 12")
	if !ok || trig.Key != "quote" {
		t.Errorf("case-insensitive lookup failed, got ok=%v key=%q", ok, trig.Key)
	}
}

func TestLookupMatchesAliases(t *testing.T) {
	r := NewRegistry()
	mustReplace(t, r, []domain.Trigger{
		{Key: "shoutout", Aliases: []string{"so", "host"}, Body: "shoutout ${1}"},
	})

	trig, alias, ok := r.Lookup("host friend")
	if !ok || trig.Key != "shoutout" || alias != "host" {
		t.Errorf("alias lookup: ok=%v key=%q alias=%q", ok, trig.Key, alias)
	}
}

func TestReplaceRejectsDuplicateAlias(t *testing.T) {
	r := NewRegistry()
	err := r.Replace([]domain.Trigger{
		{Key: "quote", Body: "quote"},
		{Key: "wisdom", Aliases: []string{"quote"}, Body: "quote"},
	})
	if err == nil {
		t.Error("alias colliding with another trigger's key must be rejected")
	}
}

func TestReplaceDedupesSelfAlias(t *testing.T) {
	r := NewRegistry()
	mustReplace(t, r, []domain.Trigger{
		{Key: "hello", Aliases: []string{"hello", "hi"}, Body: "say hello"},
	})

	trig, alias, ok := r.Lookup("hello there")
	if !ok || trig.Key != "hello" || alias != "hello" {
		t.Errorf("self-aliased lookup: ok=%v key=%q alias=%q", ok, trig.Key, alias)
	}
	if _, _, ok := r.Lookup("hi there"); !ok {
		t.Error("remaining alias not resolvable")
	}
}

func TestReplaceSwapsWholesale(t *testing.T) {
	r := NewRegistry()
	mustReplace(t, r, []domain.Trigger{{Key: "old", Body: "say old"}})
	mustReplace(t, r, []domain.Trigger{{Key: "new", Body: "say new"}})

	if _, _, ok := r.Lookup("old"); ok {
		t.Error("replaced trigger still resolvable")
	}
	if _, _, ok := r.Lookup("new"); !ok {
		t.Error("new trigger not resolvable")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}
