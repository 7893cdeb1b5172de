// Package trigger holds the registered chat commands and the gating applied
// before one is allowed to run.
package trigger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/util"
)

type aliasEntry struct {
	name  string
	key   string
	order int
}

// Registry resolves message prefixes to triggers. The trigger set is replaced
// wholesale whenever the backing store changes; lookups never observe a
// partially updated snapshot.
type Registry struct {
	mu       sync.RWMutex
	triggers map[string]domain.Trigger
	aliases  []aliasEntry
}

func NewRegistry() *Registry {
	return &Registry{
		triggers: make(map[string]domain.Trigger),
	}
}

// Replace swaps in a new trigger snapshot. Every key and alias must map to
// exactly one trigger.
func (r *Registry) Replace(triggers []domain.Trigger) error {
	byKey := make(map[string]domain.Trigger, len(triggers))
	entries := make([]aliasEntry, 0, len(triggers))
	seen := make(map[string]string)

	order := 0
	for _, t := range triggers {
		key := util.Normalize(t.Key)
		if key == "" {
			return fmt.Errorf("trigger with empty key")
		}
		if _, dup := byKey[key]; dup {
			return fmt.Errorf("duplicate trigger key %q", key)
		}
		byKey[key] = t

		for _, name := range t.Names() {
			name = util.Normalize(name)
			if name == "" {
				continue
			}
			if owner, dup := seen[name]; dup {
				// An alias repeating its own trigger's key is harmless.
				if owner == key {
					continue
				}
				return fmt.Errorf("alias %q maps to both %q and %q", name, owner, key)
			}
			seen[name] = key
			entries = append(entries, aliasEntry{name: name, key: key, order: order})
			order++
		}
	}

	// Longest alias wins; ties break by registration order.
	sort.SliceStable(entries, func(i, j int) bool {
		if len(entries[i].name) != len(entries[j].name) {
			return len(entries[i].name) > len(entries[j].name)
		}
		return entries[i].order < entries[j].order
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = byKey
	r.aliases = entries
	return nil
}

// Lookup matches the start of a message (without the command sigil) against
// the registered aliases. A match must be followed by whitespace or end of
// string; partial words never trigger.
func (r *Registry) Lookup(message string) (domain.Trigger, string, bool) {
	lower := strings.ToLower(message)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.aliases {
		if !strings.HasPrefix(lower, e.name) {
			continue
		}
		if len(lower) > len(e.name) && lower[len(e.name)] != ' ' && lower[len(e.name)] != '\t' {
			continue
		}
		return r.triggers[e.key], e.name, true
	}
	return domain.Trigger{}, "", false
}

// Len returns the number of registered triggers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.triggers)
}
