/*
Package prefs holds the server-wide bounds for game options.

Each numeric option is described by a (min, default, max) triple keyed by a fixed
name. Triples are looked up on every game-options construction, deserialization and
update rather than cached, so a runtime change takes effect on the next operation.
*/
package prefs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Fixed lookup keys for the option bound triples.
const (
	KeyBlankCardsLimit = "blankCardsLimit"
	KeyScoreLimit      = "scoreLimit"
	KeyPlayerLimit     = "playerLimit"
	KeySpectatorLimit  = "spectatorLimit"
)

// MinDefaultMax is one option's configured bounds.
type MinDefaultMax struct {
	Min     int
	Default int
	Max     int
}

// Clamp forces v into the [Min, Max] range.
func (b MinDefaultMax) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Preferences stores runtime overrides for option bounds. The zero value is not
// usable; construct with New.
type Preferences struct {
	mu        sync.RWMutex
	overrides map[string]MinDefaultMax
}

// New returns an empty Preferences instance; lookups fall back to the compiled-in
// bounds until overrides are set.
func New() *Preferences {
	return &Preferences{overrides: make(map[string]MinDefaultMax)}
}

// MinDefaultMax returns the triple stored under name, or the given fallback when no
// override exists.
func (p *Preferences) MinDefaultMax(name string, min, def, max int) MinDefaultMax {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if b, ok := p.overrides[name]; ok {
		return b
	}
	return MinDefaultMax{Min: min, Default: def, Max: max}
}

// Set stores or replaces the triple under name, taking effect on the next lookup.
func (p *Preferences) Set(name string, b MinDefaultMax) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides[name] = b
}

// envKey maps an option name to its environment variable, e.g. scoreLimit ->
// PREF_SCORE_LIMIT.
func envKey(name string) string {
	var sb strings.Builder
	sb.WriteString("PREF")
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToUpper(sb.String())
}

// LoadFromEnv reads "min,default,max" overrides for the known option keys from the
// environment. Missing variables keep the compiled-in bounds; malformed ones fail.
func LoadFromEnv() (*Preferences, error) {
	p := New()

	for _, name := range []string{KeyBlankCardsLimit, KeyScoreLimit, KeyPlayerLimit, KeySpectatorLimit} {
		raw := os.Getenv(envKey(name))
		if raw == "" {
			continue
		}

		parts := strings.Split(raw, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid %s: want min,default,max, got %q", envKey(name), raw)
		}

		var vals [3]int
		for i, part := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", envKey(name), err)
			}
			vals[i] = v
		}

		if vals[0] > vals[2] || vals[1] < vals[0] || vals[1] > vals[2] {
			return nil, fmt.Errorf("invalid %s: default %d outside [%d,%d]", envKey(name), vals[1], vals[0], vals[2])
		}

		p.Set(name, MinDefaultMax{Min: vals[0], Default: vals[1], Max: vals[2]})
	}

	return p, nil
}
