package location

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Alias maps any area string containing Key to the Canonical token
type Alias struct {
	Key       string `json:"key"`
	Canonical string `json:"canonical"`
}

// Normalizer canonicalizes free-text area strings using an ordered alias list.
// The first alias whose key is contained in the input wins.
type Normalizer struct {
	aliases []Alias
}

// DefaultAliases returns the built-in alias table in match order
func DefaultAliases() []Alias {
	return []Alias{
		{Key: "aurngabad", Canonical: "aurangabad"},
		{Key: "orangabad", Canonical: "aurangabad"},
		{Key: "abad", Canonical: "aurangabad"},
		{Key: "sambhajinagar", Canonical: "aurangabad"},
		{Key: "cidco", Canonical: "cidco"},
		{Key: "n1", Canonical: "cidco"},
		{Key: "n2", Canonical: "cidco"},
		{Key: "n3", Canonical: "cidco"},
		{Key: "n4", Canonical: "cidco"},
		{Key: "hudco", Canonical: "hudco"},
		{Key: "tv center", Canonical: "hudco"},
		{Key: "beed bypass", Canonical: "beed bypass"},
		{Key: "waluj", Canonical: "waluj"},
		{Key: "pandharpur", Canonical: "waluj"},
		{Key: "chikalthana", Canonical: "chikalthana"},
		{Key: "garkheda", Canonical: "garkheda"},
	}
}

// New creates a normalizer over the given aliases. Keys and canonical values
// are lower-cased and trimmed; entries with an empty key are dropped.
func New(aliases []Alias) *Normalizer {
	cleaned := make([]Alias, 0, len(aliases))
	for _, a := range aliases {
		key := clean(a.Key)
		if key == "" {
			continue
		}
		cleaned = append(cleaned, Alias{Key: key, Canonical: clean(a.Canonical)})
	}
	return &Normalizer{aliases: cleaned}
}

// NewDefault creates a normalizer with the built-in alias table
func NewDefault() *Normalizer {
	return New(DefaultAliases())
}

// Aliases returns a copy of the configured alias list
func (n *Normalizer) Aliases() []Alias {
	out := make([]Alias, len(n.aliases))
	copy(out, n.aliases)
	return out
}

// Normalize lower-cases and trims raw, then maps it to the canonical token of
// the first alias whose key it contains. Unmatched input is returned cleaned.
func (n *Normalizer) Normalize(raw string) string {
	lower := clean(raw)
	if lower == "" {
		return ""
	}
	for _, a := range n.aliases {
		if strings.Contains(lower, a.Key) {
			return a.Canonical
		}
	}
	return lower
}

// Matches reports whether either normalized area contains the other.
// An empty query matches every area.
func (n *Normalizer) Matches(area, query string) bool {
	na := n.Normalize(area)
	nq := n.Normalize(query)
	return strings.Contains(na, nq) || strings.Contains(nq, na)
}

// Validate checks that every canonical token normalizes to itself, which keeps
// Normalize idempotent.
func (n *Normalizer) Validate() error {
	for _, a := range n.aliases {
		if a.Canonical == "" {
			return fmt.Errorf("alias %q has an empty canonical value", a.Key)
		}
		if got := n.Normalize(a.Canonical); got != a.Canonical {
			return fmt.Errorf("canonical %q normalizes to %q", a.Canonical, got)
		}
	}
	return nil
}

// LoadAliases reads an alias list from a JSON file containing
// [{"key": "...", "canonical": "..."}]
func LoadAliases(path string) ([]Alias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var aliases []Alias
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}

	return aliases, nil
}

// FromFile builds a normalizer from the defaults plus the aliases in path.
// With replace set, the file's aliases are used on their own.
func FromFile(path string, replace bool) (*Normalizer, error) {
	extra, err := LoadAliases(path)
	if err != nil {
		return nil, err
	}

	aliases := extra
	if !replace {
		aliases = append(DefaultAliases(), extra...)
	}

	n := New(aliases)
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("invalid alias rules: %w", err)
	}
	return n, nil
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
