// Package index holds the multi-pattern search structure built from
// gazetteer phrases.
//
// An index goes through two phases. While open, phrases are registered
// with labels; a phrase registered several times accumulates every label
// it was given. Finalize compiles the search structure, after which the
// index is read-only and Scan may be called from any number of goroutines.
package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
)

// PatternIndex maps registered phrases to label sets and finds every
// occurrence of every phrase in a scanned text.
type PatternIndex interface {
	// Register adds label to the phrase's label set.
	Register(pattern, label string) error
	// Finalize compiles the index. It may be called once.
	Finalize() error
	// Finalized reports whether Finalize has completed.
	Finalized() bool
	// Scan reports all, possibly overlapping, occurrences in text.
	Scan(text string) ([]Occurrence, error)
	// Labels returns a copy of the label set of a registered phrase.
	Labels(pattern string) LabelSet
	// Len returns the number of distinct phrases.
	Len() int
}

// Occurrence is a raw, character-level hit reported by Scan.
type Occurrence struct {
	End     int    // byte offset just past the last byte of the hit
	Pattern string // normalized phrase
}

// Engine selects the PatternIndex implementation.
type Engine string

const (
	EngineTrie   Engine = "trie"   // built-in Aho-Corasick trie
	EngineCoregx Engine = "coregx" // github.com/coregx/ahocorasick
)

// ParseEngine maps a configuration value to an Engine. The empty string
// selects EngineTrie.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case "", EngineTrie:
		return EngineTrie, nil
	case EngineCoregx:
		return EngineCoregx, nil
	}
	return "", fmt.Errorf("unknown index engine %q: %w", s, internalerr.ErrInvalidConfig)
}

// New returns an empty, open index for the given engine.
func New(engine Engine) (PatternIndex, error) {
	switch engine {
	case "", EngineTrie:
		return NewTrie(), nil
	case EngineCoregx:
		return NewCoregx(), nil
	}
	return nil, fmt.Errorf("unknown index engine %q: %w", engine, internalerr.ErrInvalidConfig)
}

// Normalize returns the canonical form of a phrase: its words joined by a
// single space. Case is preserved.
func Normalize(pattern string) string {
	return strings.Join(strings.Fields(pattern), " ")
}

// LabelSet is a sorted list of distinct labels.
type LabelSet []string

// String renders the set as its labels in ascending order joined by ",".
// This is the form embedded in BILOU tags.
func (s LabelSet) String() string {
	return strings.Join(s, ",")
}

// Contains reports whether label is in the set.
func (s LabelSet) Contains(label string) bool {
	i := sort.SearchStrings(s, label)
	return i < len(s) && s[i] == label
}

// Equal reports whether both sets hold the same labels.
func (s LabelSet) Equal(other LabelSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// with returns the set with label inserted, keeping order. The receiver's
// backing array may be reused.
func (s LabelSet) with(label string) LabelSet {
	i := sort.SearchStrings(s, label)
	if i < len(s) && s[i] == label {
		return s
	}
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = label
	return s
}

// registry is the registration bookkeeping shared by every engine.
// Phrase ids are assigned in first-registration order.
type registry struct {
	patterns  []string
	ids       map[string]int
	labels    []LabelSet
	finalized bool
}

func newRegistry() registry {
	return registry{ids: make(map[string]int)}
}

func (r *registry) Register(pattern, label string) error {
	if r.finalized {
		return fmt.Errorf("register %q: %w", pattern, internalerr.ErrInvalidState)
	}
	key := Normalize(pattern)
	if key == "" {
		return fmt.Errorf("register %q: empty phrase: %w", pattern, internalerr.ErrInvalidInput)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("register %q: empty label: %w", pattern, internalerr.ErrInvalidInput)
	}

	id, ok := r.ids[key]
	if !ok {
		id = len(r.patterns)
		r.ids[key] = id
		r.patterns = append(r.patterns, key)
		r.labels = append(r.labels, nil)
	}
	r.labels[id] = r.labels[id].with(label)
	return nil
}

// seal marks the registry final; it fails if that already happened.
func (r *registry) seal() error {
	if r.finalized {
		return fmt.Errorf("finalize: %w", internalerr.ErrInvalidState)
	}
	r.finalized = true
	return nil
}

func (r *registry) Finalized() bool { return r.finalized }

func (r *registry) Len() int { return len(r.patterns) }

func (r *registry) Labels(pattern string) LabelSet {
	id, ok := r.ids[Normalize(pattern)]
	if !ok {
		return nil
	}
	out := make(LabelSet, len(r.labels[id]))
	copy(out, r.labels[id])
	return out
}

func (r *registry) checkScan() error {
	if !r.finalized {
		return fmt.Errorf("scan: index not finalized: %w", internalerr.ErrInvalidState)
	}
	return nil
}
