package index

import (
	"fmt"

	"github.com/coregx/ahocorasick"
)

// Coregx is a PatternIndex backed by github.com/coregx/ahocorasick.
type Coregx struct {
	registry
	ac *ahocorasick.Automaton
}

// NewCoregx returns an empty, open index using the coregx automaton.
func NewCoregx() *Coregx {
	return &Coregx{registry: newRegistry()}
}

// Finalize compiles the automaton from the registered phrases. An empty
// index compiles to nothing and scans to no occurrences.
func (c *Coregx) Finalize() error {
	if c.finalized {
		return c.seal()
	}
	if len(c.patterns) > 0 {
		ac, err := ahocorasick.NewBuilder().
			AddStrings(c.patterns).
			Build()
		if err != nil {
			return fmt.Errorf("build automaton: %w", err)
		}
		c.ac = ac
	}
	return c.seal()
}

// Scan reports every overlapping occurrence of every phrase.
func (c *Coregx) Scan(text string) ([]Occurrence, error) {
	if err := c.checkScan(); err != nil {
		return nil, err
	}
	if c.ac == nil || text == "" {
		return nil, nil
	}

	matches := c.ac.FindAllOverlapping([]byte(text))
	occ := make([]Occurrence, 0, len(matches))
	for _, m := range matches {
		occ = append(occ, Occurrence{End: m.End, Pattern: c.patterns[m.PatternID]})
	}
	return occ, nil
}
