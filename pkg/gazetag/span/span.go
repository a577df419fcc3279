// Package span turns raw index occurrences into token-aligned matches.
package span

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/gazetag/pkg/gazetag/index"
	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
)

// Separator joins tokens into the scan text.
const Separator = " "

// Match is a phrase occurrence covering tokens [Start, End).
type Match struct {
	Pattern string
	Start   int // first token, inclusive
	End     int // last token, exclusive
	Labels  index.LabelSet
}

// Words returns the number of words in the matched phrase.
func (m Match) Words() int {
	if m.Pattern == "" {
		return 0
	}
	return strings.Count(m.Pattern, Separator) + 1
}

// Len returns the number of tokens the match covers.
func (m Match) Len() int { return m.End - m.Start }

func (m Match) String() string {
	return fmt.Sprintf("%q[%d:%d]{%s}", m.Pattern, m.Start, m.End, m.Labels)
}

// Matcher finds gazetteer phrases in token sequences. It holds no
// per-sentence state and is safe for concurrent use once its index is
// finalized.
type Matcher struct {
	idx index.PatternIndex
}

// NewMatcher wraps a PatternIndex. The index must be finalized before
// Match is called.
func NewMatcher(idx index.PatternIndex) *Matcher {
	return &Matcher{idx: idx}
}

// Match reports every phrase occurrence whose boundaries coincide with
// token boundaries, ordered by end then start token.
func (m *Matcher) Match(tokens []string) ([]Match, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	text, starts, ends := offsets(tokens)
	occ, err := m.idx.Scan(text)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	matches := make([]Match, 0, len(occ))
	for _, o := range occ {
		match, err := align(o, starts, ends)
		if err != nil {
			// Partial-word hits are routine.
			continue
		}
		match.Labels = m.idx.Labels(o.Pattern)
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].End != matches[j].End {
			return matches[i].End < matches[j].End
		}
		return matches[i].Start < matches[j].Start
	})
	return matches, nil
}

// offsets joins tokens with Separator and maps byte offsets to token
// indices. starts[off] is the token beginning at off; ends[off] the token
// ending just before off. Unmapped offsets hold -1.
func offsets(tokens []string) (string, []int, []int) {
	var b strings.Builder
	size := len(tokens) - 1
	for _, tok := range tokens {
		size += len(tok)
	}
	b.Grow(size)

	starts := make([]int, size+1)
	ends := make([]int, size+1)
	for i := range starts {
		starts[i] = -1
		ends[i] = -1
	}

	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(Separator)
		}
		starts[b.Len()] = i
		b.WriteString(tok)
		ends[b.Len()] = i
	}
	return b.String(), starts, ends
}

// align converts a raw occurrence into a token match.
func align(o index.Occurrence, starts, ends []int) (Match, error) {
	startOff := o.End - len(o.Pattern)
	if startOff < 0 || o.End > len(ends)-1 {
		return Match{}, internalerr.ErrAlignment
	}
	first, last := starts[startOff], ends[o.End]
	if first < 0 || last < 0 || last < first {
		return Match{}, internalerr.ErrAlignment
	}

	m := Match{Pattern: o.Pattern, Start: first, End: last + 1}
	if m.Len() != m.Words() {
		// A token containing the separator.
		return Match{}, internalerr.ErrAlignment
	}
	return m, nil
}
