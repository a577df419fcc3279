// Package resolve reduces overlapping span matches to a disjoint set.
//
// Every overlapping pair is decided independently: the match with more
// words wins; between equal lengths, the one whose word sequence compares
// lexicographically greater wins; between two occurrences of the same
// phrase, the earlier one wins. A match that loses any contest is
// dropped, even when the match that beat it is itself dropped by a third.
package resolve

import (
	"slices"
	"sort"
	"strings"

	"github.com/cognicore/gazetag/pkg/gazetag/span"
)

// Overlaps reports whether two matches share at least one token.
func Overlaps(a, b span.Match) bool {
	return a.Start < b.End && b.Start < a.End
}

// Resolve returns the surviving matches ordered by start token. The input
// slice is not modified.
func Resolve(matches []span.Match) []span.Match {
	cands := dedupe(matches)
	if len(cands) <= 1 {
		return cands
	}

	words := make([][]string, len(cands))
	for i, m := range cands {
		words[i] = strings.Split(m.Pattern, span.Separator)
	}

	lost := make([]bool, len(cands))
	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			if !Overlaps(cands[i], cands[j]) {
				continue
			}
			if beats(cands[i], cands[j], words[i], words[j]) {
				lost[j] = true
			} else {
				lost[i] = true
			}
		}
	}

	kept := make([]span.Match, 0, len(cands))
	for i, m := range cands {
		if !lost[i] {
			kept = append(kept, m)
		}
	}

	// Survivors are pairwise disjoint, so Start alone orders them.
	sort.Slice(kept, func(a, b int) bool { return kept[a].Start < kept[b].Start })
	return kept
}

// beats reports whether a takes precedence over b.
func beats(a, b span.Match, aw, bw []string) bool {
	if len(aw) != len(bw) {
		return len(aw) > len(bw)
	}
	if c := slices.Compare(aw, bw); c != 0 {
		return c > 0
	}
	return a.Start < b.Start
}

// dedupe copies matches, dropping repeats of the same phrase at the same
// range.
func dedupe(matches []span.Match) []span.Match {
	type key struct {
		pattern    string
		start, end int
	}
	seen := make(map[key]struct{}, len(matches))
	out := make([]span.Match, 0, len(matches))
	for _, m := range matches {
		k := key{m.Pattern, m.Start, m.End}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}
