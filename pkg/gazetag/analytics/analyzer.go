package analytics

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/cognicore/gazetag/pkg/gazetag/bilou"
)

// Analyzer aggregates sentence-level tagging stats. Safe for concurrent use.
type Analyzer struct {
	mu           sync.Mutex
	sentences    int64
	tokens       int64
	taggedTokens int64
	labelSpans   map[string]int64
	labelDF      map[string]int64            // sentences containing the label
	patternCount map[string]map[string]int64 // pattern -> label -> spans
	pairCounts   map[pair]int64              // labels co-occurring in a sentence
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		labelSpans:   make(map[string]int64),
		labelDF:      make(map[string]int64),
		patternCount: make(map[string]map[string]int64),
		pairCounts:   make(map[pair]int64),
	}
}

// Process consumes one tagged sentence: its tokens and the spans decoded
// from its tags.
func (a *Analyzer) Process(tokens []string, chunks []bilou.Chunk) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sentences++
	a.tokens += int64(len(tokens))

	seen := make(map[string]struct{})
	for _, c := range chunks {
		if c.Start < 0 || c.End > len(tokens) || c.Start >= c.End {
			continue
		}
		a.taggedTokens += int64(c.End - c.Start)
		a.labelSpans[c.Label]++

		pattern := strings.Join(tokens[c.Start:c.End], " ")
		if a.patternCount[pattern] == nil {
			a.patternCount[pattern] = make(map[string]int64)
		}
		a.patternCount[pattern][c.Label]++

		seen[c.Label] = struct{}{}
	}

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
		a.labelDF[l]++
	}
	sort.Strings(labels)
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			a.pairCounts[newPair(labels[i], labels[j])]++
		}
	}
}

// Stats exposes the aggregated counts.
type Stats struct {
	Sentences    int64
	Tokens       int64
	TaggedTokens int64
	LabelSpans   map[string]int64
	LabelDF      map[string]int64
	PatternCount map[string]map[string]int64
	PairCounts   map[pair]int64
}

// Snapshot returns a copy of the accumulated statistics.
func (a *Analyzer) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	copyPatterns := make(map[string]map[string]int64, len(a.patternCount))
	for p, labels := range a.patternCount {
		copyPatterns[p] = copyCounts(labels)
	}
	copyPairs := make(map[pair]int64, len(a.pairCounts))
	for p, count := range a.pairCounts {
		copyPairs[p] = count
	}
	return Stats{
		Sentences:    a.sentences,
		Tokens:       a.tokens,
		TaggedTokens: a.taggedTokens,
		LabelSpans:   copyCounts(a.labelSpans),
		LabelDF:      copyCounts(a.labelDF),
		PatternCount: copyPatterns,
		PairCounts:   copyPairs,
	}
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Coverage is the fraction of tokens inside a gazetteer span.
func (s Stats) Coverage() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return float64(s.TaggedTokens) / float64(s.Tokens)
}

// LabelStat summarizes one label.
type LabelStat struct {
	Label     string `json:"label"`
	Spans     int64  `json:"spans"`
	Sentences int64  `json:"sentences"`
}

// Labels returns per-label counts, most frequent first.
func (s Stats) Labels() []LabelStat {
	out := make([]LabelStat, 0, len(s.LabelSpans))
	for l, n := range s.LabelSpans {
		out = append(out, LabelStat{Label: l, Spans: n, Sentences: s.LabelDF[l]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spans != out[j].Spans {
			return out[i].Spans > out[j].Spans
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// PatternStat describes how often a matched phrase was tagged.
type PatternStat struct {
	Pattern string   `json:"pattern"`
	Count   int64    `json:"count"`
	Labels  []string `json:"labels"`
	// Ambiguity is the normalized entropy of the pattern's label
	// distribution; 0 when it always carries the same label.
	Ambiguity float64 `json:"ambiguity"`
}

// TopPatterns returns the most frequently tagged phrases. limit <= 0
// returns all of them.
func (s Stats) TopPatterns(limit int) []PatternStat {
	out := make([]PatternStat, 0, len(s.PatternCount))
	for p, labels := range s.PatternCount {
		st := PatternStat{Pattern: p, Ambiguity: entropy(labels)}
		for l, n := range labels {
			st.Count += n
			st.Labels = append(st.Labels, l)
		}
		sort.Strings(st.Labels)
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pattern < out[j].Pattern
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PairStat describes two labels seen in the same sentence.
type PairStat struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	Support int64   `json:"support"`
	PMI     float64 `json:"pmi"`
}

// LabelPairs returns co-occurring label pairs with at least minSupport
// sentences, highest PMI first.
func (s Stats) LabelPairs(minSupport int64) []PairStat {
	var out []PairStat
	for p, count := range s.PairCounts {
		if count < minSupport {
			continue
		}
		out = append(out, PairStat{
			A:       p.A,
			B:       p.B,
			Support: count,
			PMI:     computePMI(count, s.LabelDF[p.A], s.LabelDF[p.B], s.Sentences),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PMI != out[j].PMI {
			return out[i].PMI > out[j].PMI
		}
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

func computePMI(pairCount, dfA, dfB, total int64) float64 {
	if pairCount == 0 || dfA == 0 || dfB == 0 || total == 0 {
		return 0
	}
	pAB := float64(pairCount) / float64(total)
	pA := float64(dfA) / float64(total)
	pB := float64(dfB) / float64(total)
	return math.Log(pAB / (pA * pB))
}

func entropy(counts map[string]int64) float64 {
	if len(counts) < 2 {
		return 0
	}
	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h / math.Log2(float64(len(counts)))
}

type pair struct {
	A string
	B string
}

func newPair(a, b string) pair {
	if a > b {
		a, b = b, a
	}
	return pair{A: a, B: b}
}
