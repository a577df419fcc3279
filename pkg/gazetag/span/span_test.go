package span

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/gazetag/pkg/gazetag/index"
	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
)

func newMatcher(t *testing.T, engine index.Engine, pairs ...string) *Matcher {
	t.Helper()
	idx, err := index.New(engine)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := idx.Register(pairs[i], pairs[i+1]); err != nil {
			t.Fatalf("Register(%q): %v", pairs[i], err)
		}
	}
	if err := idx.Finalize(); err != nil {
		t.Fatal(err)
	}
	return NewMatcher(idx)
}

func TestMatchWordAligned(t *testing.T) {
	for _, engine := range []index.Engine{index.EngineTrie, index.EngineCoregx} {
		t.Run(string(engine), func(t *testing.T) {
			m := newMatcher(t, engine,
				"United States of America", "LOC",
				"States", "LOC",
				"Atlantic City", "LOC",
				"Georgia", "LOC",
			)
			tokens := strings.Fields("Jinho from United States of America lives in Atlantic City of Georgia")

			got, err := m.Match(tokens)
			if err != nil {
				t.Fatal(err)
			}
			want := []Match{
				{Pattern: "States", Start: 3, End: 4, Labels: index.LabelSet{"LOC"}},
				{Pattern: "United States of America", Start: 2, End: 6, Labels: index.LabelSet{"LOC"}},
				{Pattern: "Atlantic City", Start: 8, End: 10, Labels: index.LabelSet{"LOC"}},
				{Pattern: "Georgia", Start: 11, End: 12, Labels: index.LabelSet{"LOC"}},
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Match:\n got  %v\n want %v", got, want)
			}
		})
	}
}

func TestMatchDiscardsPartialWords(t *testing.T) {
	m := newMatcher(t, index.EngineTrie,
		"York", "LOC",
		"New York", "LOC",
		"Korea", "LOC",
	)
	tokens := []string{"Yorkshire", "and", "NewYork", "Koreans", "New", "Yorkers"}

	got, err := m.Match(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Partial-word hits should be discarded, got %v", got)
	}
}

func TestMatchSpanLengthEqualsWords(t *testing.T) {
	m := newMatcher(t, index.EngineTrie,
		"South Korea", "LOC",
		"Korea", "LOC",
		"a b c", "X",
	)
	tokens := strings.Fields("I live in South Korea a b c a b")

	got, err := m.Match(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 matches, got %v", got)
	}
	for _, match := range got {
		if match.End-match.Start != match.Words() {
			t.Errorf("%v: span length %d != word count %d", match, match.Len(), match.Words())
		}
		if match.Start < 0 || match.End > len(tokens) || match.Start >= match.End {
			t.Errorf("%v: out of range for %d tokens", match, len(tokens))
		}
		if got := strings.Join(tokens[match.Start:match.End], " "); got != match.Pattern {
			t.Errorf("%v: covers %q", match, got)
		}
	}
}

func TestMatchTokenContainingSeparator(t *testing.T) {
	m := newMatcher(t, index.EngineTrie, "New York", "LOC")

	// A single token holding a space would otherwise yield a one-token span
	// for a two-word phrase.
	got, err := m.Match([]string{"New York", "is", "big"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Misaligned span should be discarded, got %v", got)
	}
}

// Distinct normalized phrases never cover the same token range: a range
// spans a fixed word count, and a hit with a separator inside a token is
// discarded. So one range carries one phrase, with all of its labels.
func TestMatchCarriesFullLabelSet(t *testing.T) {
	idx := index.NewTrie()
	for _, p := range [][2]string{
		{"Georgia", "LOC"},
		{"Georgia", "PER"},
	} {
		if err := idx.Register(p[0], p[1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := idx.Finalize(); err != nil {
		t.Fatal(err)
	}
	m := NewMatcher(idx)

	got, err := m.Match([]string{"Georgia"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Match{{Pattern: "Georgia", Start: 0, End: 1, Labels: index.LabelSet{"LOC", "PER"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Same pattern should carry its full label set: got %v", got)
	}
}

func TestMatchEmptyInput(t *testing.T) {
	m := newMatcher(t, index.EngineTrie, "Korea", "LOC")

	got, err := m.Match(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Empty input should yield no matches, got %v", got)
	}
}

func TestMatchEmptyGazetteer(t *testing.T) {
	m := newMatcher(t, index.EngineTrie)

	got, err := m.Match([]string{"I", "live", "in", "Korea"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Empty gazetteer should yield no matches, got %v", got)
	}
}

func TestMatchUnfinalizedIndex(t *testing.T) {
	idx := index.NewTrie()
	if err := idx.Register("Korea", "LOC"); err != nil {
		t.Fatal(err)
	}

	_, err := NewMatcher(idx).Match([]string{"Korea"})
	if !errors.Is(err, internalerr.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestOffsets(t *testing.T) {
	text, starts, ends := offsets([]string{"ab", "c", "def"})
	if text != "ab c def" {
		t.Fatalf("text = %q", text)
	}
	wantStarts := []int{0, -1, -1, 1, -1, 2, -1, -1, -1}
	wantEnds := []int{-1, -1, 0, -1, 1, -1, -1, -1, 2}
	if !reflect.DeepEqual(starts, wantStarts) {
		t.Errorf("starts = %v, want %v", starts, wantStarts)
	}
	if !reflect.DeepEqual(ends, wantEnds) {
		t.Errorf("ends = %v, want %v", ends, wantEnds)
	}
}

func TestAlignRejectsOutOfRange(t *testing.T) {
	_, starts, ends := offsets([]string{"ab"})
	for _, o := range []index.Occurrence{
		{End: 1, Pattern: "ab"},
		{End: 5, Pattern: "ab"},
		{End: 1, Pattern: "a"},
	} {
		if _, err := align(o, starts, ends); !errors.Is(err, internalerr.ErrAlignment) {
			t.Errorf("align(%v): expected ErrAlignment, got %v", o, err)
		}
	}
}
