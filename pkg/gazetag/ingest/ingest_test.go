package ingest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/gazetag/pkg/gazetag"
	"github.com/cognicore/gazetag/pkg/gazetag/bilou"
	"github.com/cognicore/gazetag/pkg/gazetag/gazetteer"
	"github.com/cognicore/gazetag/pkg/gazetag/index"
)

func TestTokenizerWhitespace(t *testing.T) {
	tokenizer := NewTokenizer(false)

	got := tokenizer.Tokenize("  Jinho  is\tfrom\nSouth Korea. ")
	want := []string{"Jinho", "is", "from", "South", "Korea."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %q, want %q", got, want)
	}
}

func TestTokenizerSplitPunct(t *testing.T) {
	tokenizer := NewTokenizer(true)

	tests := []struct {
		text string
		want []string
	}{
		{"Georgia, U.S.", []string{"Georgia", ",", "U.S", "."}},
		{"(Emory University)", []string{"(", "Emory", "University", ")"}},
		{"Jean-Luc said \"hi\"!", []string{"Jean-Luc", "said", "\"", "hi", "\"", "!"}},
		{"...", []string{".", ".", "."}},
		{"Bakı.", []string{"Bakı", "."}},
	}
	for _, tt := range tests {
		got := tokenizer.Tokenize(tt.text)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTokenizerNoEmptyTokens(t *testing.T) {
	for _, split := range []bool{false, true} {
		for _, tok := range NewTokenizer(split).Tokenize(" , ; a  ,b, ") {
			if tok == "" || strings.ContainsAny(tok, " \t\n") {
				t.Errorf("split=%v: bad token %q", split, tok)
			}
		}
	}
	if got := NewTokenizer(true).Tokenize("   "); len(got) != 0 {
		t.Errorf("Blank text should give no tokens, got %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("first line\n\n  second  \r\n\n")
	want := []string{"first line", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines = %q, want %q", got, want)
	}
}

func TestHTMLText(t *testing.T) {
	doc := `<html><head><title>News</title><style>p { color: red }</style>
<script>var x = "Georgia";</script></head>
<body><p>Jinho is from <b>South Korea</b>.</p><div>He studies at Emory University.</div></body></html>`

	text, err := HTMLText(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "color") || strings.Contains(text, "var x") {
		t.Errorf("Script/style content leaked: %q", text)
	}

	lines := SplitLines(text)
	want := []string{"News", "Jinho is from South Korea.", "He studies at Emory University."}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines = %q, want %q", lines, want)
	}
}

func newTestPipeline(t *testing.T, splitPunct bool) *Pipeline {
	t.Helper()
	idx, err := gazetteer.Build(index.EngineTrie, []gazetteer.Pair{
		{Pattern: "South Korea", Label: "LOC"},
		{Pattern: "Korea", Label: "LOC"},
		{Pattern: "Emory University", Label: "ORG"},
		{Pattern: "Jinho", Label: "PER"},
	})
	if err != nil {
		t.Fatal(err)
	}
	tagger, err := gazetag.New(gazetag.Options{Index: idx})
	if err != nil {
		t.Fatal(err)
	}
	return NewPipeline(NewTokenizer(splitPunct), tagger)
}

func TestPipelineProcess(t *testing.T) {
	p := newTestPipeline(t, true)

	s, err := p.Process("Jinho is from South Korea.")
	if err != nil {
		t.Fatal(err)
	}
	wantTags := []string{"U-PER", "O", "O", "B-LOC", "L-LOC", "O"}
	if !reflect.DeepEqual(s.Tags, wantTags) {
		t.Errorf("Tags = %q, want %q", s.Tags, wantTags)
	}
	if len(s.Tokens) != len(s.Tags) {
		t.Errorf("Tokens/Tags length mismatch: %d vs %d", len(s.Tokens), len(s.Tags))
	}
	wantChunks := []bilou.Chunk{
		{Label: "PER", Start: 0, End: 1},
		{Label: "LOC", Start: 3, End: 5},
	}
	if !reflect.DeepEqual(s.Chunks, wantChunks) {
		t.Errorf("Chunks = %+v, want %+v", s.Chunks, wantChunks)
	}
}

func TestPipelineWithoutSplitPunct(t *testing.T) {
	p := newTestPipeline(t, false)

	// "Korea." is not a gazetteer token; only "South" remains and it is
	// not a phrase on its own.
	s, err := p.Process("Jinho is from South Korea.")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"U-PER", "O", "O", "O", "O"}
	if !reflect.DeepEqual(s.Tags, want) {
		t.Errorf("Tags = %q, want %q", s.Tags, want)
	}
}

func TestPipelineProcessLines(t *testing.T) {
	p := newTestPipeline(t, true)

	sentences, err := p.ProcessLines("Jinho is here.\n\nEmory University is in Atlanta.\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}
	if got := sentences[1].Tags[:2]; !reflect.DeepEqual(got, []string{"B-ORG", "L-ORG"}) {
		t.Errorf("Second sentence tags = %q", sentences[1].Tags)
	}
}

func TestPipelineEmptyText(t *testing.T) {
	p := newTestPipeline(t, true)

	s, err := p.Process("   ")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Tokens) != 0 || len(s.Tags) != 0 || len(s.Chunks) != 0 {
		t.Errorf("Empty text should give an empty sentence, got %+v", s)
	}
}
