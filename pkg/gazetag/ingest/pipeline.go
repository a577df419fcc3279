package ingest

import (
	"github.com/cognicore/gazetag/pkg/gazetag"
	"github.com/cognicore/gazetag/pkg/gazetag/bilou"
)

// Pipeline orchestrates the full tagging flow:
// text → tokenization → gazetteer matching → overlap resolution → BILOU tags
type Pipeline struct {
	tokenizer *Tokenizer
	tagger    *gazetag.Tagger
}

// NewPipeline creates a tagging pipeline with the given components
func NewPipeline(tokenizer *Tokenizer, tagger *gazetag.Tagger) *Pipeline {
	return &Pipeline{
		tokenizer: tokenizer,
		tagger:    tagger,
	}
}

// Sentence is one tagged sentence
type Sentence struct {
	Tokens []string
	Tags   []string
	Chunks []bilou.Chunk
}

// Process tags text as a single sentence
func (p *Pipeline) Process(text string) (Sentence, error) {
	// 1. Tokenize (case-preserving)
	tokens := p.tokenizer.Tokenize(text)

	// 2. Match, resolve overlaps, encode
	tags, err := p.tagger.Tag(tokens)
	if err != nil {
		return Sentence{}, err
	}

	// 3. Recover labeled spans for reporting
	chunks, err := bilou.Decode(tags)
	if err != nil {
		return Sentence{}, err
	}

	return Sentence{
		Tokens: tokens,
		Tags:   tags,
		Chunks: chunks,
	}, nil
}

// ProcessLines tags every non-blank line of text as its own sentence
func (p *Pipeline) ProcessLines(text string) ([]Sentence, error) {
	lines := SplitLines(text)
	out := make([]Sentence, 0, len(lines))
	for _, line := range lines {
		s, err := p.Process(line)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
