// Package bilou encodes resolved spans as per-token BILOU tags.
//
// A one-token span is tagged U-<label>. Longer spans are tagged B-<label>
// on their first token, L-<label> on their last, and I-<label> in
// between. Tokens outside every span are tagged O. The label part is the
// span's label set rendered by index.LabelSet.String: sorted labels joined
// by commas, so a phrase listed in both LOC and ORG gazetteers is tagged
// U-LOC,ORG.
package bilou

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
	"github.com/cognicore/gazetag/pkg/gazetag/span"
)

// Outside is the tag of tokens not covered by any span.
const Outside = "O"

// Prefix is the boundary part of a tag.
type Prefix byte

const (
	Begin  Prefix = 'B'
	Inside Prefix = 'I'
	Last   Prefix = 'L'
	Unit   Prefix = 'U'
	Out    Prefix = 'O'
)

// Tag builds "<prefix>-<label>".
func Tag(p Prefix, label string) string {
	return string(p) + "-" + label
}

// Split separates a tag into its prefix and label. Outside yields (Out, "").
func Split(tag string) (Prefix, string, error) {
	if tag == Outside {
		return Out, "", nil
	}
	if len(tag) < 3 || tag[1] != '-' {
		return 0, "", fmt.Errorf("malformed tag %q: %w", tag, internalerr.ErrInvalidInput)
	}
	switch p := Prefix(tag[0]); p {
	case Begin, Inside, Last, Unit:
		return p, tag[2:], nil
	}
	return 0, "", fmt.Errorf("unknown tag prefix in %q: %w", tag, internalerr.ErrInvalidInput)
}

// Encode returns one tag per token. The matches must lie within tokens,
// must not overlap and must carry at least one label; otherwise
// ErrPrecondition is returned and no tags are produced.
func Encode(tokens []string, matches []span.Match) ([]string, error) {
	tags := make([]string, len(tokens))
	owner := make([]int, len(tokens))
	for i := range tags {
		tags[i] = Outside
		owner[i] = -1
	}

	for mi, m := range matches {
		if m.Start < 0 || m.End > len(tokens) || m.Start >= m.End {
			return nil, fmt.Errorf("encode: %v outside %d tokens: %w", m, len(tokens), internalerr.ErrPrecondition)
		}
		if len(m.Labels) == 0 {
			return nil, fmt.Errorf("encode: %v has no labels: %w", m, internalerr.ErrPrecondition)
		}
		for i := m.Start; i < m.End; i++ {
			if owner[i] >= 0 {
				return nil, fmt.Errorf("encode: %v overlaps %v at token %d: %w",
					m, matches[owner[i]], i, internalerr.ErrPrecondition)
			}
			owner[i] = mi
		}

		label := m.Labels.String()
		if m.Len() == 1 {
			tags[m.Start] = Tag(Unit, label)
			continue
		}
		tags[m.Start] = Tag(Begin, label)
		for i := m.Start + 1; i < m.End-1; i++ {
			tags[i] = Tag(Inside, label)
		}
		tags[m.End-1] = Tag(Last, label)
	}
	return tags, nil
}

// Chunk is a labeled token range recovered from tags.
type Chunk struct {
	Label string
	Start int
	End   int
}

// Decode recovers the spans of a well-formed tag sequence.
func Decode(tags []string) ([]Chunk, error) {
	var chunks []Chunk
	open := -1
	openLabel := ""

	for i, tag := range tags {
		p, label, err := Split(tag)
		if err != nil {
			return nil, fmt.Errorf("decode token %d: %w", i, err)
		}

		switch p {
		case Out, Unit, Begin:
			if open >= 0 {
				return nil, fmt.Errorf("decode token %d: %q inside open span: %w", i, tag, internalerr.ErrInvalidInput)
			}
			if p == Unit {
				chunks = append(chunks, Chunk{Label: label, Start: i, End: i + 1})
			} else if p == Begin {
				open, openLabel = i, label
			}
		case Inside, Last:
			if open < 0 || label != openLabel {
				return nil, fmt.Errorf("decode token %d: %q without matching B-%s: %w", i, tag, label, internalerr.ErrInvalidInput)
			}
			if p == Last {
				chunks = append(chunks, Chunk{Label: label, Start: open, End: i + 1})
				open, openLabel = -1, ""
			}
		}
	}

	if open >= 0 {
		return nil, fmt.Errorf("decode: span opened at token %d never closed: %w", open, internalerr.ErrInvalidInput)
	}
	return chunks, nil
}

// WriteTSV writes one "token<TAB>tag" line per token followed by a blank
// line.
func WriteTSV(w io.Writer, tokens, tags []string) error {
	if len(tokens) != len(tags) {
		return fmt.Errorf("write: %d tokens, %d tags: %w", len(tokens), len(tags), internalerr.ErrInvalidInput)
	}
	bw := bufio.NewWriter(w)
	for i, tok := range tokens {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", tok, tags[i]); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}
