package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits raw text into the space-free tokens the matcher works
// on. Case is preserved: gazetteer phrases match case-sensitively.
type Tokenizer struct {
	splitPunct bool
}

// NewTokenizer creates a tokenizer. With splitPunct, punctuation at the
// edges of a whitespace-delimited word becomes its own token:
// "Georgia," → "Georgia", ",". Inner punctuation ("U.S", "Jean-Luc")
// stays in the word.
func NewTokenizer(splitPunct bool) *Tokenizer {
	return &Tokenizer{splitPunct: splitPunct}
}

// Tokenize splits text into tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := strings.Fields(text)
	if !t.splitPunct {
		return words
	}

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		tokens = appendSplit(tokens, w)
	}
	return tokens
}

// appendSplit peels leading and trailing punctuation runes off word.
func appendSplit(tokens []string, word string) []string {
	var trailing []string
	for word != "" {
		r, size := utf8.DecodeRuneInString(word)
		if !isEdgePunct(r) {
			break
		}
		tokens = append(tokens, word[:size])
		word = word[size:]
	}
	for word != "" {
		r, size := utf8.DecodeLastRuneInString(word)
		if !isEdgePunct(r) {
			break
		}
		trailing = append(trailing, word[len(word)-size:])
		word = word[:len(word)-size]
	}

	if word != "" {
		tokens = append(tokens, word)
	}
	for i := len(trailing) - 1; i >= 0; i-- {
		tokens = append(tokens, trailing[i])
	}
	return tokens
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// SplitLines returns the non-blank lines of text, trimmed. Each line is
// treated as one sentence.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
