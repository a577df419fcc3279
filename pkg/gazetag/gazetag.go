package gazetag

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/gazetag/pkg/gazetag/bilou"
	"github.com/cognicore/gazetag/pkg/gazetag/index"
	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
	"github.com/cognicore/gazetag/pkg/gazetag/resolve"
	"github.com/cognicore/gazetag/pkg/gazetag/span"
)

// Tagger is the gazetteer tagging facade: match, resolve, encode.
type Tagger struct {
	idx     index.PatternIndex
	matcher *span.Matcher
	cache   *lru.Cache[string, []string]
}

// Options configures a Tagger
type Options struct {
	// Index must be finalized.
	Index index.PatternIndex
	// CacheSize > 0 keeps the tags of that many recent sentences.
	CacheSize int
}

// New creates a Tagger over a finalized index
func New(opts Options) (*Tagger, error) {
	if opts.Index == nil {
		return nil, fmt.Errorf("tagger: nil index: %w", internalerr.ErrInvalidConfig)
	}
	if !opts.Index.Finalized() {
		return nil, fmt.Errorf("tagger: index not finalized: %w", internalerr.ErrInvalidState)
	}

	t := &Tagger{
		idx:     opts.Index,
		matcher: span.NewMatcher(opts.Index),
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []string](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("tagger cache: %w", err)
		}
		t.cache = cache
	}
	return t, nil
}

// Index returns the underlying pattern index
func (t *Tagger) Index() index.PatternIndex { return t.idx }

// Spans returns the disjoint gazetteer spans of a sentence, ordered by
// start token.
func (t *Tagger) Spans(tokens []string) ([]span.Match, error) {
	matches, err := t.matcher.Match(tokens)
	if err != nil {
		return nil, err
	}
	return resolve.Resolve(matches), nil
}

// Tag returns one BILOU tag per token.
func (t *Tagger) Tag(tokens []string) ([]string, error) {
	var key string
	if t.cache != nil {
		key = cacheKey(tokens)
		if tags, ok := t.cache.Get(key); ok {
			return append([]string(nil), tags...), nil
		}
	}

	spans, err := t.Spans(tokens)
	if err != nil {
		return nil, err
	}
	tags, err := bilou.Encode(tokens, spans)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		t.cache.Add(key, append([]string(nil), tags...))
	}
	return tags, nil
}

// cacheKey encodes tokens with a length prefix each, so distinct token
// sequences never share a key whatever bytes the tokens hold.
func cacheKey(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(strconv.Itoa(len(tok)))
		b.WriteByte(':')
		b.WriteString(tok)
	}
	return b.String()
}

// TagAll tags every sentence using up to workers goroutines. Results keep
// the input order. Cancellation is checked between sentences.
func (t *Tagger) TagAll(ctx context.Context, sentences [][]string, workers int) ([][]string, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(sentences) {
		workers = len(sentences)
	}

	out := make([][]string, len(sentences))
	jobs := make(chan int)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tags, err := t.Tag(sentences[i])
				if err != nil {
					errs <- fmt.Errorf("sentence %d: %w", i, err)
					return
				}
				out[i] = tags
			}
		}()
	}

	var err error
feed:
	for i := range sentences {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case err = <-errs:
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err != nil {
		return nil, err
	}
	if werr, ok := <-errs; ok {
		return nil, werr
	}
	return out, nil
}
