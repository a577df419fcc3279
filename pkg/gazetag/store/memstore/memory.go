package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/gazetag/pkg/gazetag/gazetteer"
	"github.com/cognicore/gazetag/pkg/gazetag/index"
	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
	"github.com/cognicore/gazetag/pkg/gazetag/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	ids     *store.IDGenerator
	sources map[string]store.Source
	names   map[string]string   // name -> id
	phrases map[string][]string // id -> phrases in insertion order
	seen    map[string]map[string]struct{}
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:     store.NewIDGenerator(),
		sources: make(map[string]store.Source),
		names:   make(map[string]string),
		phrases: make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// AddSource implements store.Store.
func (s *Store) AddSource(ctx context.Context, name, label string) (store.Source, error) {
	name, label = strings.TrimSpace(name), strings.TrimSpace(label)
	if name == "" || label == "" {
		return store.Source{}, fmt.Errorf("add source %q: name and label required: %w", name, internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.names[name]; ok {
		return store.Source{}, fmt.Errorf("add source %q: %w", name, internalerr.ErrDuplicate)
	}
	created := time.Now().UTC()
	src := store.Source{ID: s.ids.New(created), Name: name, Label: label, CreatedAt: created}
	s.sources[src.ID] = src
	s.names[name] = src.ID
	s.seen[src.ID] = make(map[string]struct{})
	return src, nil
}

// GetSource implements store.Store.
func (s *Store) GetSource(ctx context.Context, id string) (store.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[id]
	if !ok {
		return store.Source{}, fmt.Errorf("source %s: %w", id, internalerr.ErrNotFound)
	}
	src.Phrases = len(s.phrases[id])
	return src, nil
}

// ListSources implements store.Store.
func (s *Store) ListSources(ctx context.Context) ([]store.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Source, 0, len(s.sources))
	for id, src := range s.sources {
		src.Phrases = len(s.phrases[id])
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteSource implements store.Store.
func (s *Store) DeleteSource(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[id]
	if !ok {
		return fmt.Errorf("delete source %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.sources, id)
	delete(s.names, src.Name)
	delete(s.phrases, id)
	delete(s.seen, id)
	return nil
}

// AddPhrases implements store.Store.
func (s *Store) AddPhrases(ctx context.Context, sourceID string, phrases []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen, ok := s.seen[sourceID]
	if !ok {
		return 0, fmt.Errorf("add phrases to %s: %w", sourceID, internalerr.ErrNotFound)
	}
	added := 0
	for _, p := range phrases {
		p = index.Normalize(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		s.phrases[sourceID] = append(s.phrases[sourceID], p)
		added++
	}
	return added, nil
}

// CountPhrases implements store.Store.
func (s *Store) CountPhrases(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, ps := range s.phrases {
		n += int64(len(ps))
	}
	return n, nil
}

// Pairs implements store.Store.
func (s *Store) Pairs(ctx context.Context) ([]gazetteer.Pair, error) {
	sources, err := s.ListSources(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var pairs []gazetteer.Pair
	for _, src := range sources {
		for _, p := range s.phrases[src.ID] {
			pairs = append(pairs, gazetteer.Pair{Pattern: p, Label: src.Label})
		}
	}
	return pairs, nil
}
