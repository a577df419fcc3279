package store

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/gazetag/pkg/gazetag/gazetteer"
)

// Store persists gazetteer sources and their phrases
type Store interface {
	Close() error

	// Sources
	AddSource(ctx context.Context, name, label string) (Source, error)
	GetSource(ctx context.Context, id string) (Source, error)
	ListSources(ctx context.Context) ([]Source, error)
	DeleteSource(ctx context.Context, id string) error

	// Phrases
	AddPhrases(ctx context.Context, sourceID string, phrases []string) (int, error)
	CountPhrases(ctx context.Context) (int64, error)

	// Pairs returns every (phrase, label) pair ordered by source name and
	// insertion order, ready for index registration.
	Pairs(ctx context.Context) ([]gazetteer.Pair, error)
}

// Source is one imported gazetteer, usually a single file
type Source struct {
	ID        string // ULID
	Name      string // unique, e.g. the file path it was imported from
	Label     string
	CreatedAt time.Time
	Phrases   int
}

// IDGenerator hands out monotonic ULIDs. It is safe for concurrent use.
type IDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewIDGenerator creates a generator seeded from crypto/rand
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a ULID for time t
func (g *IDGenerator) New(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}
