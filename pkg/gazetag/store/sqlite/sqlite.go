package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/gazetag/pkg/gazetag/gazetteer"
	"github.com/cognicore/gazetag/pkg/gazetag/index"
	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
	"github.com/cognicore/gazetag/pkg/gazetag/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDGenerator
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// The foreign_keys pragma is per connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:  db,
		ids: store.NewIDGenerator(),
		now: time.Now,
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sources (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	label TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS phrases (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id TEXT NOT NULL,
	phrase TEXT NOT NULL,
	UNIQUE(source_id, phrase),
	FOREIGN KEY(source_id) REFERENCES sources(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_phrases_source ON phrases(source_id);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// AddSource registers a new gazetteer source
func (s *sqliteStore) AddSource(ctx context.Context, name, label string) (store.Source, error) {
	name, label = strings.TrimSpace(name), strings.TrimSpace(label)
	if name == "" || label == "" {
		return store.Source{}, fmt.Errorf("add source %q: name and label required: %w", name, internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Source{}, err
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources WHERE name=?`, name).Scan(&count); err != nil {
		return store.Source{}, err
	}
	if count > 0 {
		return store.Source{}, fmt.Errorf("add source %q: %w", name, internalerr.ErrDuplicate)
	}

	created := s.now().UTC()
	src := store.Source{
		ID:        s.ids.New(created),
		Name:      name,
		Label:     label,
		CreatedAt: created,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (id, name, label, created_at) VALUES (?, ?, ?, ?)`,
		src.ID, src.Name, src.Label, created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return store.Source{}, err
	}

	if err := tx.Commit(); err != nil {
		return store.Source{}, err
	}
	return src, nil
}

// GetSource returns a source by ID
func (s *sqliteStore) GetSource(ctx context.Context, id string) (store.Source, error) {
	row := s.db.QueryRowContext(ctx, sourceQuery+` WHERE s.id=?`, id)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Source{}, fmt.Errorf("source %s: %w", id, internalerr.ErrNotFound)
	}
	return src, err
}

// ListSources returns all sources ordered by name
func (s *sqliteStore) ListSources(ctx context.Context) ([]store.Source, error) {
	rows, err := s.db.QueryContext(ctx, sourceQuery+` ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []store.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// DeleteSource removes a source and, by cascade, its phrases
func (s *sqliteStore) DeleteSource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delete source %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

// AddPhrases appends phrases to a source in a single transaction and
// returns how many were new. Phrases are stored normalized; blanks and
// repeats are skipped.
func (s *sqliteStore) AddPhrases(ctx context.Context, sourceID string, phrases []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources WHERE id=?`, sourceID).Scan(&count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("add phrases to %s: %w", sourceID, internalerr.ErrNotFound)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO phrases (source_id, phrase) VALUES (?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, p := range phrases {
		p = index.Normalize(p)
		if p == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, sourceID, p)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// CountPhrases returns the number of stored phrases across all sources
func (s *sqliteStore) CountPhrases(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM phrases`).Scan(&n)
	return n, err
}

// Pairs returns every stored (phrase, label) pair
func (s *sqliteStore) Pairs(ctx context.Context) ([]gazetteer.Pair, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.phrase, s.label
FROM phrases p
JOIN sources s ON s.id = p.source_id
ORDER BY s.name, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []gazetteer.Pair
	for rows.Next() {
		var p gazetteer.Pair
		if err := rows.Scan(&p.Pattern, &p.Label); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

const sourceQuery = `
SELECT s.id, s.name, s.label, s.created_at,
	(SELECT COUNT(*) FROM phrases p WHERE p.source_id = s.id)
FROM sources s`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (store.Source, error) {
	var (
		src     store.Source
		created string
	)
	if err := row.Scan(&src.ID, &src.Name, &src.Label, &created, &src.Phrases); err != nil {
		return store.Source{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.Source{}, fmt.Errorf("source %s created_at: %w", src.ID, err)
	}
	src.CreatedAt = t
	return src, nil
}
