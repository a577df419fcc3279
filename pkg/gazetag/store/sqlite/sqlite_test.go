package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/gazetag/pkg/gazetag/gazetteer"
	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
	"github.com/cognicore/gazetag/pkg/gazetag/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "gaz.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSchemaCreationIdempotent tests that running initSchema multiple times is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}
	if count != 2 { // sources, phrases
		t.Errorf("Expected 2 tables, got %d", count)
	}
}

func TestAddAndGetSource(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	src, err := st.AddSource(ctx, "dat/ner/LOC.txt", "LOC")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ulid.Parse(src.ID); err != nil {
		t.Errorf("Source ID %q is not a ULID: %v", src.ID, err)
	}

	got, err := st.GetSource(ctx, src.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != src.ID || got.Name != "dat/ner/LOC.txt" || got.Label != "LOC" || got.Phrases != 0 {
		t.Errorf("GetSource = %+v", got)
	}
	if !got.CreatedAt.Equal(src.CreatedAt) {
		t.Errorf("CreatedAt round trip: %v != %v", got.CreatedAt, src.CreatedAt)
	}
}

func TestAddSourceErrors(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if _, err := st.AddSource(ctx, "LOC.txt", "LOC"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddSource(ctx, "LOC.txt", "PER"); !errors.Is(err, internalerr.ErrDuplicate) {
		t.Errorf("Duplicate name: expected ErrDuplicate, got %v", err)
	}
	if _, err := st.AddSource(ctx, "x", " "); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Empty label: expected ErrInvalidInput, got %v", err)
	}
	if _, err := st.GetSource(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Unknown source: expected ErrNotFound, got %v", err)
	}
}

func TestAddPhrasesAndPairs(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	per, err := st.AddSource(ctx, "PER.txt", "PER")
	if err != nil {
		t.Fatal(err)
	}
	loc, err := st.AddSource(ctx, "LOC.txt", "LOC")
	if err != nil {
		t.Fatal(err)
	}

	n, err := st.AddPhrases(ctx, loc.ID, []string{"United  States of America", "Georgia", "", "Georgia"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Expected 2 new phrases, got %d", n)
	}
	if n, err := st.AddPhrases(ctx, loc.ID, []string{"Georgia", "South Korea"}); err != nil || n != 1 {
		t.Errorf("Second AddPhrases = %d, %v; want 1", n, err)
	}
	if _, err := st.AddPhrases(ctx, per.ID, []string{"Georgia", "Jinho"}); err != nil {
		t.Fatal(err)
	}

	pairs, err := st.Pairs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []gazetteer.Pair{
		{Pattern: "United States of America", Label: "LOC"},
		{Pattern: "Georgia", Label: "LOC"},
		{Pattern: "South Korea", Label: "LOC"},
		{Pattern: "Georgia", Label: "PER"},
		{Pattern: "Jinho", Label: "PER"},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("Pairs:\n got  %v\n want %v", pairs, want)
	}

	total, err := st.CountPhrases(ctx)
	if err != nil || total != 5 {
		t.Errorf("CountPhrases = %d, %v; want 5", total, err)
	}

	sources, err := st.ListSources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 || sources[0].Name != "LOC.txt" || sources[0].Phrases != 3 || sources[1].Phrases != 2 {
		t.Errorf("ListSources = %+v", sources)
	}
}

func TestAddPhrasesUnknownSource(t *testing.T) {
	st := openTestStore(t)
	_, err := st.AddPhrases(context.Background(), "missing", []string{"Georgia"})
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSourceCascades(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	src, err := st.AddSource(ctx, "LOC.txt", "LOC")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddPhrases(ctx, src.ID, []string{"Georgia", "Korea"}); err != nil {
		t.Fatal(err)
	}

	if err := st.DeleteSource(ctx, src.ID); err != nil {
		t.Fatal(err)
	}
	if total, err := st.CountPhrases(ctx); err != nil || total != 0 {
		t.Errorf("Phrases should be deleted with their source: %d, %v", total, err)
	}
	if err := st.DeleteSource(ctx, src.ID); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Second delete: expected ErrNotFound, got %v", err)
	}
}

func TestReopenPreservesData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gaz.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	src, err := st.AddSource(ctx, "LOC.txt", "LOC")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddPhrases(ctx, src.ID, []string{"Georgia"}); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	pairs, err := st.Pairs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []gazetteer.Pair{{Pattern: "Georgia", Label: "LOC"}}; !reflect.DeepEqual(pairs, want) {
		t.Errorf("Pairs after reopen = %v", pairs)
	}
}
