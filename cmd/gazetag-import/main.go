package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"

	"github.com/cognicore/gazetag/pkg/gazetag/gazetteer"
	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
	"github.com/cognicore/gazetag/pkg/gazetag/store"
	"github.com/cognicore/gazetag/pkg/gazetag/store/memstore"
	"github.com/cognicore/gazetag/pkg/gazetag/store/sqlite"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "Database path (required)")
		dir     = flag.String("dir", "", "Gazetteer directory of *.txt files (required)")
		replace = flag.Bool("replace", false, "Replace sources that already exist")
		dryRun  = flag.Bool("dry-run", false, "Import into memory only and report counts")
	)
	flag.Parse()

	if *dbPath == "" && !*dryRun {
		log.Fatal("--db required")
	}
	if *dir == "" {
		log.Fatal("--dir required")
	}

	ctx := context.Background()

	var st store.Store = memstore.New()
	if !*dryRun {
		db, err := sqlite.OpenSQLite(ctx, *dbPath)
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
		st = db
	}
	defer st.Close()

	files, err := filepath.Glob(filepath.Join(*dir, "*"+gazetteer.FileExt))
	if err != nil {
		log.Fatal("Failed to list gazetteers:", err)
	}
	if len(files) == 0 {
		log.Fatalf("No %s files in %s", gazetteer.FileExt, *dir)
	}
	sort.Strings(files)

	existing := map[string]string{}
	if *replace {
		sources, err := st.ListSources(ctx)
		if err != nil {
			log.Fatal("Failed to list sources:", err)
		}
		for _, s := range sources {
			existing[s.Name] = s.ID
		}
	}

	for _, path := range files {
		pairs, err := gazetteer.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		name := filepath.Base(path)
		if id, ok := existing[name]; ok {
			if err := st.DeleteSource(ctx, id); err != nil {
				log.Fatalf("Failed to replace %s: %v", name, err)
			}
		}

		src, err := st.AddSource(ctx, name, gazetteer.LabelFromPath(path))
		if errors.Is(err, internalerr.ErrDuplicate) {
			log.Printf("Skipping %s: already imported (use --replace)", name)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to add source %s: %v", name, err)
		}

		phrases := make([]string, len(pairs))
		for i, p := range pairs {
			phrases[i] = p.Pattern
		}
		n, err := st.AddPhrases(ctx, src.ID, phrases)
		if err != nil {
			log.Fatalf("Failed to add phrases from %s: %v", name, err)
		}
		fmt.Printf("%s\t%s\t%s\t%d\n", src.ID, src.Label, name, n)
	}

	total, err := st.CountPhrases(ctx)
	if err != nil {
		log.Fatal("Failed to count phrases:", err)
	}
	log.Printf("Import complete: %d phrases stored", total)
}
