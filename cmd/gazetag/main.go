package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cognicore/gazetag/internal/corpus"
	"github.com/cognicore/gazetag/pkg/gazetag/analytics"
	"github.com/cognicore/gazetag/pkg/gazetag/bilou"
	"github.com/cognicore/gazetag/pkg/gazetag/config"
	"github.com/cognicore/gazetag/pkg/gazetag/ingest"
)

type report struct {
	Sentences    int64                   `json:"sentences"`
	Tokens       int64                   `json:"tokens"`
	TaggedTokens int64                   `json:"tagged_tokens"`
	Coverage     float64                 `json:"coverage"`
	Labels       []analytics.LabelStat   `json:"labels"`
	TopPatterns  []analytics.PatternStat `json:"top_patterns"`
	LabelPairs   []analytics.PairStat    `json:"label_pairs,omitempty"`
}

func main() {
	var (
		cfgPath    = flag.String("config", "", "Config file (optional)")
		gazetteers = flag.String("gazetteers", "", "Comma-separated gazetteer directories")
		files      = flag.String("files", "", "Comma-separated gazetteer files (.txt or .yaml)")
		dbPath     = flag.String("db", "", "Gazetteer database (optional)")
		engine     = flag.String("engine", "", "Index engine: trie or coregx")
		input      = flag.String("input", "-", "Input file: plain lines, .jsonl, or HTML with -html")
		htmlInput  = flag.Bool("html", false, "Extract text from HTML input")
		splitPunct = flag.Bool("split-punct", false, "Split punctuation at word edges into tokens")
		showStats  = flag.Bool("stats", false, "Print tagging stats as JSON to stderr")
		workers    = flag.Int("workers", runtime.NumCPU(), "Tagging workers")
	)
	flag.Parse()

	if *cfgPath == "" && *gazetteers == "" && *files == "" && *dbPath == "" {
		log.Fatal("--config, --gazetteers, --files or --db required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader := config.Loader{
		ConfigPath:     *cfgPath,
		Engine:         *engine,
		GazetteerDirs:  splitList(*gazetteers),
		GazetteerFiles: splitList(*files),
		DatabasePath:   *dbPath,
		SplitPunct:     *splitPunct,
	}
	components, err := loader.Load(ctx)
	if err != nil {
		log.Fatalf("load configs: %v", err)
	}
	log.Printf("Loaded %d gazetteer phrases (%d unique)", components.Phrases, components.Index.Len())

	docs, err := loadDocs(*input, *htmlInput)
	if err != nil {
		log.Fatalf("load input: %v", err)
	}

	var sentences [][]string
	for _, doc := range docs {
		for _, line := range ingest.SplitLines(doc.Text) {
			sentences = append(sentences, components.Tokenizer.Tokenize(line))
		}
	}

	tagged, err := components.Tagger.TagAll(ctx, sentences, *workers)
	if err != nil {
		log.Fatalf("tag: %v", err)
	}

	analyzer := analytics.NewAnalyzer()
	out := bufio.NewWriter(os.Stdout)
	for i, tokens := range sentences {
		if err := bilou.WriteTSV(out, tokens, tagged[i]); err != nil {
			log.Fatalf("write: %v", err)
		}
		if *showStats {
			chunks, err := bilou.Decode(tagged[i])
			if err != nil {
				log.Fatalf("decode sentence %d: %v", i, err)
			}
			analyzer.Process(tokens, chunks)
		}
	}
	if err := out.Flush(); err != nil {
		log.Fatalf("write: %v", err)
	}

	if *showStats {
		stats := analyzer.Snapshot()
		rep := report{
			Sentences:    stats.Sentences,
			Tokens:       stats.Tokens,
			TaggedTokens: stats.TaggedTokens,
			Coverage:     stats.Coverage(),
			Labels:       stats.Labels(),
			TopPatterns:  stats.TopPatterns(20),
			LabelPairs:   stats.LabelPairs(2),
		}
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			log.Fatalf("marshal report: %v", err)
		}
		fmt.Fprintln(os.Stderr, string(data))
	}
}

func loadDocs(path string, isHTML bool) ([]corpus.Document, error) {
	if isHTML {
		r, closeFn, err := open(path)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		text, err := ingest.HTMLText(r)
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return []corpus.Document{{ID: path, Text: text}}, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return corpus.LoadFromJSONL(path)
	}
	r, closeFn, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return corpus.ReadLines(r)
}

func open(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
