package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cognicore/gazetag/pkg/gazetag"
	"github.com/cognicore/gazetag/pkg/gazetag/gazetteer"
	"github.com/cognicore/gazetag/pkg/gazetag/index"
	"github.com/cognicore/gazetag/pkg/gazetag/ingest"
	"github.com/cognicore/gazetag/pkg/gazetag/store/sqlite"
)

// Loader loads all configuration files and constructs components.
// Non-empty fields override the values read from ConfigPath.
type Loader struct {
	ConfigPath     string
	Engine         string
	GazetteerDirs  []string
	GazetteerFiles []string
	DatabasePath   string
	SplitPunct     bool
	CacheSize      int
}

// Components holds all loaded configuration components
type Components struct {
	Config    *Config
	Tokenizer *ingest.Tokenizer
	Index     index.PatternIndex
	Tagger    *gazetag.Tagger
	Pipeline  *ingest.Pipeline
	// Phrases is the number of (phrase, label) pairs registered.
	Phrases int
}

// Load reads all gazetteer sources and returns initialized components
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg, err := l.config()
	if err != nil {
		return nil, err
	}

	var pairs []gazetteer.Pair

	// Load gazetteer directories
	for _, dir := range cfg.GazetteerDirs {
		p, err := gazetteer.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("load gazetteer dir: %w", err)
		}
		pairs = append(pairs, p...)
	}

	// Load single gazetteer files
	for _, path := range cfg.GazetteerFiles {
		p, err := readGazetteerFile(path)
		if err != nil {
			return nil, fmt.Errorf("load gazetteer file: %w", err)
		}
		pairs = append(pairs, p...)
	}

	// Load stored gazetteers
	if cfg.Database != "" {
		p, err := readDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("load gazetteer database: %w", err)
		}
		pairs = append(pairs, p...)
	}

	engine, err := index.ParseEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	idx, err := gazetteer.Build(engine, pairs)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	tagger, err := gazetag.New(gazetag.Options{Index: idx, CacheSize: cfg.Cache()})
	if err != nil {
		return nil, err
	}
	tokenizer := ingest.NewTokenizer(cfg.Tokenizer.SplitPunct)

	return &Components{
		Config:    cfg,
		Tokenizer: tokenizer,
		Index:     idx,
		Tagger:    tagger,
		Pipeline:  ingest.NewPipeline(tokenizer, tagger),
		Phrases:   len(pairs),
	}, nil
}

func (l *Loader) config() (*Config, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		loaded, err := LoadConfig(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if l.Engine != "" {
		cfg.Engine = l.Engine
	}
	if len(l.GazetteerDirs) > 0 {
		cfg.GazetteerDirs = l.GazetteerDirs
	}
	if len(l.GazetteerFiles) > 0 {
		cfg.GazetteerFiles = l.GazetteerFiles
	}
	if l.DatabasePath != "" {
		cfg.Database = l.DatabasePath
	}
	if l.SplitPunct {
		cfg.Tokenizer.SplitPunct = true
	}
	if l.CacheSize > 0 {
		size := l.CacheSize
		cfg.CacheSize = &size
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readGazetteerFile(path string) ([]gazetteer.Pair, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return gazetteer.LoadYAML(path)
	}
	return gazetteer.ReadFile(path)
}

func readDatabase(ctx context.Context, path string) ([]gazetteer.Pair, error) {
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Pairs(ctx)
}
