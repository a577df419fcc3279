package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/gazetag/pkg/gazetag/index"
	"github.com/cognicore/gazetag/pkg/gazetag/internalerr"
)

// DefaultCacheSize is the number of recent sentences whose tags are kept.
const DefaultCacheSize = 1024

// Config is the tagger configuration file.
//
// Example:
//
//	engine: trie
//	gazetteer_dirs: [dat/ner]
//	gazetteer_files: [extra.yaml]
//	database: gazetteers.db
//	cache_size: 1024
//	tokenizer:
//	  split_punct: true
type Config struct {
	Engine         string    `yaml:"engine"`
	GazetteerDirs  []string  `yaml:"gazetteer_dirs"`
	GazetteerFiles []string  `yaml:"gazetteer_files"`
	Database       string    `yaml:"database"`
	CacheSize      *int      `yaml:"cache_size"`
	Tokenizer      Tokenizer `yaml:"tokenizer"`
}

// Tokenizer configures input tokenization.
type Tokenizer struct {
	SplitPunct bool `yaml:"split_punct"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	size := DefaultCacheSize
	return &Config{
		Engine:    string(index.EngineTrie),
		CacheSize: &size,
	}
}

// LoadConfig loads a configuration file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", path, internalerr.ErrInvalidConfig, err)
	}
	if cfg.Engine == "" {
		cfg.Engine = string(index.EngineTrie)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := index.ParseEngine(c.Engine); err != nil {
		return err
	}
	if c.CacheSize != nil && *c.CacheSize < 0 {
		return fmt.Errorf("cache_size %d must be >= 0: %w", *c.CacheSize, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Cache returns the effective cache size.
func (c *Config) Cache() int {
	if c.CacheSize == nil {
		return DefaultCacheSize
	}
	return *c.CacheSize
}
