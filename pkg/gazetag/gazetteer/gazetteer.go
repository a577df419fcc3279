// Package gazetteer reads (phrase, label) pairs from gazetteer sources and
// loads them into a pattern index.
package gazetteer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/gazetag/pkg/gazetag/index"
)

// FileExt is the extension of plain-text gazetteer files.
const FileExt = ".txt"

// Pair is one gazetteer phrase with its label.
type Pair struct {
	Pattern string
	Label   string
}

// Read parses one phrase per line. Lines are trimmed; blank lines are
// skipped.
func Read(r io.Reader, label string) ([]Pair, error) {
	var pairs []Pair
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pairs = append(pairs, Pair{Pattern: line, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// ReadFile reads a plain-text gazetteer, labeling each phrase with the
// file's base name without extension.
func ReadFile(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs, err := Read(f, LabelFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return pairs, nil
}

// ReadDir reads every *.txt file in dir, in name order.
func ReadDir(dir string) ([]Pair, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*"+FileExt))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var pairs []Pair
	for _, path := range files {
		p, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p...)
	}
	return pairs, nil
}

// LabelFromPath derives a label from a gazetteer file name:
// "dat/ner/LOC.txt" → "LOC".
func LabelFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// LoadYAML loads a labeled gazetteer document.
//
// Expected format:
//
//	gazetteers:
//	  - label: LOC
//	    phrases: [United States of America, Georgia]
//	  - label: ORG
//	    phrases: [Emory University]
func LoadYAML(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Gazetteers []struct {
			Label   string   `yaml:"label"`
			Phrases []string `yaml:"phrases"`
		} `yaml:"gazetteers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var pairs []Pair
	for _, g := range doc.Gazetteers {
		for _, phrase := range g.Phrases {
			if strings.TrimSpace(phrase) == "" {
				continue
			}
			pairs = append(pairs, Pair{Pattern: phrase, Label: g.Label})
		}
	}
	return pairs, nil
}

// Register adds every pair to idx.
func Register(idx index.PatternIndex, pairs []Pair) error {
	for _, p := range pairs {
		if err := idx.Register(p.Pattern, p.Label); err != nil {
			return err
		}
	}
	return nil
}

// Build creates an index for engine, registers the pairs and finalizes it.
func Build(engine index.Engine, pairs []Pair) (index.PatternIndex, error) {
	idx, err := index.New(engine)
	if err != nil {
		return nil, err
	}
	if err := Register(idx, pairs); err != nil {
		return nil, err
	}
	if err := idx.Finalize(); err != nil {
		return nil, err
	}
	return idx, nil
}
