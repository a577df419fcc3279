package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Document is one input text to tag
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// LoadFromJSONL loads documents from a JSONL file. Malformed lines are
// logged and skipped.
func LoadFromJSONL(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	docs, err := ReadJSONL(f, path)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid documents found in %s", path)
	}
	return docs, nil
}

// ReadJSONL decodes one document per line from r. name is used in log
// messages. Documents without an id get their line number.
func ReadJSONL(r io.Reader, name string) ([]Document, error) {
	var docs []Document
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var doc Document
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", line, name, err)
			continue
		}
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("%d", line)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return docs, nil
}

// LoadLines treats every non-blank line of a plain-text file as a
// document.
func LoadLines(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines is LoadLines over a reader.
func ReadLines(r io.Reader) ([]Document, error) {
	var docs []Document
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		docs = append(docs, Document{ID: fmt.Sprintf("%d", line), Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
