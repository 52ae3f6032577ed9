package vocabulary

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semgloss/glossary"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Entry is the YAML form of a vocabulary entry.
type Entry struct {
	Text       string        `yaml:"text"`
	Type       glossary.Kind `yaml:"type,omitempty"`
	Brief      string        `yaml:"brief,omitempty"`
	Definition string        `yaml:"definition,omitempty"`
}

// Document is the top-level shape of a vocabulary file.
type Document struct {
	Terms map[string]Entry `yaml:"terms"`
}

// Parse decodes a vocabulary document. Unknown fields and unknown types are errors.
// Empty input yields an empty vocabulary.
func Parse(data []byte) (map[string]glossary.Entry, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}

	terms := make(map[string]glossary.Entry, len(doc.Terms))
	for key, e := range doc.Terms {
		if !e.Type.Valid() {
			return nil, fmt.Errorf("term %q: %w: %q", key, ErrUnknownKind, e.Type)
		}
		terms[key] = glossary.Entry{
			Text:       e.Text,
			Brief:      strings.TrimSpace(e.Brief),
			Definition: strings.TrimSpace(e.Definition),
			Kind:       e.Type,
		}
	}
	return terms, nil
}

// LoadFile reads and parses a single vocabulary file.
func LoadFile(path string) (map[string]glossary.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	terms, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return terms, nil
}

// Marshal encodes terms as a vocabulary document.
func Marshal(terms map[string]glossary.Entry) ([]byte, error) {
	doc := Document{Terms: make(map[string]Entry, len(terms))}
	for key, e := range terms {
		doc.Terms[key] = Entry{
			Text:       e.Text,
			Type:       e.Kind,
			Brief:      e.Brief,
			Definition: e.Definition,
		}
	}
	return yaml.Marshal(doc)
}

// Builtin returns the embedded default vocabulary.
func Builtin() map[string]glossary.Entry {
	terms, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("vocabulary: embedded vocabulary is invalid: %v", err))
	}
	return terms
}

// Merge copies src into dst and returns the keys that already existed in dst,
// in no particular order.
func Merge(dst, src map[string]glossary.Entry) []string {
	var overridden []string
	for key, e := range src {
		if _, ok := dst[key]; ok {
			overridden = append(overridden, key)
		}
		dst[key] = e
	}
	return overridden
}
