package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document names
const (
	DocDefaults = "defaults"
	DocPersona  = "persona"
	DocSubs     = "subs"
	DocKeywords = "keywords"
)

// DocumentNames lists every document in load order.
var DocumentNames = []string{DocDefaults, DocPersona, DocSubs, DocKeywords}

// Location is where a document is looked for: the configured path first, then the
// example file shipped with the repository.
type Location struct {
	Path     string
	Fallback string
}

// Candidates returns the non-empty paths in lookup order.
func (l Location) Candidates() []string {
	out := make([]string, 0, 2)
	if l.Path != "" {
		out = append(out, l.Path)
	}
	if l.Fallback != "" {
		out = append(out, l.Fallback)
	}
	return out
}

// Paths locates the four configuration documents.
type Paths struct {
	Defaults Location
	Persona  Location
	Subs     Location
	Keywords Location
}

// DefaultPaths returns the conventional locations relative to the working directory.
func DefaultPaths() Paths {
	return Paths{
		Defaults: Location{Path: "config/defaults.yaml", Fallback: "config/examples/defaults.example.yaml"},
		Persona:  Location{Path: "config/persona.json", Fallback: "config/examples/persona.example.json"},
		Subs:     Location{Path: "config/subs.json", Fallback: "config/examples/subs.example.json"},
		Keywords: Location{Path: "config/keywords.yaml", Fallback: "config/examples/keywords.example.yaml"},
	}
}

// Location returns the location for a document name.
func (p Paths) Location(name string) Location {
	switch name {
	case DocDefaults:
		return p.Defaults
	case DocPersona:
		return p.Persona
	case DocSubs:
		return p.Subs
	case DocKeywords:
		return p.Keywords
	default:
		return Location{}
	}
}

// Document is a decoded configuration document. Data is nil when no candidate file
// exists, in which case built-in defaults apply.
type Document struct {
	Name   string
	Source string
	Data   any
}

// Present reports whether the document was read from a file.
func (d Document) Present() bool {
	return d.Source != ""
}

// Documents holds all four decoded documents.
type Documents map[string]Document

// LoadDocuments reads every document. A missing file is not an error; a file that exists
// but cannot be read or parsed is.
func LoadDocuments(paths Paths) (Documents, error) {
	docs := make(Documents, len(DocumentNames))
	for _, name := range DocumentNames {
		doc, err := LoadDocument(name, paths.Location(name))
		if err != nil {
			return nil, err
		}
		docs[name] = doc
	}
	return docs, nil
}

// LoadDocument reads the first existing candidate with a supported extension.
func LoadDocument(name string, loc Location) (Document, error) {
	for _, candidate := range loc.Candidates() {
		info, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Document{}, &ConfigurationError{Document: name, Path: candidate, Message: "cannot stat file", Cause: err}
		}
		if info.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(candidate))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		data, err := os.ReadFile(candidate)
		if err != nil {
			return Document{}, &ConfigurationError{Document: name, Path: candidate, Message: "cannot read file", Cause: err}
		}

		parsed, err := decode(ext, data)
		if err != nil {
			return Document{}, &ConfigurationError{Document: name, Path: candidate, Message: "cannot parse file", Cause: err}
		}
		return Document{Name: name, Source: candidate, Data: parsed}, nil
	}
	return Document{Name: name}, nil
}

func decode(ext string, data []byte) (any, error) {
	var out any
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	return out, nil
}

// decodeInto converts a schema-checked document into a typed struct.
func decodeInto(doc Document, target any) error {
	if doc.Data == nil {
		return nil
	}
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return &ConfigurationError{Document: doc.Name, Path: doc.Source, Message: "cannot re-encode document", Cause: err}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &ConfigurationError{Document: doc.Name, Path: doc.Source, Message: "cannot decode document", Cause: err}
	}
	return nil
}
