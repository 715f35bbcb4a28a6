package settings

import (
	"embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// compiled schemas, keyed by document name
var (
	schemaCache   = make(map[string]*gojsonschema.Schema)
	schemaCacheMu sync.RWMutex
)

// loadSchema compiles and caches the embedded schema for a document.
func loadSchema(name string) (*gojsonschema.Schema, error) {
	schemaCacheMu.RLock()
	if schema, ok := schemaCache[name]; ok {
		schemaCacheMu.RUnlock()
		return schema, nil
	}
	schemaCacheMu.RUnlock()

	data, err := schemaFiles.ReadFile("schemas/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema for %s: %w", name, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for %s: %w", name, err)
	}

	schemaCacheMu.Lock()
	schemaCache[name] = schema
	schemaCacheMu.Unlock()

	return schema, nil
}

// ValidateDocument checks a decoded document against its embedded JSON Schema.
// Absent or empty documents are always valid.
func ValidateDocument(doc Document) error {
	if doc.Data == nil {
		return nil
	}

	schema, err := loadSchema(doc.Name)
	if err != nil {
		return &ConfigurationError{Document: doc.Name, Path: doc.Source, Message: "schema unavailable", Cause: err}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc.Data))
	if err != nil {
		return &ConfigurationError{Document: doc.Name, Path: doc.Source, Message: "document could not be validated", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	fields := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fields = append(fields, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return &ConfigurationError{
		Document: doc.Name,
		Path:     doc.Source,
		Message:  "document does not match schema",
		Fields:   fields,
	}
}
