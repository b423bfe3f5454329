// Package schema loads OpenAPI documents and standalone JSON Schemas,
// dereferences $ref pointers, flattens allOf compositions, and compiles
// cached validators for the resulting schemas.
package schema

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// Store holds either a file-backed document (OpenAPI or bare JSON Schema) or
// an inline schema object, and resolves validation schemas from it.
//
// File-backed stores re-read the backing file on every Reload call, which the
// validator invokes before each validation pass. That trades performance for
// freshness: schema files edited on disk take effect on the very next call
// without reconstructing the store. Do not add cross-call caching here without
// preserving that observable behavior.
type Store struct {
	filePath string
	inline   map[string]interface{}
	doc      map[string]interface{}
	strict   bool
	logger   *zap.Logger
	compiled map[string]*gojsonschema.Schema
}

// NewStoreFromFile constructs a store backed by a YAML or JSON document on
// disk. The file is read eagerly so construction fails fast on a bad path.
func NewStoreFromFile(path string, strict bool, logger *zap.Logger) (*Store, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		filePath: path,
		doc:      doc,
		strict:   strict,
		logger:   logger,
		compiled: make(map[string]*gojsonschema.Schema),
	}, nil
}

// NewStoreFromInline constructs a store around an already-parsed schema or
// OpenAPI document.
func NewStoreFromInline(doc map[string]interface{}, strict bool, logger *zap.Logger) *Store {
	return &Store{
		inline:   doc,
		doc:      doc,
		strict:   strict,
		logger:   logger,
		compiled: make(map[string]*gojsonschema.Schema),
	}
}

// Reload re-reads the backing file and drops compiled validators. It is a
// no-op for inline stores. Safe to call before every validation.
func (s *Store) Reload() error {
	if s.filePath == "" {
		return nil
	}
	doc, err := loadDocument(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to reload schema document: %w", err)
	}
	s.doc = doc
	s.compiled = make(map[string]*gojsonschema.Schema)
	return nil
}

// Resolve produces a fully dereferenced, allOf-flattened schema.
//
// A string ref names an entry under components.schemas of the loaded OpenAPI
// document. A map ref is treated as an already-resolved schema and used
// verbatim. A nil ref falls back to the store's inline schema. In every case
// the result has allOf merged away and additionalProperties forced to the
// inverse of strict mode.
func (s *Store) Resolve(ref interface{}) (map[string]interface{}, error) {
	var resolved map[string]interface{}

	switch v := ref.(type) {
	case string:
		deref := newResolver(s.doc, s.baseDir(), s.logger).dereference()
		components, _ := deref["components"].(map[string]interface{})
		schemas, _ := components["schemas"].(map[string]interface{})
		named, ok := schemas[v].(map[string]interface{})
		if !ok {
			return nil, &SchemaNotFoundError{Name: v}
		}
		resolved = named
	case map[string]interface{}:
		resolved = v
	case nil:
		if s.inline == nil {
			return nil, fmt.Errorf("no inline schema loaded and no schema reference given")
		}
		resolved = newResolver(s.inline, s.baseDir(), s.logger).dereference()
	default:
		return nil, fmt.Errorf("unsupported schema reference type %T", ref)
	}

	flat := flattenAllOf(resolved)
	// Non-strict mode permits unknown properties even when the source schema
	// forbids them; strict mode rejects them regardless.
	flat["additionalProperties"] = !s.strict
	return flat, nil
}

// OperationSchema looks up paths[route][method] in the dereferenced document.
func (s *Store) OperationSchema(route, method string) (map[string]interface{}, error) {
	route = normalizeRoute(route)
	method = strings.ToLower(method)

	deref := newResolver(s.doc, s.baseDir(), s.logger).dereference()
	paths, _ := deref["paths"].(map[string]interface{})
	pathItem, _ := paths[route].(map[string]interface{})
	operation, ok := pathItem[method].(map[string]interface{})
	if !ok {
		return nil, &OperationNotFoundError{Route: route, Method: method}
	}
	return operation, nil
}

// ResponseSchema drills into
// operation.responses[statusCode].content[contentType].schema, flattening the
// result like Resolve does.
func (s *Store) ResponseSchema(route, method string, statusCode int, contentType string) (map[string]interface{}, error) {
	operation, err := s.OperationSchema(route, method)
	if err != nil {
		return nil, err
	}
	notFound := func(missing string) error {
		return &ResponseSchemaNotFoundError{
			Route:       normalizeRoute(route),
			Method:      strings.ToLower(method),
			StatusCode:  statusCode,
			ContentType: contentType,
			Missing:     missing,
		}
	}

	responses, ok := operation["responses"].(map[string]interface{})
	if !ok {
		return nil, notFound("responses")
	}
	response, ok := responses[strconv.Itoa(statusCode)].(map[string]interface{})
	if !ok {
		return nil, notFound("status code")
	}
	content, ok := response["content"].(map[string]interface{})
	if !ok {
		return nil, notFound("content")
	}
	media, ok := content[contentType].(map[string]interface{})
	if !ok {
		return nil, notFound("content type")
	}
	raw, ok := media["schema"].(map[string]interface{})
	if !ok {
		return nil, notFound("schema")
	}

	flat := flattenAllOf(raw)
	flat["additionalProperties"] = !s.strict
	return flat, nil
}

// Compile turns a resolved schema into a gojsonschema validator, caching by
// the schema's canonical JSON so the same schema is not compiled twice within
// one validation pass. Reload clears the cache.
func (s *Store) Compile(resolved map[string]interface{}) (*gojsonschema.Schema, error) {
	key, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize schema: %w", err)
	}
	if compiled, ok := s.compiled[string(key)]; ok {
		return compiled, nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(key))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	s.compiled[string(key)] = compiled
	return compiled, nil
}

// Strict reports whether unknown properties are rejected.
func (s *Store) Strict() bool { return s.strict }

func (s *Store) baseDir() string {
	if s.filePath == "" {
		return "."
	}
	return filepath.Dir(s.filePath)
}

// normalizeRoute prefixes a leading slash when absent, so lookups accept both
// "items" and "/items".
func normalizeRoute(route string) string {
	if !strings.HasPrefix(route, "/") {
		return "/" + route
	}
	return route
}
