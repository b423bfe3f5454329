package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// resolver replaces every $ref pointer in a document with the fragment it
// points to, recursively. Internal "#/..." pointers resolve against the
// owning document; bare file references resolve against the document's
// directory. Cycles are detected and left as-is rather than expanded forever.
type resolver struct {
	doc       map[string]interface{}
	baseDir   string
	logger    *zap.Logger
	resolved  map[string]interface{}
	resolving map[string]bool
}

func newResolver(doc map[string]interface{}, baseDir string, logger *zap.Logger) *resolver {
	return &resolver{
		doc:       doc,
		baseDir:   baseDir,
		logger:    logger,
		resolved:  make(map[string]interface{}),
		resolving: make(map[string]bool),
	}
}

// dereference returns a copy of the document with every $ref expanded.
func (r *resolver) dereference() map[string]interface{} {
	out, _ := r.resolveValue(r.doc).(map[string]interface{})
	return out
}

func (r *resolver) resolveValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		if ref, ok := v["$ref"].(string); ok {
			return r.resolveReference(ref)
		}
		resolved := make(map[string]interface{}, len(v))
		for k, val := range v {
			resolved[k] = r.resolveValue(val)
		}
		return resolved
	case []interface{}:
		resolved := make([]interface{}, len(v))
		for i, val := range v {
			resolved[i] = r.resolveValue(val)
		}
		return resolved
	default:
		return value
	}
}

func (r *resolver) resolveReference(ref string) interface{} {
	if cached, ok := r.resolved[ref]; ok {
		return cached
	}
	if r.resolving[ref] {
		r.logger.Warn("circular reference detected", zap.String("ref", ref))
		return map[string]interface{}{"$ref": ref}
	}
	r.resolving[ref] = true
	defer delete(r.resolving, ref)

	var target interface{}
	var err error
	switch {
	case strings.HasPrefix(ref, "#/"):
		target, err = pointerLookup(r.doc, ref[2:])
	default:
		target, err = r.externalLookup(ref)
	}
	if err != nil {
		r.logger.Warn("failed to resolve reference", zap.String("ref", ref), zap.Error(err))
		return map[string]interface{}{"$ref": ref}
	}

	resolved := r.resolveValue(target)
	r.resolved[ref] = resolved
	return resolved
}

// externalLookup loads a sibling document, optionally drilling into a
// "#/..." fragment, e.g. "shared.yaml#/components/schemas/address".
func (r *resolver) externalLookup(ref string) (interface{}, error) {
	path := ref
	fragment := ""
	if idx := strings.Index(ref, "#/"); idx >= 0 {
		path = ref[:idx]
		fragment = ref[idx+2:]
	}
	doc, err := loadDocument(filepath.Join(r.baseDir, path))
	if err != nil {
		return nil, err
	}
	// References inside the external file resolve against that file.
	external := newResolver(doc, filepath.Dir(filepath.Join(r.baseDir, path)), r.logger)
	if fragment == "" {
		return external.dereference(), nil
	}
	target, err := pointerLookup(doc, fragment)
	if err != nil {
		return nil, err
	}
	return external.resolveValue(target), nil
}

// pointerLookup walks a slash-separated JSON pointer fragment through nested
// maps, unescaping ~1 and ~0 per RFC 6901.
func pointerLookup(doc map[string]interface{}, fragment string) (interface{}, error) {
	var current interface{} = doc
	for _, segment := range strings.Split(fragment, "/") {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("pointer segment %q does not address an object", segment)
		}
		current, ok = node[segment]
		if !ok {
			return nil, fmt.Errorf("pointer segment %q not found", segment)
		}
	}
	return current, nil
}

// flattenAllOf merges every allOf branch of a schema into one flat schema
// object. Branch properties are merged, required lists are unioned in branch
// order, and the schema's own keywords win over branch keywords. Nested
// schemas under properties and items are flattened too.
func flattenAllOf(s map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(s))
	for k, v := range s {
		if k != "allOf" {
			out[k] = flattenNested(v)
		}
	}

	branches, _ := s["allOf"].([]interface{})
	for _, raw := range branches {
		branch, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		branch = flattenAllOf(branch)
		for k, v := range branch {
			switch k {
			case "properties":
				out["properties"] = mergeProperties(out["properties"], v)
			case "required":
				out["required"] = mergeRequired(out["required"], v)
			default:
				if _, exists := out[k]; !exists {
					out[k] = v
				}
			}
		}
	}
	return out
}

func flattenNested(v interface{}) interface{} {
	switch nested := v.(type) {
	case map[string]interface{}:
		return flattenAllOf(nested)
	case []interface{}:
		out := make([]interface{}, len(nested))
		for i, item := range nested {
			out[i] = flattenNested(item)
		}
		return out
	default:
		return v
	}
}

func mergeProperties(existing, incoming interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	if m, ok := existing.(map[string]interface{}); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	if m, ok := incoming.(map[string]interface{}); ok {
		for k, v := range m {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}
	return out
}

func mergeRequired(existing, incoming interface{}) []interface{} {
	seen := make(map[string]bool)
	var out []interface{}
	for _, list := range []interface{}{existing, incoming} {
		items, ok := list.([]interface{})
		if !ok {
			continue
		}
		for _, item := range items {
			name, ok := item.(string)
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// loadDocument parses a YAML or JSON document into a generic map. YAML is a
// superset of JSON here, so one decoder covers both.
func loadDocument(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	normalized, _ := normalizeKeys(doc).(map[string]interface{})
	return normalized, nil
}

// normalizeKeys rewrites non-string map keys (e.g. unquoted YAML status
// codes) to their string form so the rest of the package can rely on
// map[string]interface{} throughout.
func normalizeKeys(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = normalizeKeys(val)
		}
		return out
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(v))
		for k, val := range v {
			converted[fmt.Sprintf("%v", k)] = normalizeKeys(val)
		}
		return converted
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = normalizeKeys(val)
		}
		return out
	default:
		return value
	}
}
