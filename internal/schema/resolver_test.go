package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolver_InternalPointer(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"address": map[string]interface{}{"type": "object"},
				"user": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"address": map[string]interface{}{"$ref": "#/components/schemas/address"},
					},
				},
			},
		},
	}

	deref := newResolver(doc, ".", logger).dereference()
	user := deref["components"].(map[string]interface{})["schemas"].(map[string]interface{})["user"].(map[string]interface{})
	address := user["properties"].(map[string]interface{})["address"].(map[string]interface{})
	assert.Equal(t, "object", address["type"])
	assert.NotContains(t, address, "$ref")
}

func TestResolver_ExternalFileWithFragment(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	dir := t.TempDir()

	shared := `
components:
  schemas:
    address:
      type: object
      required:
        - street
      properties:
        street:
          type: string
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.yaml"), []byte(shared), 0644))

	doc := map[string]interface{}{
		"properties": map[string]interface{}{
			"address": map[string]interface{}{"$ref": "shared.yaml#/components/schemas/address"},
		},
	}

	deref := newResolver(doc, dir, logger).dereference()
	address := deref["properties"].(map[string]interface{})["address"].(map[string]interface{})
	assert.Equal(t, "object", address["type"])
	assert.Equal(t, []interface{}{"street"}, address["required"])
}

func TestResolver_CircularReferenceTerminates(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	doc := map[string]interface{}{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"node": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"next": map[string]interface{}{"$ref": "#/components/schemas/node"},
					},
				},
			},
		},
	}

	deref := newResolver(doc, ".", logger).dereference()
	require.NotNil(t, deref)
	node := deref["components"].(map[string]interface{})["schemas"].(map[string]interface{})["node"].(map[string]interface{})
	assert.Equal(t, "object", node["type"])
}

func TestResolver_UnresolvableRefLeftInPlace(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	doc := map[string]interface{}{
		"properties": map[string]interface{}{
			"thing": map[string]interface{}{"$ref": "#/components/schemas/missing"},
		},
	}

	deref := newResolver(doc, ".", logger).dereference()
	thing := deref["properties"].(map[string]interface{})["thing"].(map[string]interface{})
	assert.Equal(t, "#/components/schemas/missing", thing["$ref"])
}

func TestFlattenAllOf_MergesBranchesInOrder(t *testing.T) {
	flat := flattenAllOf(map[string]interface{}{
		"allOf": []interface{}{
			map[string]interface{}{
				"type":       "object",
				"required":   []interface{}{"a"},
				"properties": map[string]interface{}{"a": map[string]interface{}{"type": "string"}},
			},
			map[string]interface{}{
				"required":   []interface{}{"b", "a"},
				"properties": map[string]interface{}{"b": map[string]interface{}{"type": "number"}},
			},
		},
	})

	assert.Equal(t, "object", flat["type"])
	assert.Equal(t, []interface{}{"a", "b"}, flat["required"])
	properties := flat["properties"].(map[string]interface{})
	assert.Contains(t, properties, "a")
	assert.Contains(t, properties, "b")
	assert.NotContains(t, flat, "allOf")
}

func TestFlattenAllOf_NestedUnderProperties(t *testing.T) {
	flat := flattenAllOf(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"child": map[string]interface{}{
				"allOf": []interface{}{
					map[string]interface{}{"type": "object"},
					map[string]interface{}{"required": []interface{}{"x"}},
				},
			},
		},
	})

	child := flat["properties"].(map[string]interface{})["child"].(map[string]interface{})
	assert.Equal(t, "object", child["type"])
	assert.Equal(t, []interface{}{"x"}, child["required"])
}
