package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultSchema() Schema {
	return Schema{
		"type":     "object",
		"required": []any{"summary", "artifacts"},
		"properties": map[string]any{
			"summary": map[string]any{"type": "string"},
			"artifacts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"path"},
					"properties": map[string]any{
						"path":   map[string]any{"type": "string"},
						"format": map[string]any{"type": "string"},
					},
				},
			},
			"confidence": map[string]any{"type": "number", "minimum": 0},
			"states":     map[string]any{"type": "integer", "minimum": 1},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	v := map[string]any{
		"summary": "done",
		"artifacts": []any{
			map[string]any{"path": "docs/plan.md", "format": "markdown"},
		},
		"confidence": 0.9,
		"states":     float64(4),
	}
	assert.NoError(t, Validate(resultSchema(), v))
}

func TestValidateViolations(t *testing.T) {
	tests := []struct {
		name string
		v    any
		path string
	}{
		{
			name: "not an object",
			v:    []any{},
			path: "",
		},
		{
			name: "missing required",
			v:    map[string]any{"summary": "done"},
			path: "artifacts",
		},
		{
			name: "wrong scalar type",
			v:    map[string]any{"summary": 42, "artifacts": []any{}},
			path: "summary",
		},
		{
			name: "item missing required",
			v: map[string]any{
				"summary":   "done",
				"artifacts": []any{map[string]any{"format": "markdown"}},
			},
			path: "artifacts[0].path",
		},
		{
			name: "non-integer states",
			v:    map[string]any{"summary": "done", "artifacts": []any{}, "states": 2.5},
			path: "states",
		},
		{
			name: "below minimum",
			v:    map[string]any{"summary": "done", "artifacts": []any{}, "confidence": -1.0},
			path: "confidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(resultSchema(), tt.v)
			require.Error(t, err)
			var verr *ViolationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestValidateEnum(t *testing.T) {
	s := Schema{"type": "string", "enum": []any{"ios", "android"}}
	assert.NoError(t, Validate(s, "ios"))
	assert.Error(t, Validate(s, "web"))
}

func TestSynthesizeMinimalResult(t *testing.T) {
	v := Synthesize(resultSchema())

	obj, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "", obj["summary"])
	assert.Equal(t, []any{}, obj["artifacts"])
	_, hasOptional := obj["confidence"]
	assert.False(t, hasOptional, "optional properties are not synthesized")

	// Round trip: the synthesized value conforms to its own schema.
	assert.NoError(t, Validate(resultSchema(), v))
}

func TestSynthesizeScalars(t *testing.T) {
	assert.Equal(t, "ios", Synthesize(Schema{"type": "string", "enum": []any{"ios", "android"}}))
	assert.Equal(t, false, Synthesize(Schema{"type": "boolean"}))
	assert.Equal(t, float64(1), Synthesize(Schema{"type": "integer", "minimum": 1}))
	assert.Equal(t, "unknown", Synthesize(Schema{"type": "string", "default": "unknown"}))
}
