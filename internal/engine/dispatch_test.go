package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

func TestStubDispatcherSynthesizesFromSchema(t *testing.T) {
	spec := task.Spec{
		Agent: task.Agent{
			Name: "designer",
			OutputSchema: map[string]any{
				"type":     "object",
				"required": []any{"summary", "states"},
				"properties": map[string]any{
					"summary": map[string]any{"type": "string"},
					"states":  map[string]any{"type": "array"},
				},
			},
		},
	}

	res, err := StubDispatcher{}.Dispatch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "", res["summary"])
	assert.Equal(t, []any{}, res["states"])
	// The artifacts convention is always honored so phase collection works.
	assert.Equal(t, []any{}, res["artifacts"])
}

func TestStubDispatcherWithoutSchema(t *testing.T) {
	res, err := StubDispatcher{}.Dispatch(context.Background(), task.Spec{Agent: task.Agent{Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, []any{}, res["artifacts"])
}

func TestDecodeAgentOutput(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{
			name: "plain object",
			out:  `{"summary": "done", "artifacts": []}`,
			want: "done",
		},
		{
			name: "result envelope",
			out:  `{"result": "{\"summary\": \"wrapped\"}"}`,
			want: "wrapped",
		},
		{
			name: "envelope with non-json result falls through",
			out:  `{"result": "plain text", "summary": "outer"}`,
			want: "outer",
		},
		{
			name:    "malformed",
			out:     `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := decodeAgentOutput([]byte(tt.out))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.String("summary"))
		})
	}
}
