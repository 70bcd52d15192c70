package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCollectInputsFromSets(t *testing.T) {
	cases := []struct {
		name string
		sets []string
		want map[string]any
	}{
		{
			name: "plain string",
			sets: []string{"appName=MyApp"},
			want: map[string]any{"appName": "MyApp"},
		},
		{
			name: "yaml list value",
			sets: []string{"platforms=[ios, android]"},
			want: map[string]any{"platforms": []any{"ios", "android"}},
		},
		{
			name: "numeric value",
			sets: []string{"maxConnections=25"},
			want: map[string]any{"maxConnections": 25},
		},
		{
			name: "later set wins",
			sets: []string{"region=us", "region=eu"},
			want: map[string]any{"region": "eu"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := collectInputs("", tc.sets)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(map[string]any(got), tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCollectInputsRejectsMalformedSet(t *testing.T) {
	for _, set := range []string{"novalue", "=orphan"} {
		if _, err := collectInputs("", []string{set}); err == nil {
			t.Errorf("expected error for %q", set)
		}
	}
}

func TestCollectInputsFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inputs.yaml")
	content := []byte("appName: FromFile\nplatforms: [ios]\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := collectInputs(path, []string{"appName=FromFlag"})
	if err != nil {
		t.Fatal(err)
	}
	if got["appName"] != "FromFlag" {
		t.Errorf("--set should override the file, got %v", got["appName"])
	}
	if !reflect.DeepEqual(got["platforms"], []any{"ios"}) {
		t.Errorf("file values should survive, got %v", got["platforms"])
	}
}

func TestCollectInputsMissingFile(t *testing.T) {
	if _, err := collectInputs("/nonexistent/inputs.yaml", nil); err == nil {
		t.Error("expected error for missing inputs file")
	}
}
