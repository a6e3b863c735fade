package sync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"droidswitch/config/models"

	"github.com/tidwall/gjson"
)

func TestSettingsWriterStripsComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "no comments",
			input: `{"a": 1}`,
			want:  map[string]string{"a": "1"},
		},
		{
			name:  "line comment",
			input: "{\n  // model\n  \"a\": 1\n}",
			want:  map[string]string{"a": "1"},
		},
		{
			name:  "block comment",
			input: `{/* x */"a": /* y */1}`,
			want:  map[string]string{"a": "1"},
		},
		{
			name:  "slashes inside strings are kept",
			input: `{"url": "https://example.com/*x*/"}`,
			want:  map[string]string{"url": "https://example.com/*x*/"},
		},
		{
			name:  "escaped quote inside string",
			input: `{"a": "say \"// hi\""} // trailing`,
			want:  map[string]string{"a": `say "// hi"`},
		},
		{
			name:  "unterminated block comment drops the rest",
			input: `{"a": 1} /* open`,
			want:  map[string]string{"a": "1"},
		},
		{
			name:  "trailing commas",
			input: "{\n  \"a\": 1,\n  \"paths\": [\"a//b\",],\n}",
			want:  map[string]string{"a": "1", "paths.0": "a//b", "paths.#": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			if err := os.WriteFile(path, []byte(tt.input), 0644); err != nil {
				t.Fatal(err)
			}

			if err := NewSettingsWriter(path).Apply("gpt-5.1", models.ReasoningLow); err != nil {
				t.Fatalf("Apply() unexpected error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !json.Valid(data) {
				t.Fatalf("settings are not valid JSON:\n%s", data)
			}
			for field, want := range tt.want {
				if got := gjson.GetBytes(data, field).String(); got != want {
					t.Errorf("%s = %q, want %q", field, got, want)
				}
			}
			if got := gjson.GetBytes(data, "model").String(); got != "gpt-5.1" {
				t.Errorf("model = %q", got)
			}
		})
	}
}
