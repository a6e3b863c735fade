package sync

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestUpdateFields(t *testing.T) {
	original := `{"api_key":"fk-old","telemetry":{"enabled":false},"list":[1,2]}`

	updated, err := UpdateFields(original, map[string]interface{}{"api_key": "fk-new"}, nil)
	if err != nil {
		t.Fatalf("UpdateFields() unexpected error: %v", err)
	}
	if got := gjson.Get(updated, "api_key").String(); got != "fk-new" {
		t.Errorf("api_key = %q, want fk-new", got)
	}
	if gjson.Get(updated, "telemetry.enabled").Bool() || gjson.Get(updated, "list.#").Int() != 2 {
		t.Errorf("other fields changed: %s", updated)
	}

	removed, err := UpdateFields(updated, nil, []string{"api_key"})
	if err != nil {
		t.Fatalf("UpdateFields() delete error: %v", err)
	}
	if gjson.Get(removed, "api_key").Exists() {
		t.Error("api_key still present after delete")
	}
	if !gjson.Get(removed, "telemetry").Exists() {
		t.Error("telemetry lost after delete")
	}
}

func TestUpdateFieldsEmptyContent(t *testing.T) {
	updated, err := UpdateFields("", map[string]interface{}{"model": "glm-4.6"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if gjson.Get(updated, "model").String() != "glm-4.6" {
		t.Errorf("unexpected result %s", updated)
	}
}

func TestUpdateFieldsRejectsNonObject(t *testing.T) {
	for _, input := range []string{`[1,2]`, `"str"`, `{broken`} {
		if _, err := UpdateFields(input, map[string]interface{}{"a": 1}, nil); err == nil {
			t.Errorf("UpdateFields(%q) expected error", input)
		}
	}
}

func TestUpdateFieldsDottedKey(t *testing.T) {
	updated, err := UpdateFields(`{}`, map[string]interface{}{"a.b": "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if gjson.Get(updated, `a\.b`).String() != "x" {
		t.Errorf("dotted key not set literally: %s", updated)
	}
}

func TestDeepCompare(t *testing.T) {
	original := map[string]interface{}{"a": 1.0, "n": map[string]interface{}{"x": "y"}, "gone": true}
	updated := map[string]interface{}{"a": 2.0, "n": map[string]interface{}{"x": "z"}, "new": true}

	diffs := deepCompare(original, updated, map[string]bool{"a": true})
	want := []string{"gone (missing)", "n.x", "new (new)"}
	if len(diffs) != len(want) {
		t.Fatalf("deepCompare() = %v, want %v", diffs, want)
	}
	for i := range want {
		if diffs[i] != want[i] {
			t.Errorf("deepCompare()[%d] = %q, want %q", i, diffs[i], want[i])
		}
	}
}
