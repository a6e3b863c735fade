package sync

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// UpdateFields sets and deletes top-level keys of a JSON object while
// leaving every other key untouched. The result is pretty-printed.
func UpdateFields(originalContent string, set map[string]interface{}, remove []string) (string, error) {
	if strings.TrimSpace(originalContent) == "" {
		originalContent = "{}"
	}
	if !gjson.Valid(originalContent) || !gjson.Parse(originalContent).IsObject() {
		return "", fmt.Errorf("content is not a JSON object")
	}

	updated := originalContent
	var err error

	// Sorted so repeated updates produce the same key order.
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		updated, err = sjson.Set(updated, escapePath(key), set[key])
		if err != nil {
			return "", fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	for _, key := range remove {
		updated, err = sjson.Delete(updated, escapePath(key))
		if err != nil {
			return "", fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	touched := append(keys, remove...)
	if err := validateFieldUpdate(originalContent, updated, touched); err != nil {
		return "", fmt.Errorf("update validation failed: %w", err)
	}

	return string(pretty.Pretty([]byte(updated))), nil
}

// escapePath makes a key safe to use as a literal sjson path
func escapePath(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// validateFieldUpdate checks that only the touched keys differ
func validateFieldUpdate(originalContent, updatedContent string, touched []string) error {
	if !json.Valid([]byte(updatedContent)) {
		return fmt.Errorf("updated JSON is invalid")
	}

	original, updated, err := parseToMaps(originalContent, updatedContent)
	if err != nil {
		return err
	}

	skip := make(map[string]bool, len(touched))
	for _, k := range touched {
		skip[k] = true
	}

	differences := deepCompare(original, updated, skip)
	if len(differences) > 0 {
		return fmt.Errorf("unexpected changes to other fields: %s", strings.Join(differences, ", "))
	}
	return nil
}

// parseToMaps parses two JSON strings to maps for deep comparison
func parseToMaps(originalStr, updatedStr string) (map[string]interface{}, map[string]interface{}, error) {
	var original map[string]interface{}
	if err := json.Unmarshal([]byte(originalStr), &original); err != nil {
		return nil, nil, fmt.Errorf("failed to parse original JSON: %w", err)
	}

	var updated map[string]interface{}
	if err := json.Unmarshal([]byte(updatedStr), &updated); err != nil {
		return nil, nil, fmt.Errorf("failed to parse updated JSON: %w", err)
	}

	return original, updated, nil
}

// deepCompare lists the keys whose values differ, ignoring skipped keys
func deepCompare(original, updated map[string]interface{}, skip map[string]bool) []string {
	var differences []string

	for key, originalVal := range original {
		if skip[key] {
			continue
		}
		updatedVal, exists := updated[key]
		if !exists {
			differences = append(differences, key+" (missing)")
			continue
		}

		originalMap, originalIsMap := originalVal.(map[string]interface{})
		updatedMap, updatedIsMap := updatedVal.(map[string]interface{})
		if originalIsMap && updatedIsMap {
			for _, diff := range deepCompare(originalMap, updatedMap, nil) {
				differences = append(differences, key+"."+diff)
			}
		} else if fmt.Sprintf("%v", originalVal) != fmt.Sprintf("%v", updatedVal) {
			differences = append(differences, key)
		}
	}

	for key := range updated {
		if skip[key] {
			continue
		}
		if _, exists := original[key]; !exists {
			differences = append(differences, key+" (new)")
		}
	}

	sort.Strings(differences)
	return differences
}
