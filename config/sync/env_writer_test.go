package sync

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"droidswitch/internal/shell"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tidwall/gjson"
)

type fakeIntegration struct {
	rcPath     string
	persisted  []string
	persistErr error
}

func (f *fakeIntegration) Name() string { return "fake" }

func (f *fakeIntegration) Targets() []shell.Target {
	return []shell.Target{{Path: f.rcPath, Template: shell.PosixTemplate}}
}

func (f *fakeIntegration) SideEffects() []shell.SideEffect { return nil }

func (f *fakeIntegration) PersistKey(key string) error {
	f.persisted = append(f.persisted, key)
	return f.persistErr
}

func setupEnvWriter(t *testing.T) (*EnvWriter, *fakeIntegration, *test.Hook, string) {
	t.Helper()
	dir := t.TempDir()
	rc := filepath.Join(dir, ".zshrc")
	if err := os.WriteFile(rc, []byte("# rc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	fake := &fakeIntegration{rcPath: rc}
	path := filepath.Join(dir, ".factory", "config.json")
	return NewEnvWriter(path, shell.NewPatcher(fake), logger), fake, hook, path
}

func TestSetAPIKeyCreatesFile(t *testing.T) {
	w, fake, _, path := setupEnvWriter(t)

	if err := w.SetAPIKey("fk-first"); err != nil {
		t.Fatalf("SetAPIKey() unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(data, "api_key").String(); got != "fk-first" {
		t.Errorf("api_key = %q, want fk-first", got)
	}
	if len(fake.persisted) != 1 || fake.persisted[0] != "fk-first" {
		t.Errorf("PersistKey calls = %v", fake.persisted)
	}

	rc, _ := os.ReadFile(fake.rcPath)
	if !strings.Contains(string(rc), shell.DefaultMarkers.Start) {
		t.Error("wrapper was not installed into the rc file")
	}
}

func TestSetAPIKeyPreservesOtherFields(t *testing.T) {
	w, _, _, path := setupEnvWriter(t)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"api_key":"fk-old","org":"acme","nested":{"x":1}}`), 0600); err != nil {
		t.Fatal(err)
	}

	if err := w.SetAPIKey("fk-new"); err != nil {
		t.Fatalf("SetAPIKey() unexpected error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if gjson.GetBytes(data, "api_key").String() != "fk-new" {
		t.Errorf("api_key not updated: %s", data)
	}
	if gjson.GetBytes(data, "org").String() != "acme" || gjson.GetBytes(data, "nested.x").Int() != 1 {
		t.Errorf("other fields changed: %s", data)
	}
}

func TestSetAPIKeyReplacesInvalidJSON(t *testing.T) {
	w, _, hook, path := setupEnvWriter(t)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := w.SetAPIKey("fk-new"); err != nil {
		t.Fatalf("SetAPIKey() unexpected error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if gjson.GetBytes(data, "api_key").String() != "fk-new" {
		t.Errorf("api_key = %s", data)
	}
	if !hasWarning(hook, "not a JSON object") {
		t.Error("expected a warning about the invalid env config")
	}
}

func TestSetAPIKeySwallowsPlatformFailures(t *testing.T) {
	w, fake, hook, _ := setupEnvWriter(t)
	fake.persistErr = errors.New("registry unavailable")
	fake.rcPath = filepath.Join(t.TempDir(), ".zshrc")
	if err := os.WriteFile(fake.rcPath, []byte("x\n"+shell.DefaultMarkers.Start+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := w.SetAPIKey("fk-key"); err != nil {
		t.Fatalf("SetAPIKey() returned platform failure: %v", err)
	}
	if !hasWarning(hook, "failed to persist FACTORY_API_KEY") {
		t.Error("PersistKey failure was not logged")
	}
	if !hasWarning(hook, "failed to install wrapper") {
		t.Error("wrapper failure was not logged")
	}
}

func TestClearAPIKey(t *testing.T) {
	w, fake, _, path := setupEnvWriter(t)
	if err := w.SetAPIKey("fk-key"); err != nil {
		t.Fatal(err)
	}

	if err := w.ClearAPIKey(); err != nil {
		t.Fatalf("ClearAPIKey() unexpected error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if gjson.GetBytes(data, "api_key").Exists() {
		t.Errorf("api_key still present: %s", data)
	}
	if last := fake.persisted[len(fake.persisted)-1]; last != "" {
		t.Errorf("last PersistKey value = %q, want empty", last)
	}

	key, err := w.APIKey()
	if err != nil || key != "" {
		t.Errorf("APIKey() = %q, %v; want empty", key, err)
	}
}

func TestClearAPIKeyMissingFile(t *testing.T) {
	w, fake, _, path := setupEnvWriter(t)
	if err := w.ClearAPIKey(); err != nil {
		t.Fatalf("ClearAPIKey() unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("ClearAPIKey() created the env config")
	}

	rc, _ := os.ReadFile(fake.rcPath)
	if !strings.Contains(string(rc), shell.DefaultMarkers.Start) {
		t.Error("ClearAPIKey() did not install the wrapper")
	}
}

func TestClearAPIKeySwallowsWrapperFailure(t *testing.T) {
	w, fake, hook, _ := setupEnvWriter(t)
	fake.rcPath = filepath.Join(t.TempDir(), ".zshrc")
	if err := os.WriteFile(fake.rcPath, []byte("x\n"+shell.DefaultMarkers.Start+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := w.ClearAPIKey(); err != nil {
		t.Fatalf("ClearAPIKey() unexpected error: %v", err)
	}
	if !hasWarning(hook, "failed to install wrapper") {
		t.Error("wrapper failure was not logged")
	}
}

func TestEnvWriterWithoutPatcher(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "config.json")
	w := NewEnvWriter(path, nil, logger)

	if err := w.SetAPIKey("fk-solo"); err != nil {
		t.Fatal(err)
	}
	key, err := w.APIKey()
	if err != nil || key != "fk-solo" {
		t.Errorf("APIKey() = %q, %v", key, err)
	}
}

func hasWarning(hook *test.Hook, substr string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
