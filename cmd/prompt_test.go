package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"droidswitch/config"
	"droidswitch/internal/prompts"
)

func TestPromptSetAndShow(t *testing.T) {
	home := t.TempDir()

	out := mustRun(t, home, "prompt", "show")
	if !strings.Contains(out, "No system prompt set") {
		t.Errorf("show output = %q", out)
	}

	if _, err := runCommand(t, home, "# Rules\n\nBe brief.\n", "prompt", "set"); err != nil {
		t.Fatalf("set: unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(home, ".factory", "AGENTS.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Rules\n\nBe brief.\n" {
		t.Errorf("AGENTS.md = %q", data)
	}

	out = mustRun(t, home, "prompt", "show", "--raw")
	if out != "# Rules\n\nBe brief.\n" {
		t.Errorf("show --raw output = %q", out)
	}

	out = mustRun(t, home, "prompt", "show")
	if !strings.Contains(out, "Be brief.") {
		t.Errorf("rendered output should contain the text: %q", out)
	}
}

func TestPromptEditPath(t *testing.T) {
	home := t.TempDir()
	out := mustRun(t, home, "prompt", "edit-path")
	if strings.TrimSpace(out) != filepath.Join(home, ".factory", "AGENTS.md") {
		t.Errorf("edit-path output = %q", out)
	}
}

func TestPromptTemplates(t *testing.T) {
	home := t.TempDir()

	out := mustRun(t, home, "prompt", "templates")
	for _, tmpl := range prompts.Recommended() {
		if !strings.Contains(out, tmpl.ID) {
			t.Errorf("templates output missing %s", tmpl.ID)
		}
	}

	out = mustRun(t, home, "prompt", "templates", "--category", "Go")
	if !strings.Contains(out, "go-backend") || strings.Contains(out, "rust-dev") {
		t.Errorf("category filter output = %q", out)
	}

	if _, err := runCommand(t, home, "", "prompt", "templates", "missing"); err == nil {
		t.Error("an unknown template id should fail")
	}
}

func TestPromptApply(t *testing.T) {
	home := t.TempDir()

	out := mustRun(t, home, "prompt", "apply", "go-backend")
	if !strings.Contains(out, "Applied template") {
		t.Errorf("apply output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(home, ".factory", "AGENTS.md"))
	if err != nil {
		t.Fatal(err)
	}
	var want string
	for _, tmpl := range prompts.Recommended() {
		if tmpl.ID == "go-backend" {
			want = tmpl.Content
		}
	}
	if string(data) != want {
		t.Error("AGENTS.md should hold the template content")
	}

	out = mustRun(t, home, "prompt", "templates")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "go-backend") && !strings.HasPrefix(line, "*") {
			t.Errorf("applied template should be marked active: %q", line)
		}
	}
}

func TestPromptAddRemove(t *testing.T) {
	home := t.TempDir()

	out, err := runCommand(t, home, "Always write tests.", "prompt", "add", "Testing", "-d", "tests first", "-c", "Workflow")
	if err != nil {
		t.Fatalf("add: unexpected error: %v", err)
	}
	start := strings.Index(out, "(custom-")
	if start < 0 {
		t.Fatalf("add output should contain the id: %q", out)
	}
	id := strings.TrimSuffix(strings.Fields(out[start+1:])[0], ")")

	out = mustRun(t, home, "prompt", "templates")
	if !strings.Contains(out, id) || !strings.Contains(out, "Workflow custom") {
		t.Errorf("templates output = %q", out)
	}

	mustRun(t, home, "prompt", "rm", id)
	if out = mustRun(t, home, "prompt", "templates"); strings.Contains(out, id) {
		t.Error("removed template should no longer be listed")
	}

	_, err = runCommand(t, home, "", "prompt", "remove", "go-backend")
	if !errors.Is(err, config.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for a recommended template", err)
	}
}
