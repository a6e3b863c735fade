package shell

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Target is one file the wrapper is installed into
type Target struct {
	Path     string
	Template *Template

	// Owned files belong to this tool: they are created when missing and
	// their whole content is the block.
	Owned bool

	// CreateIn, when set, allows creating a missing file as long as this
	// directory exists.
	CreateIn string
}

// SideEffect is a best-effort step run after the targets are patched
type SideEffect struct {
	Name string
	Run  func() error
}

// Integration describes how one OS family picks up the active key
type Integration interface {
	Name() string
	Targets() []Target
	SideEffects() []SideEffect
	// PersistKey mirrors key into the user's persistent environment.
	// An empty key removes it.
	PersistKey(key string) error
}

// ForPlatform returns the integration for goos rooted at home
func ForPlatform(goos, home string) Integration {
	if goos == "windows" {
		return newWindowsIntegration(home)
	}
	return &posixIntegration{home: home}
}

// ForCurrentOS returns the integration for the running OS
func ForCurrentOS(home string) Integration {
	return ForPlatform(runtime.GOOS, home)
}

type posixIntegration struct {
	home string
}

func (p *posixIntegration) Name() string { return "posix" }

func (p *posixIntegration) Targets() []Target {
	return []Target{
		{Path: filepath.Join(p.home, ".zshrc"), Template: PosixTemplate},
		{Path: filepath.Join(p.home, ".bashrc"), Template: PosixTemplate},
	}
}

func (p *posixIntegration) SideEffects() []SideEffect { return nil }

// PersistKey is a no-op: the shell function reads the key file on each call
func (p *posixIntegration) PersistKey(string) error { return nil }

type windowsIntegration struct {
	home        string
	setUserEnv  func(name, value string) error
	prependPath func(dir string) error
}

func newWindowsIntegration(home string) *windowsIntegration {
	return &windowsIntegration{
		home:        home,
		setUserEnv:  setUserEnv,
		prependPath: prependUserPath,
	}
}

func (w *windowsIntegration) Name() string { return "windows" }

func (w *windowsIntegration) binDir() string {
	return filepath.Join(w.home, ".factory", "bin")
}

func (w *windowsIntegration) Targets() []Target {
	docs := filepath.Join(w.home, "Documents")
	return []Target{
		{
			Path:     filepath.Join(docs, "WindowsPowerShell", "Microsoft.PowerShell_profile.ps1"),
			Template: PowerShellTemplate,
			CreateIn: docs,
		},
		{
			Path:     filepath.Join(docs, "PowerShell", "Microsoft.PowerShell_profile.ps1"),
			Template: PowerShellTemplate,
			CreateIn: docs,
		},
		{
			Path:     filepath.Join(w.binDir(), "droid.cmd"),
			Template: BatchTemplate,
			Owned:    true,
		},
	}
}

func (w *windowsIntegration) SideEffects() []SideEffect {
	return []SideEffect{
		{
			Name: "add " + w.binDir() + " to user PATH",
			Run:  func() error { return w.prependPath(w.binDir()) },
		},
	}
}

func (w *windowsIntegration) PersistKey(key string) error {
	return w.setUserEnv("FACTORY_API_KEY", key)
}

// pathListContains reports whether a ;-separated PATH value already names
// dir, comparing case-insensitively and expanding %USERPROFILE%.
func pathListContains(pathList, dir string) bool {
	want := normalizePathEntry(dir)
	profile := os.Getenv("USERPROFILE")
	for _, entry := range strings.Split(pathList, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if profile != "" {
			entry = replaceFold(entry, "%USERPROFILE%", profile)
		}
		if normalizePathEntry(entry) == want {
			return true
		}
	}
	return false
}

func normalizePathEntry(p string) string {
	p = strings.ReplaceAll(p, "/", `\`)
	p = strings.TrimRight(p, `\`)
	return strings.ToLower(p)
}

func replaceFold(s, old, repl string) string {
	i := strings.Index(strings.ToLower(s), strings.ToLower(old))
	if i < 0 {
		return s
	}
	return s[:i] + repl + s[i+len(old):]
}
