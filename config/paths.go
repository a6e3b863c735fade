package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDirName is the directory under the home directory holding our state
const AppDirName = ".factory-ai-droid-switch"

// Paths locates every file the tool reads or writes
type Paths struct {
	Home string

	// AppConfig is the provider store
	AppConfig string

	// FactoryDir and the files under it belong to the droid CLI
	FactoryDir    string
	FactoryConfig string
	Settings      string
	AgentsMD      string
	Prompts       string
}

// NewPaths derives all locations from a home directory
func NewPaths(home string) Paths {
	factory := filepath.Join(home, ".factory")
	return Paths{
		Home:          home,
		AppConfig:     filepath.Join(home, AppDirName, "config.json"),
		FactoryDir:    factory,
		FactoryConfig: filepath.Join(factory, "config.json"),
		Settings:      filepath.Join(factory, "settings.json"),
		AgentsMD:      filepath.Join(factory, "AGENTS.md"),
		Prompts:       filepath.Join(factory, "prompts.json"),
	}
}

// DefaultPaths uses the current user's home directory, or home if non-empty
func DefaultPaths(home string) (Paths, error) {
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("failed to get user home directory: %w", err)
		}
	}
	return NewPaths(home), nil
}
