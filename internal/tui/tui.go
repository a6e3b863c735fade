package tui

import (
	"context"
	"fmt"

	"droidswitch/config"
	"droidswitch/internal/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// Run starts the provider menu and blocks until the user quits. The menu
// reloads whenever the config file changes on disk.
func Run(ctx context.Context, manager *config.Manager, log logrus.FieldLogger) error {
	if !utils.IsTerminal() {
		return fmt.Errorf("the menu requires a terminal, use the subcommands for non-interactive mode")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(ctx, manager)

	w, err := newWatcher(manager.Store().Path(), log)
	if err != nil {
		log.Warnf("failed to watch config file: %v", err)
	} else {
		defer w.Close()
		m.watcher = w
	}

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}

	p := tea.NewProgram(m, opts...)
	_, err = p.Run()
	return err
}
