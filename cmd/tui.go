package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/uptrack/internal/repositories"
	"github.com/desertthunder/uptrack/internal/shared"
	"github.com/desertthunder/uptrack/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs a sync with a live progress view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	creators, err := repositories.NewCreatorRepository(db).ListTracked(r.config.Sync.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to list creators: %w", err)
	}
	if len(creators) == 0 {
		return fmt.Errorf("%w: add one with 'uptrack creators add <platform> <id>'", shared.ErrNoCreators)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/uptrack-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.newEngine(db, 0), creators)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand launches the interactive sync view
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Run a sync with a live progress view",
		Action: r.TUI,
	}
}
