package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/shared"
	"github.com/desertthunder/uptrack/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SyncView ViewState = iota
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.Engine
	creators     []*models.Creator
	width        int
	height       int
	spin         spinner.Model
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	cancelled    atomic.Bool
	result       *tasks.SyncResult
	err          error
	help         help.Model
	keys         keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	result *tasks.SyncResult
	err    error
}

// NewModel creates a new TUI model for a sync run over the given creators.
func NewModel(ctx context.Context, engine *tasks.Engine, creators []*models.Creator) *Model {
	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok))
	return &Model{
		ctx:      ctx,
		view:     SyncView,
		engine:   engine,
		creators: creators,
		spin:     spin,
		bar:      progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the sync run and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.startSync())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SyncView:
			return m.handleSyncKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c", "esc", "q", "ctrl+c":
		// Cooperative cancel: in-flight fetches drain and the result view
		// appears once everything fetched so far has been written.
		m.cancelled.Store(true)
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.RunSync(m.ctx, m.creators, m.progressChan, m.cancelled.Load)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing creators")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPhase:
		phase = fmt.Sprintf("Fetching uploads (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.DedupePhase:
		phase = "Checking fetched items against the store..."
	case tasks.WritePhase:
		phase = "Writing new videos..."
	default:
		phase = "Starting..."
	}

	var bar string
	if m.progress.Phase == tasks.FetchPhase && m.progress.Total > 0 {
		bar = m.bar.ViewAs(float64(m.progress.Step) / float64(m.progress.Total))
	}

	status := ""
	if m.cancelled.Load() {
		status = styles.warn.Render("Cancelling; letting in-flight fetches finish...")
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n\n%s %s\n%s\n%s\n%s\n\n%s",
		title, m.spin.View(), phase, bar, m.progress.Message, status, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	var title string
	switch {
	case !m.result.Success:
		title = styles.err.Render("✗ " + m.result.Message)
	case m.result.Cancelled:
		title = styles.warn.Render("◦ " + m.result.Message)
	default:
		title = styles.ok.Render("✓ " + m.result.Message)
	}

	info := fmt.Sprintf("\nCreators synced: %d\nNew videos: %d",
		m.result.CreatorsSynced, m.result.ItemsAdded)
	if m.result.CreatorsFailed > 0 {
		info += fmt.Sprintf("\nCreators failed: %d", m.result.CreatorsFailed)
	}
	if m.result.RateLimitHits > 0 {
		info += fmt.Sprintf("\nRate limit hits: %d", m.result.RateLimitHits)
	}

	var sample string
	if len(m.result.SampleNewItems) > 0 {
		sample = "\n\nNew uploads:"
		for _, item := range m.result.SampleNewItems {
			sample += fmt.Sprintf("\n  • [%s] %s [%s]",
				item.Platform, item.Title, shared.FormatDuration(item.Duration))
		}
	}

	return fmt.Sprintf("%s%s%s\n\n%s", title, info, sample,
		styles.help.Render("press q to quit"))
}
