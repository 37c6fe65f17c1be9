package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/uptrack/internal/platforms"
	"github.com/desertthunder/uptrack/internal/tasks"
)

func testModel() *Model {
	return NewModel(context.Background(), nil, nil)
}

func TestModel_RenderSync(t *testing.T) {
	m := testModel()
	m.progress = tasks.ProgressUpdate{Phase: tasks.FetchPhase, Step: 2, Total: 5, Message: "[2/5] some uploader"}

	view := m.View()
	if !strings.Contains(view, "Fetching uploads (2/5)") {
		t.Errorf("sync view missing phase line:\n%s", view)
	}
	if !strings.Contains(view, "[2/5] some uploader") {
		t.Errorf("sync view missing progress message:\n%s", view)
	}
}

func TestModel_RenderSyncPhases(t *testing.T) {
	tests := []struct {
		phase tasks.Phase
		want  string
	}{
		{tasks.DedupePhase, "Checking fetched items"},
		{tasks.WritePhase, "Writing new videos"},
	}

	for _, tt := range tests {
		m := testModel()
		m.progress = tasks.ProgressUpdate{Phase: tt.phase}
		if view := m.View(); !strings.Contains(view, tt.want) {
			t.Errorf("phase %v view missing %q:\n%s", tt.phase, tt.want, view)
		}
	}
}

func TestModel_CancelKeyFlipsSwitch(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m = updated.(*Model)

	if !m.cancelled.Load() {
		t.Error("pressing c should request cancellation")
	}
	if view := m.View(); !strings.Contains(view, "Cancelling") {
		t.Errorf("sync view missing cancel notice:\n%s", view)
	}
}

func TestModel_SyncCompleteShowsResult(t *testing.T) {
	m := testModel()

	result := &tasks.SyncResult{
		Success:        true,
		Message:        "Synced 3/3 creators; 4 new videos",
		ItemsAdded:     4,
		CreatorsSynced: 3,
		SampleNewItems: []platforms.FetchedItem{
			{Platform: "bilibili", Title: "first upload", Duration: 754},
		},
	}

	updated, _ := m.Update(syncCompleteMsg{result: result})
	m = updated.(*Model)

	if m.view != ResultView {
		t.Fatalf("view = %v, want ResultView", m.view)
	}

	view := m.View()
	for _, want := range []string{"Synced 3/3 creators", "New videos: 4", "first upload", "12:34"} {
		if !strings.Contains(view, want) {
			t.Errorf("result view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_ResultViewQuit(t *testing.T) {
	m := testModel()
	m.view = ResultView
	m.result = &tasks.SyncResult{Success: true, Message: "done"}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q on the result view should quit")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("expected tea.Quit, got %T", msg)
	}
}

func TestModel_BlockedResult(t *testing.T) {
	m := testModel()
	m.view = ResultView
	m.result = &tasks.SyncResult{
		Success: false,
		Message: "Sync aborted: platform access blocked (risk control); try again later",
	}

	if view := m.View(); !strings.Contains(view, "blocked") {
		t.Errorf("result view missing block message:\n%s", view)
	}
}
