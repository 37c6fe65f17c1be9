package tasks

import (
	"fmt"

	"github.com/desertthunder/uptrack/internal/models"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPhase Phase = iota
	DedupePhase
	WritePhase
	DonePhase
)

func (p Phase) String() string {
	switch p {
	case FetchPhase:
		return "fetch"
	case DedupePhase:
		return "dedupe"
	case WritePhase:
		return "write"
	case DonePhase:
		return "done"
	default:
		return ""
	}
}

func fetchStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPhase,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching recent uploads for %d creators...", total),
	}
}

func creatorDoneUpdate(step, total int, creator *models.Creator, err error) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] %s", step, total, creator.DisplayName)
	if err != nil {
		msg = fmt.Sprintf("[%d/%d] %s: %v", step, total, creator.DisplayName, err)
	}
	return ProgressUpdate{
		Phase:   FetchPhase,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    creator,
	}
}

func dedupeUpdate(fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DedupePhase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking %d fetched items against the store...", fetched),
	}
}

func writeStartUpdate(batches int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WritePhase,
		Step:    0,
		Total:   batches,
		Message: fmt.Sprintf("Writing %d batches...", batches),
	}
}

func doneUpdate(result *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DonePhase,
		Step:    1,
		Total:   1,
		Message: result.Message,
		Data:    result,
	}
}
