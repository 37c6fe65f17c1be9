package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/repositories"
	"github.com/urfave/cli/v3"
)

// statusPayload is the JSON shape of the status command output.
type statusPayload struct {
	LastRunAt string         `json:"last_run_at,omitempty"`
	Due       bool           `json:"due"`
	Creators  int            `json:"creators"`
	Videos    map[string]int `json:"videos_by_platform"`
}

// Status reports the last sync time and stored video counts per platform.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ownerID := r.config.Sync.OwnerID

	lastRun, err := repositories.NewStateRepository(db).LastRunAt(ownerID)
	if err != nil {
		return fmt.Errorf("failed to read sync state: %w", err)
	}

	creators, err := repositories.NewCreatorRepository(db).ListTracked(ownerID)
	if err != nil {
		return fmt.Errorf("failed to list creators: %w", err)
	}

	counts, err := repositories.NewVideoRepository(db).CountByPlatform(ownerID)
	if err != nil {
		return fmt.Errorf("failed to count videos: %w", err)
	}

	interval := time.Duration(r.config.Sync.IntervalHours) * time.Hour
	due := lastRun.IsZero() || !time.Now().Before(lastRun.Add(interval))

	if useJSON {
		payload := statusPayload{
			Due:      due,
			Creators: len(creators),
			Videos:   counts,
		}
		if !lastRun.IsZero() {
			payload.LastRunAt = lastRun.Format(time.RFC3339)
		}
		return r.writeJSON(payload, cmd.Bool("pretty"))
	}

	r.writePlainHeader("uptrack status")
	if lastRun.IsZero() {
		r.writePlain("Last sync: never\n")
	} else {
		r.writePlain("Last sync: %s\n", lastRun.Format(time.RFC822))
	}
	if due {
		r.writePlain("Next sync: due now\n")
	} else {
		r.writePlain("Next sync: %s\n", lastRun.Add(interval).Format(time.RFC822))
	}
	r.writePlain("Tracked creators: %d\n", len(creators))
	r.writePlain("Stored videos: %d bilibili / %d youtube\n",
		counts[models.PlatformBilibili], counts[models.PlatformYouTube])
	return nil
}

// statusCommand reports sync state
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show last sync time and stored video counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Status,
	}
}
