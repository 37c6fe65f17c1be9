package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/desertthunder/uptrack/internal/formatter"
	"github.com/desertthunder/uptrack/internal/repositories"
	"github.com/desertthunder/uptrack/internal/shared"
	"github.com/desertthunder/uptrack/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync runs one sync pass over all tracked creators.
//
// Ctrl+C requests a cooperative cancel: no new fetches start, in-flight
// requests drain, and everything fetched so far is still written.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	auto := cmd.Bool("auto")
	concurrency := int(cmd.Int("concurrency"))

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ownerID := r.config.Sync.OwnerID
	states := repositories.NewStateRepository(db)

	if auto {
		lastRun, err := states.LastRunAt(ownerID)
		if err != nil {
			return fmt.Errorf("failed to read sync state: %w", err)
		}
		schedule := tasks.Schedule{
			LastRunAt: lastRun,
			Interval:  time.Duration(r.config.Sync.IntervalHours) * time.Hour,
		}
		if !schedule.Due(time.Now()) {
			r.logger.Info("skipping sync, interval not elapsed", "last_run", lastRun)
			r.writePlain("Synced recently (%s); skipping\n", lastRun.Format(time.RFC822))
			return nil
		}
	}

	creators, err := repositories.NewCreatorRepository(db).ListTracked(ownerID)
	if err != nil {
		return fmt.Errorf("failed to list creators: %w", err)
	}
	if len(creators) == 0 {
		return fmt.Errorf("%w: add one with 'uptrack creators add <platform> <id>'", shared.ErrNoCreators)
	}

	r.logger.Info("starting sync", "creators", len(creators))
	if !useJSON {
		r.writePlain("Syncing %d creators...\n\n", len(creators))
	}

	// Ctrl+C flips the cancel switch instead of killing the process.
	var cancelRequested atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		if _, ok := <-sigCh; ok {
			cancelRequested.Store(true)
			r.writePlain("\nCancelling; letting in-flight fetches finish...\n")
		}
	}()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			if useJSON {
				continue
			}
			switch update.Phase {
			case tasks.FetchPhase:
				if update.Step > 0 {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.DedupePhase, tasks.WritePhase:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	engine := r.newEngine(db, concurrency)
	result, err := engine.RunSync(ctx, creators, progressCh, cancelRequested.Load)
	close(progressCh)
	<-drained
	signal.Stop(sigCh)
	close(sigCh)

	if err != nil {
		return err
	}

	if result.Success {
		if err := states.MarkSynced(ownerID, time.Now()); err != nil {
			r.logger.Warn("failed to record sync time", "error", err)
		}
	}

	if useJSON {
		data, err := formatter.ResultJSON(result)
		if err != nil {
			return fmt.Errorf("failed to render result: %w", err)
		}
		return r.writePlain("%s\n", data)
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete")
	r.writePlain("%s", formatter.ResultText(result))
	return nil
}

// syncCommand handles sync runs
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Fetch and store today's uploads from all tracked creators",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "auto",
				Usage: "Only run if the sync interval has elapsed",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Concurrent Bilibili fetches (YouTube is always serial)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Sync,
	}
}
