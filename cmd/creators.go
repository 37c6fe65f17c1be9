package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/repositories"
	"github.com/desertthunder/uptrack/internal/shared"
	"github.com/urfave/cli/v3"
)

// creatorPayload is the JSON shape of one tracked creator.
type creatorPayload struct {
	Platform    string `json:"platform"`
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
	Added       string `json:"added"`
}

// CreatorsAdd starts tracking a creator on the given platform.
func (r *Runner) CreatorsAdd(ctx context.Context, cmd *cli.Command) error {
	platform := cmd.StringArg("platform")
	externalID := cmd.StringArg("id")
	name := cmd.String("name")

	if platform == "" || externalID == "" {
		return fmt.Errorf("%w: usage: uptrack creators add <platform> <id>", shared.ErrMissingArgument)
	}
	if !models.KnownPlatform(platform) {
		return fmt.Errorf("%w: unknown platform %q (must be %q or %q)",
			shared.ErrInvalidInput, platform, models.PlatformBilibili, models.PlatformYouTube)
	}
	if name == "" {
		name = externalID
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewCreatorRepository(db)
	creator := models.NewCreator(r.config.Sync.OwnerID, platform, name, externalID)
	if err := repo.Create(creator); err != nil {
		return fmt.Errorf("failed to track creator: %w", err)
	}

	r.logger.Info("creator tracked", "platform", platform, "id", externalID)
	r.writePlain("✓ Now tracking %s (%s) on %s\n", creator.DisplayName, externalID, platform)
	return nil
}

// CreatorsList lists all tracked creators.
func (r *Runner) CreatorsList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewCreatorRepository(db)
	creators, err := repo.ListTracked(r.config.Sync.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to list creators: %w", err)
	}

	if useJSON {
		payload := make([]creatorPayload, 0, len(creators))
		for _, c := range creators {
			payload = append(payload, creatorPayload{
				Platform:    c.Platform,
				ExternalID:  c.ExternalID,
				DisplayName: c.DisplayName,
				Added:       c.Created.Format("2006-01-02"),
			})
		}
		return r.writeJSON(payload, cmd.Bool("pretty"))
	}

	if len(creators) == 0 {
		r.writePlain("No tracked creators. Add one with 'uptrack creators add <platform> <id>'\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Tracked creators (%d)", len(creators)))
	for i, c := range creators {
		r.writePlain("%d. [%s] %s (%s)\n", i+1, c.Platform, c.DisplayName, c.ExternalID)
	}
	return nil
}

// CreatorsRemove stops tracking a creator. The row is soft-deleted; already
// synced videos stay in the store.
func (r *Runner) CreatorsRemove(ctx context.Context, cmd *cli.Command) error {
	platform := cmd.StringArg("platform")
	externalID := cmd.StringArg("id")

	if platform == "" || externalID == "" {
		return fmt.Errorf("%w: usage: uptrack creators remove <platform> <id>", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewCreatorRepository(db)
	creator, err := repo.GetByExternalID(r.config.Sync.OwnerID, platform, externalID)
	if err != nil {
		return fmt.Errorf("%w: %s on %s", shared.ErrCreatorNotFound, externalID, platform)
	}

	if err := repo.Delete(creator.RowID); err != nil {
		return fmt.Errorf("failed to untrack creator: %w", err)
	}

	r.writePlain("✓ Stopped tracking %s (%s) on %s\n", creator.DisplayName, externalID, platform)
	return nil
}

// creatorsCommand handles tracked-creator management
func creatorsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "creators",
		Usage: "Manage tracked creators",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Track a creator (bilibili UID or youtube channel ID)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "platform",
					},
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name (defaults to the ID)",
					},
				},
				Action: r.CreatorsAdd,
			},
			{
				Name:  "list",
				Usage: "List tracked creators",
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
				Action: r.CreatorsList,
			},
			{
				Name:  "remove",
				Usage: "Stop tracking a creator",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "platform",
					},
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.CreatorsRemove,
			},
		},
	}
}
