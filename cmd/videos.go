package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/uptrack/internal/formatter"
	"github.com/desertthunder/uptrack/internal/repositories"
	"github.com/desertthunder/uptrack/internal/shared"
	"github.com/urfave/cli/v3"
)

// VideosList prints the most recently published stored videos.
func (r *Runner) VideosList(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	videos, err := repositories.NewVideoRepository(db).ListRecent(r.config.Sync.OwnerID, limit)
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	if len(videos) == 0 {
		r.writePlain("No stored videos yet. Run 'uptrack sync' first.\n")
		return nil
	}

	r.writePlain("%s", formatter.ExportToText(videos))
	return nil
}

// VideosExport writes stored videos to a CSV, Markdown, or plain text file.
func (r *Runner) VideosExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")
	limit := int(cmd.Int("limit"))

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ownerID := r.config.Sync.OwnerID
	videos, err := repositories.NewVideoRepository(db).ListRecent(ownerID, limit)
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	switch format {
	case "csv":
		path, err := formatter.WriteCSVExport(ownerID, videos, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d videos to %s\n", len(videos), path)
	case "markdown", "md":
		var coverURL string
		if len(videos) > 0 {
			coverURL = videos[0].ThumbnailURL
		}
		result, err := formatter.WriteMarkdownExport(ownerID, videos, output, coverURL)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d videos to %s\n", len(videos), result.Directory)
	case "text", "txt":
		path, err := formatter.WriteTextExport(ownerID, videos, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d videos to %s\n", len(videos), path)
	default:
		return fmt.Errorf("%w: unknown format %q (must be csv, markdown, or text)", shared.ErrInvalidFlag, format)
	}

	return nil
}

// videosCommand handles stored-video listing and export
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "videos",
		Usage: "List and export stored videos",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recently published stored videos",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of videos to return",
						Value: 25,
					},
				},
				Action: r.VideosList,
			},
			{
				Name:  "export",
				Usage: "Export stored videos to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (csv, markdown, text)",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path (defaults derive from the owner ID)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of videos to export",
						Value: 200,
					},
				},
				Action: r.VideosExport,
			},
		},
	}
}
