// package formatter renders sync results and video listings for the CLI (plain text, JSON, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/shared"
	"github.com/desertthunder/uptrack/internal/tasks"
)

// ResultText renders a SyncResult as a plain text summary block.
func ResultText(result *tasks.SyncResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", result.Message))
	buf.WriteString(fmt.Sprintf("Creators synced: %d\n", result.CreatorsSynced))
	if result.CreatorsFailed > 0 {
		buf.WriteString(fmt.Sprintf("Creators failed: %d\n", result.CreatorsFailed))
	}
	if result.RateLimitHits > 0 {
		buf.WriteString(fmt.Sprintf("Rate limit hits: %d\n", result.RateLimitHits))
	}
	buf.WriteString(fmt.Sprintf("New videos: %d\n", result.ItemsAdded))

	if len(result.SampleNewItems) > 0 {
		buf.WriteString("\nNew uploads:\n")
		for i, item := range result.SampleNewItems {
			buf.WriteString(fmt.Sprintf("%d. [%s] %s [%s]\n",
				i+1, item.Platform, item.Title, shared.FormatDuration(item.Duration)))
		}
		if result.ItemsAdded > len(result.SampleNewItems) {
			buf.WriteString(fmt.Sprintf("... and %d more\n", result.ItemsAdded-len(result.SampleNewItems)))
		}
	}

	return buf.Bytes()
}

// resultPayload is the JSON shape of a sync result.
type resultPayload struct {
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	Cancelled      bool          `json:"cancelled,omitempty"`
	ItemsAdded     int           `json:"items_added"`
	CreatorsSynced int           `json:"creators_synced"`
	CreatorsFailed int           `json:"creators_failed"`
	RateLimitHits  int           `json:"rate_limit_hits"`
	NewItems       []itemPayload `json:"new_items,omitempty"`
}

type itemPayload struct {
	VideoID     string    `json:"video_id"`
	Platform    string    `json:"platform"`
	Creator     string    `json:"creator_external_id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
	Duration    int       `json:"duration"`
	Views       int64     `json:"views"`
	Comments    int64     `json:"comments"`
}

// ResultJSON renders a SyncResult as indented JSON.
func ResultJSON(result *tasks.SyncResult) ([]byte, error) {
	payload := resultPayload{
		Success:        result.Success,
		Message:        result.Message,
		Cancelled:      result.Cancelled,
		ItemsAdded:     result.ItemsAdded,
		CreatorsSynced: result.CreatorsSynced,
		CreatorsFailed: result.CreatorsFailed,
		RateLimitHits:  result.RateLimitHits,
	}
	for _, item := range result.SampleNewItems {
		payload.NewItems = append(payload.NewItems, itemPayload{
			VideoID:     item.VideoID,
			Platform:    item.Platform,
			Creator:     item.CreatorExternalID,
			Title:       item.Title,
			PublishedAt: item.PublishedAt,
			Duration:    item.Duration,
			Views:       item.Views,
			Comments:    item.Comments,
		})
	}
	return json.MarshalIndent(payload, "", "  ")
}

// ExportToCSV converts videos to CSV format with columns: ID, Platform, Creator, Title, Published, Duration, Views, Comments
func ExportToCSV(videos []*models.Video) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Platform", "Creator", "Title", "Published", "Duration", "Views", "Comments"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, video := range videos {
		record := []string{
			video.VideoID,
			video.Platform,
			video.CreatorExternalID,
			video.Title,
			video.PublishedAt.Format(time.RFC3339),
			strconv.Itoa(video.Duration),
			strconv.FormatInt(video.Views, 10),
			strconv.FormatInt(video.Comments, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts videos to Markdown format with optional cover image
func ExportToMarkdown(title string, videos []*models.Video, imageFilename string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Videos**: %d\n\n", len(videos)))

	buf.WriteString("## Videos\n\n")
	for i, video := range videos {
		duration := shared.FormatDuration(video.Duration)
		buf.WriteString(fmt.Sprintf("%d. [%s] %s [%s] (%d views)\n",
			i+1, video.Platform, video.Title, duration, video.Views))
	}

	return buf.Bytes()
}

// ExportToText converts videos to plain text format
func ExportToText(videos []*models.Video) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Videos: %d\n\n", len(videos)))

	for i, video := range videos {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s - %s\n",
			i+1, video.Platform, video.CreatorExternalID, video.Title))
	}

	return buf.Bytes()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteCSVExport exports videos to a CSV file.
//
// Defaults to {owner}_videos.csv as the filename.
func WriteCSVExport(ownerID string, videos []*models.Video, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_videos.csv", ownerID)
	}

	csvData, err := ExportToCSV(videos)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports videos to Markdown format in a dedicated directory.
//
// Directory name defaults to the owner ID. The imageURL parameter is
// optional - if provided, attempts to download a cover thumbnail.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(ownerID string, videos []*models.Video, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = ownerID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData := ExportToMarkdown(fmt.Sprintf("Tracked uploads for %s", ownerID), videos, coverImageFilename)

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports videos to plain text format.
//
// Defaults to {owner}_videos.txt as the filename.
func WriteTextExport(ownerID string, videos []*models.Video, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_videos.txt", ownerID)
	}

	if err := os.WriteFile(filepath, ExportToText(videos), 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
