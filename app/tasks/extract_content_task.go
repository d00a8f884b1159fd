package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lgavrilov/newspulse/app/content"
	"github.com/lgavrilov/newspulse/app/database"
)

const extractionBatchSize = 20

type ExtractContentTask struct {
	Task
	items      ExtractionStore
	extractor  *content.Extractor
	httpClient *http.Client
	userAgent  string
}

func NewExtractContentTask(items ExtractionStore, extractor *content.Extractor,
	httpClient *http.Client, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:       NewTask(TaskTypeExtractContent, "all"),
		items:      items,
		extractor:  extractor,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.items.ItemsForExtraction(ctx, extractionBatchSize)
	if err != nil {
		return fmt.Errorf("failed to get items for content extraction: %w", err)
	}

	if len(items) == 0 {
		slog.Debug("No items need content extraction")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.extractContentForItem(ctx, item); err != nil {
			slog.Error("Failed to extract content for item", "item_id", item.ID, "url", item.CanonicalURL, "error", err)
			errorCount++
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractContentForItem(ctx context.Context, item database.Item) error {
	if item.CanonicalURL == "" {
		return fmt.Errorf("item has no URL")
	}

	data, err := t.fetchArticleContent(ctx, item.CanonicalURL)
	if err != nil {
		return fmt.Errorf("failed to fetch article content: %w", err)
	}

	extracted, err := t.extractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	if err := t.items.UpdateContent(ctx, item.ID, extracted, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "item_id", item.ID, "url", item.CanonicalURL, "content_length", len(extracted))
	return nil
}

func (t *ExtractContentTask) fetchArticleContent(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
