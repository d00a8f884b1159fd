package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Fetcher retrieves and parses RSS/Atom documents into normalized entries.
type Fetcher struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		client:    client,
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
	}
}

// Fetch downloads and parses the feed at feedURL. Any failure, including a
// parse that yields zero entries, is reported as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]RawEntry, error) {
	data, err := f.download(ctx, feedURL)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}

	parsed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: fmt.Errorf("failed to parse feed: %w", err)}
	}

	if len(parsed.Items) == 0 {
		return nil, &FetchError{URL: feedURL, Err: fmt.Errorf("no entries found")}
	}

	entries := make([]RawEntry, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, RawEntry{
			Title:    strings.TrimSpace(item.Title),
			Link:     strings.TrimSpace(item.Link),
			ImageURL: inlineImage(item),
			Points:   customInt(item, "points"),
			Comments: customInt(item, "comments"),
			Rank:     i + 1,
		})
	}

	return entries, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// inlineImage extracts the first inline image reference: a media:content URL
// first, then the first enclosure URL.
func inlineImage(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if url := content.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		return item.Enclosures[0].URL
	}

	return ""
}

// customInt reads an optional numeric element some feeds supply (e.g.
// points). Non-numeric values are treated as absent.
func customInt(item *gofeed.Item, key string) *int {
	raw, ok := item.Custom[key]
	if !ok {
		return nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &value
}
