package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Resolver fetches article pages and extracts a representative image URL.
// Resolution failures are never fatal: callers treat an empty result as
// "leave the image unset".
type Resolver struct {
	client    *http.Client
	userAgent string
}

func NewResolver(client *http.Client, userAgent string) *Resolver {
	return &Resolver{
		client:    client,
		userAgent: userAgent,
	}
}

// Resolve fetches the article page and tries, in order, the og:image meta
// tag and the first inline image element. Returns "" when neither is
// present or the fetch fails.
func (r *Resolver) Resolve(ctx context.Context, articleURL string) string {
	doc, err := r.fetchDocument(ctx, articleURL)
	if err != nil {
		slog.Debug("Image resolution failed", "url", articleURL, "error", err)
		return ""
	}

	if content, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && content != "" {
		return content
	}

	if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
		return src
	}

	return ""
}

func (r *Resolver) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}
