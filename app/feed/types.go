package feed

import (
	"fmt"
)

// RawEntry is a normalized feed entry. Optional fields use explicit
// absent-values: an empty ImageURL means the feed carried no inline image,
// and nil Points/Comments mean the feed format supplied no engagement data.
type RawEntry struct {
	Title    string
	Link     string
	ImageURL string
	Points   *int
	Comments *int
	Rank     int // 1-based position in the feed
}

// FetchError is a source-scoped recoverable failure: the feed was
// unreachable, answered non-2xx, or yielded no parseable entries. It is
// recorded in the source's scrape status and the run continues.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
