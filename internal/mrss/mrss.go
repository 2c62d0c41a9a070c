// Package mrss sources candidates from a media-RSS feed as an
// alternative to the stock-media API.
package mrss

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"nature_poster/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source reads video candidates from a single curated feed. The feed
// is one logical page: the search term is ignored and any page past
// the first reports exhaustion.
type Source struct {
	client  HTTPClient
	feedURL string
}

// New creates a Source reading from the given feed URL.
func New(client HTTPClient, feedURL string) *Source {
	return &Source{client: client, feedURL: feedURL}
}

// Search fetches the feed and returns its video items as candidates.
func (s *Source) Search(ctx context.Context, _ string, page int) (*model.Page, error) {
	if page > 1 {
		return &model.Page{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "NaturePoster/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	p := &model.Page{}
	for _, item := range feed.Items {
		enc, ok := videoEnclosure(item)
		if !ok {
			continue
		}
		p.Candidates = append(p.Candidates, model.Candidate{
			SourceID:    itemGUID(item),
			Description: item.Title,
			Extension:   extensionFor(enc),
			MediaURL:    enc.URL,
			Permalink:   item.Link,
			SourceURL:   s.feedURL,
			DurationSec: itemDuration(item),
			Author:      itemAuthor(item),
		})
	}
	return p, nil
}

// itemGUID returns the GUID for a feed item.
// If the item has no GUID, a SHA-256 hash of title+link is used.
func itemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

func videoEnclosure(item *gofeed.Item) (*gofeed.Enclosure, bool) {
	for _, enc := range item.Enclosures {
		if enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "video/") || enc.Type == "" {
			return enc, true
		}
	}
	return nil, false
}

func extensionFor(enc *gofeed.Enclosure) string {
	switch enc.Type {
	case "video/mp4":
		return "mp4"
	case "video/quicktime":
		return "mov"
	case "video/x-ms-wmv":
		return "wmv"
	case "video/x-msvideo", "video/avi":
		return "avi"
	}
	return strings.TrimPrefix(path.Ext(enc.URL), ".")
}

// itemDuration reads the iTunes duration, accepting plain seconds or
// colon-separated clock notation. Unknown durations map to zero.
func itemDuration(item *gofeed.Item) int {
	if item.ITunesExt == nil || item.ITunesExt.Duration == "" {
		return 0
	}
	raw := item.ITunesExt.Duration
	if !strings.Contains(raw, ":") {
		sec, _ := strconv.Atoi(raw)
		return sec
	}
	total := 0
	for _, part := range strings.Split(raw, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if item.ITunesExt != nil {
		return item.ITunesExt.Author
	}
	return ""
}
