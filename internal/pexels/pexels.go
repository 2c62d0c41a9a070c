// Package pexels implements a client for the Pexels video search API.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nature_poster/internal/model"
)

const baseURL = "https://api.pexels.com/videos/search"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client searches the Pexels video library.
type Client struct {
	client   HTTPClient
	apiKey   string
	pageSize int
}

// New creates a Client with the given HTTP client and API key.
func New(client HTTPClient, apiKey string, pageSize int) *Client {
	return &Client{client: client, apiKey: apiKey, pageSize: pageSize}
}

type searchResponse struct {
	Videos   []video `json:"videos"`
	NextPage string  `json:"next_page"`
}

type video struct {
	ID       int64   `json:"id"`
	URL      string  `json:"url"`
	Duration int     `json:"duration"`
	User     user    `json:"user"`
	Files    []vfile `json:"video_files"`
}

type user struct {
	Name string `json:"name"`
}

type vfile struct {
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Link     string `json:"link"`
}

// Search requests one page of candidates for the given term.
// An empty page with HasMore false signals exhaustion.
func (c *Client) Search(ctx context.Context, term string, page int) (*model.Page, error) {
	q := url.Values{}
	q.Set("query", term)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
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

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	p := &model.Page{HasMore: sr.NextPage != ""}
	for _, v := range sr.Videos {
		f, ok := bestFile(v.Files)
		if !ok {
			continue
		}
		id := strconv.FormatInt(v.ID, 10)
		p.Candidates = append(p.Candidates, model.Candidate{
			SourceID:    id,
			Description: descriptionFromURL(v.URL, id),
			Extension:   extensionFromType(f.FileType),
			MediaURL:    f.Link,
			Permalink:   v.URL,
			SourceURL:   v.URL,
			DurationSec: v.Duration,
			Author:      v.User.Name,
		})
	}
	return p, nil
}

// bestFile picks the highest-resolution rendition.
func bestFile(files []vfile) (vfile, bool) {
	var best vfile
	found := false
	for _, f := range files {
		if f.Link == "" {
			continue
		}
		if !found || f.Width > best.Width {
			best = f
			found = true
		}
	}
	return best, found
}

// extensionFromType maps a MIME type like "video/mp4" to "mp4".
func extensionFromType(mime string) string {
	if i := strings.IndexByte(mime, '/'); i >= 0 {
		return mime[i+1:]
	}
	return mime
}

// descriptionFromURL recovers a human-readable description from the
// permalink slug; the API exposes no description field. For
// ".../video/a-lovely-eagle-soaring-12345/" and ID "12345" it returns
// "A Lovely Eagle Soaring".
func descriptionFromURL(permalink, id string) string {
	u, err := url.Parse(permalink)
	if err != nil {
		return ""
	}
	slug := strings.Trim(u.Path, "/")
	if i := strings.LastIndexByte(slug, '/'); i >= 0 {
		slug = slug[i+1:]
	}
	slug = strings.TrimSuffix(slug, "-"+id)

	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
