// Package facebook publishes videos to a Facebook page via the Graph API.
package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"nature_poster/internal/model"
)

const (
	videoBaseURL = "https://graph-video.facebook.com/v15.0"
	graphBaseURL = "https://graph.facebook.com/v15.0"
)

// ErrNoPostID is returned when the Graph API response carries no usable
// post identifier.
var ErrNoPostID = errors.New("response has no post id")

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Publisher posts videos to one Facebook page.
type Publisher struct {
	client      HTTPClient
	accessToken string
	pageID      string
}

// New creates a Publisher for the given page.
func New(client HTTPClient, accessToken, pageID string) *Publisher {
	return &Publisher{client: client, accessToken: accessToken, pageID: pageID}
}

// Publish creates a video post from a remote URL. A response without a
// post ID is reported as ErrNoPostID; callers treat that like a
// rejected candidate and move on.
func (p *Publisher) Publish(ctx context.Context, mediaURL string) (*model.PostResult, error) {
	form := url.Values{}
	form.Set("url", mediaURL)
	form.Set("access_token", p.accessToken)

	raw, err := p.postForm(ctx, fmt.Sprintf("%s/%s/videos", videoBaseURL, p.pageID), form)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoPostID, raw)
	}

	return &model.PostResult{PostID: parsed.ID, Raw: raw}, nil
}

// Annotate edits the caption of an already-created post, crediting the
// source permalink.
func (p *Publisher) Annotate(ctx context.Context, postID, description, permalink string) error {
	form := url.Values{}
	form.Set("message", caption(description, permalink))
	form.Set("access_token", p.accessToken)

	// Page posts are addressed as <pageID>_<postID>.
	_, err := p.postForm(ctx, fmt.Sprintf("%s/%s_%s", graphBaseURL, p.pageID, postID), form)
	if err != nil {
		return fmt.Errorf("edit caption: %w", err)
	}
	return nil
}

func (p *Publisher) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

func caption(description, permalink string) string {
	return fmt.Sprintf(
		"Description: %s\n\nSource video link: %s\n\nP.S. This post was published by an automated nature bot.",
		description, permalink)
}
