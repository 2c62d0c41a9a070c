// Package model defines the domain types used across the application.
package model

import "time"

// Candidate is one media item fetched from a source, not yet accepted
// or rejected. SizeKB is filled by the size probe, not by the source.
type Candidate struct {
	SourceID    string
	Description string
	Extension   string
	MediaURL    string
	Permalink   string
	SourceURL   string
	DurationSec int
	Author      string
	SizeKB      float64
}

// Page is one page of search results from a media source.
type Page struct {
	Candidates []Candidate
	HasMore    bool
}

// PostResult is the outcome of a successful publish: the platform's
// post handle plus the raw response payload for the log.
type PostResult struct {
	PostID string
	Raw    string
}

// PublishRecord is the durable row written after a confirmed publish.
type PublishRecord struct {
	ID          int64
	PostedAt    time.Time
	RawResponse string
	Description string
	Author      string
	SourceID    string
	Permalink   string
	SourceURL   string
	MediaURL    string
	SizeKB      float64
}

// Acceptance policy defaults.
const (
	// DefaultMaxSizeKB is ~1 GB expressed in the probe's unit (bytes/1000).
	DefaultMaxSizeKB = 1_000_000
	// DefaultMaxDurationSec caps candidates at 20 minutes.
	DefaultMaxDurationSec = 1200
)

// DefaultExtensions returns the closed set of acceptable container types.
func DefaultExtensions() []string {
	return []string{"mp4", "mov", "wmv", "avi"}
}
