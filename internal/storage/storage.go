// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"nature_poster/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	BadWords(ctx context.Context) (map[string]struct{}, error)
	AddBadWord(ctx context.Context, word string) error

	SearchTerms(ctx context.Context) ([]string, error)
	AddSearchTerm(ctx context.Context, term string) error

	HasPost(ctx context.Context, sourceID string) (bool, error)
	AppendPost(ctx context.Context, rec *model.PublishRecord) error
	Posts(ctx context.Context) ([]model.PublishRecord, error)

	Close() error
}
