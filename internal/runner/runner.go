// Package runner drives one search → filter → publish → log pass.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"nature_poster/internal/filter"
	"nature_poster/internal/model"
	"nature_poster/internal/storage"
)

// ErrNoSearchTerms is returned when the store has no configured search terms.
var ErrNoSearchTerms = errors.New("no search terms configured")

// Source provides pages of candidates for a search term.
type Source interface {
	Search(ctx context.Context, term string, page int) (*model.Page, error)
}

// Publisher posts a video and captions it afterwards.
type Publisher interface {
	Publish(ctx context.Context, mediaURL string) (*model.PostResult, error)
	Annotate(ctx context.Context, postID, description, permalink string) error
}

// Prober measures a remote media file.
type Prober interface {
	SizeKB(ctx context.Context, url string) (float64, error)
}

// Runner executes one publishing run. Processing is strictly
// sequential: candidates are evaluated one at a time so at most one
// publish can happen per run.
type Runner struct {
	store     storage.Storage
	source    Source
	publisher Publisher
	prober    Prober
	policy    filter.Policy
	rand      *rand.Rand
	log       *slog.Logger
	now       func() time.Time
}

// New creates a Runner. The random source picks the search term and is
// injectable so tests can fix the choice.
func New(store storage.Storage, source Source, publisher Publisher, prober Prober,
	policy filter.Policy, rnd *rand.Rand, log *slog.Logger) *Runner {
	return &Runner{
		store:     store,
		source:    source,
		publisher: publisher,
		prober:    prober,
		policy:    policy,
		rand:      rnd,
		log:       log,
		now:       time.Now,
	}
}

// Run performs one pass: pick a random search term, page through
// candidates, publish the first acceptable one, and append the publish
// record. A nil record with a nil error means every page was drained
// without an acceptance — no action taken.
func (r *Runner) Run(ctx context.Context) (*model.PublishRecord, error) {
	terms, err := r.store.SearchTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load search terms: %w", err)
	}
	if len(terms) == 0 {
		return nil, ErrNoSearchTerms
	}
	term := terms[r.rand.Intn(len(terms))]

	policy := r.policy
	policy.BadWords, err = r.store.BadWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bad words: %w", err)
	}

	r.log.Info("starting run", "term", term)

	for page := 1; ; page++ {
		p, err := r.source.Search(ctx, term, page)
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}
		if len(p.Candidates) == 0 {
			r.log.Info("source exhausted", "term", term, "pages", page)
			return nil, nil
		}

		rec, err := r.drainPage(ctx, p.Candidates, policy)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}

		if !p.HasMore {
			r.log.Info("source exhausted", "term", term, "pages", page)
			return nil, nil
		}
	}
}

// drainPage runs every candidate on the page through the filter until
// one is published. A nil record means the page produced nothing.
func (r *Runner) drainPage(ctx context.Context, candidates []model.Candidate, policy filter.Policy) (*model.PublishRecord, error) {
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		size, err := r.prober.SizeKB(ctx, c.MediaURL)
		if err != nil {
			// Probe failures skip the candidate; they are never
			// treated as an acceptable size.
			r.log.Warn("size probe failed", "source_id", c.SourceID, "error", err)
			continue
		}
		c.SizeKB = size

		decision, err := filter.Evaluate(ctx, c, policy, r.store)
		if err != nil {
			return nil, fmt.Errorf("evaluate candidate %s: %w", c.SourceID, err)
		}
		if !decision.Accepted {
			r.log.Debug("rejected", "source_id", c.SourceID, "reason", decision.Reason)
			continue
		}

		res, err := r.publisher.Publish(ctx, c.MediaURL)
		if err != nil {
			// A failed publish is handled like a rejection: no retry,
			// move on to the next candidate.
			r.log.Warn("publish failed", "source_id", c.SourceID, "error", err)
			continue
		}

		r.log.Info("published", "source_id", c.SourceID, "post_id", res.PostID)

		// Best effort: a failed caption never unwinds the publish.
		if err := r.publisher.Annotate(ctx, res.PostID, c.Description, c.Permalink); err != nil {
			r.log.Warn("annotate failed", "post_id", res.PostID, "error", err)
		}

		rec := &model.PublishRecord{
			PostedAt:    r.now().UTC(),
			RawResponse: res.Raw,
			Description: c.Description,
			Author:      c.Author,
			SourceID:    c.SourceID,
			Permalink:   c.Permalink,
			SourceURL:   c.SourceURL,
			MediaURL:    c.MediaURL,
			SizeKB:      c.SizeKB,
		}
		if err := r.store.AppendPost(ctx, rec); err != nil {
			return nil, fmt.Errorf("append post: %w", err)
		}
		return rec, nil
	}
	return nil, nil
}
