package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nature_poster/internal/filter"
	"nature_poster/internal/model"
	"nature_poster/internal/storage"
)

type fakeSource struct {
	pages    []*model.Page
	requests int
}

func (f *fakeSource) Search(_ context.Context, _ string, page int) (*model.Page, error) {
	f.requests++
	if page > len(f.pages) {
		return &model.Page{}, nil
	}
	return f.pages[page-1], nil
}

type fakePublisher struct {
	published   []string
	annotated   []string
	failures    int
	annotateErr error
}

func (f *fakePublisher) Publish(_ context.Context, mediaURL string) (*model.PostResult, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("no id in response")
	}
	f.published = append(f.published, mediaURL)
	return &model.PostResult{PostID: "post-1", Raw: `{"id":"post-1"}`}, nil
}

func (f *fakePublisher) Annotate(_ context.Context, postID, _, _ string) error {
	if f.annotateErr != nil {
		return f.annotateErr
	}
	f.annotated = append(f.annotated, postID)
	return nil
}

type fakeProber struct {
	sizes map[string]float64
	errs  map[string]error
}

func (f *fakeProber) SizeKB(_ context.Context, url string) (float64, error) {
	if err := f.errs[url]; err != nil {
		return 0, err
	}
	return f.sizes[url], nil
}

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func candidate(id, ext, mediaURL string) model.Candidate {
	return model.Candidate{
		SourceID:    id,
		Description: "misty forest at dawn",
		Extension:   ext,
		MediaURL:    mediaURL,
		Permalink:   "https://videos.example.com/" + id,
		SourceURL:   "https://videos.example.com/" + id,
		DurationSec: 60,
		Author:      "Ana Selva",
	}
}

func newRunner(store storage.Storage, src Source, pub Publisher, pr Prober) *Runner {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, src, pub, pr, filter.DefaultPolicy(), rand.New(rand.NewSource(1)), log)
}

func TestRunPublishesFirstAcceptable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Candidate "2" is already in the log; "1" has a bad extension;
	// "3" passes every rule.
	if err := store.AppendPost(ctx, &model.PublishRecord{SourceID: "2"}); err != nil {
		t.Fatalf("seed post: %v", err)
	}

	src := &fakeSource{pages: []*model.Page{
		{
			Candidates: []model.Candidate{
				candidate("1", "mkv", "https://cdn.example.com/1.mkv"),
				candidate("2", "mp4", "https://cdn.example.com/2.mp4"),
				candidate("3", "mp4", "https://cdn.example.com/3.mp4"),
			},
			HasMore: true,
		},
		{Candidates: []model.Candidate{candidate("4", "mp4", "https://cdn.example.com/4.mp4")}},
	}}
	pub := &fakePublisher{}
	pr := &fakeProber{sizes: map[string]float64{
		"https://cdn.example.com/1.mkv": 100,
		"https://cdn.example.com/2.mp4": 100,
		"https://cdn.example.com/3.mp4": 84_312.5,
	}}

	rec, err := newRunner(store, src, pub, pr).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a publish record")
	}
	if rec.SourceID != "3" {
		t.Errorf("expected candidate 3 published, got %s", rec.SourceID)
	}
	if rec.SizeKB != 84_312.5 {
		t.Errorf("expected probed size on record, got %v", rec.SizeKB)
	}

	if diff := cmp.Diff([]string{"https://cdn.example.com/3.mp4"}, pub.published); diff != "" {
		t.Errorf("published mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"post-1"}, pub.annotated); diff != "" {
		t.Errorf("annotated mismatch (-want +got):\n%s", diff)
	}

	// First success stops the run: the second page is never requested.
	if src.requests != 1 {
		t.Errorf("expected 1 search request, got %d", src.requests)
	}

	posts, err := store.Posts(ctx)
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if len(posts) != 2 { // seeded duplicate + the new record
		t.Fatalf("expected 2 log rows, got %d", len(posts))
	}
	if posts[1].SourceID != "3" || posts[1].RawResponse != `{"id":"post-1"}` {
		t.Errorf("unexpected log row: %+v", posts[1])
	}
}

func TestRunExhaustionIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	src := &fakeSource{pages: []*model.Page{
		{Candidates: []model.Candidate{candidate("1", "mkv", "u1")}, HasMore: true},
		{Candidates: []model.Candidate{candidate("2", "gif", "u2")}, HasMore: true},
		{}, // final empty page
	}}
	pub := &fakePublisher{}
	pr := &fakeProber{sizes: map[string]float64{"u1": 10, "u2": 10}}

	rec, err := newRunner(store, src, pub, pr).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no action, got %+v", rec)
	}
	if len(pub.published) != 0 {
		t.Errorf("expected zero publish calls, got %d", len(pub.published))
	}
	posts, _ := store.Posts(ctx)
	if len(posts) != 0 {
		t.Errorf("expected zero log writes, got %d", len(posts))
	}
	if src.requests != 3 {
		t.Errorf("expected all 3 pages drained, got %d requests", src.requests)
	}
}

func TestRunContinuesAfterPublishFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	src := &fakeSource{pages: []*model.Page{{
		Candidates: []model.Candidate{
			candidate("1", "mp4", "u1"),
			candidate("2", "mp4", "u2"),
		},
	}}}
	pub := &fakePublisher{failures: 1}
	pr := &fakeProber{sizes: map[string]float64{"u1": 10, "u2": 10}}

	rec, err := newRunner(store, src, pub, pr).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec == nil || rec.SourceID != "2" {
		t.Fatalf("expected candidate 2 published after first failure, got %+v", rec)
	}
}

func TestRunLogsDespiteAnnotateFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	src := &fakeSource{pages: []*model.Page{{
		Candidates: []model.Candidate{candidate("1", "mp4", "u1")},
	}}}
	pub := &fakePublisher{annotateErr: errors.New("caption rejected")}
	pr := &fakeProber{sizes: map[string]float64{"u1": 10}}

	rec, err := newRunner(store, src, pub, pr).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record despite annotate failure")
	}
	posts, _ := store.Posts(ctx)
	if len(posts) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(posts))
	}
}

func TestRunSkipsCandidateOnProbeError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	src := &fakeSource{pages: []*model.Page{{
		Candidates: []model.Candidate{
			candidate("1", "mp4", "u1"),
			candidate("2", "mp4", "u2"),
		},
	}}}
	pub := &fakePublisher{}
	pr := &fakeProber{
		sizes: map[string]float64{"u2": 10},
		errs:  map[string]error{"u1": errors.New("no content length")},
	}

	rec, err := newRunner(store, src, pub, pr).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec == nil || rec.SourceID != "2" {
		t.Fatalf("expected candidate 2 after probe failure, got %+v", rec)
	}
}

func TestRunAppliesStoredBadWords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if err := store.AddBadWord(ctx, "misty"); err != nil {
		t.Fatalf("add bad word: %v", err)
	}

	src := &fakeSource{pages: []*model.Page{{
		Candidates: []model.Candidate{candidate("1", "mp4", "u1")},
	}}}
	pub := &fakePublisher{}
	pr := &fakeProber{sizes: map[string]float64{"u1": 10}}

	rec, err := newRunner(store, src, pub, pr).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected rejection by stored bad word, got %+v", rec)
	}
}

// emptyTerms hides the seeded search terms to exercise the explicit
// empty-set error.
type emptyTerms struct {
	storage.Storage
}

func (emptyTerms) SearchTerms(context.Context) ([]string, error) {
	return nil, nil
}

func TestRunNoSearchTerms(t *testing.T) {
	store := newTestStore(t)
	r := newRunner(emptyTerms{store}, &fakeSource{}, &fakePublisher{}, &fakeProber{})

	_, err := r.Run(context.Background())
	if !errors.Is(err, ErrNoSearchTerms) {
		t.Fatalf("expected ErrNoSearchTerms, got %v", err)
	}
}
