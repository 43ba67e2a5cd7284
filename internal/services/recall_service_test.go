package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recallhub/go-recall-backend/internal/curation"
	"github.com/recallhub/go-recall-backend/internal/domain"
	"github.com/recallhub/go-recall-backend/internal/pagination"
	"github.com/recallhub/go-recall-backend/internal/search"
)

// fakeFeed is a Fetcher returning a canned batch or error.
type fakeFeed struct {
	batch []domain.Recall
	err   error

	calls int
	since time.Time
}

func (f *fakeFeed) Fetch(_ context.Context, since time.Time) ([]domain.Recall, error) {
	f.calls++
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

func sampleBatch(n int) []domain.Recall {
	out := make([]domain.Recall, n)
	for i := range out {
		out[i] = domain.Recall{ID: i + 1, Title: "Widget Recall"}
	}
	return out
}

func newRecallService(feed *fakeFeed, pageSize int) *RecallService {
	ds := curation.NewDataset()
	return &RecallService{
		Feed:        feed,
		Pipeline:    curation.NewPipeline(curation.Allowlist{}),
		Dataset:     ds,
		Window:      pagination.NewWindow(ds.Snapshot, pageSize),
		FetchWindow: 90 * 24 * time.Hour,
		Now:         func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) },
	}
}

// ---------- Refresh ----------

func TestRefresh_PublishesOnce(t *testing.T) {
	feed := &fakeFeed{batch: sampleBatch(3)}
	s := newRecallService(feed, 25)

	published, err := s.Refresh(context.Background())
	if err != nil || !published {
		t.Fatalf("first refresh: published=%v err=%v", published, err)
	}
	if s.Dataset.Len() != 3 {
		t.Fatalf("dataset len = %d", s.Dataset.Len())
	}

	// Second refresh is a no-op: no fetch, no publish, no error.
	published, err = s.Refresh(context.Background())
	if err != nil || published {
		t.Fatalf("second refresh: published=%v err=%v", published, err)
	}
	if feed.calls != 1 {
		t.Fatalf("feed fetched %d times, want 1", feed.calls)
	}
}

func TestRefresh_SinceIsFetchWindowAgo(t *testing.T) {
	feed := &fakeFeed{batch: sampleBatch(1)}
	s := newRecallService(feed, 25)

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	want := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC) // 90 days before fixed now
	if !feed.since.Equal(want) {
		t.Fatalf("since = %v, want %v", feed.since, want)
	}
}

func TestRefresh_FetchFailureLeavesDatasetEmptyAndRetryable(t *testing.T) {
	feed := &fakeFeed{err: errors.New("feed down")}
	s := newRecallService(feed, 25)

	published, err := s.Refresh(context.Background())
	if published || !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("failed refresh: published=%v err=%v", published, err)
	}
	// The fetch cause stays matchable through the wrap.
	if !errors.Is(err, feed.err) {
		t.Fatalf("underlying fetch error not wrapped: %v", err)
	}
	if s.Dataset.Populated() {
		t.Fatalf("failed refresh must leave the dataset empty")
	}

	// The next attempt starts from scratch and can succeed.
	feed.err = nil
	feed.batch = sampleBatch(2)
	published, err = s.Refresh(context.Background())
	if err != nil || !published {
		t.Fatalf("retry: published=%v err=%v", published, err)
	}
}

func TestRefresh_RerunsActiveSearch(t *testing.T) {
	feed := &fakeFeed{batch: sampleBatch(2)}
	s := newRecallService(feed, 25)
	// A long debounce keeps the pending evaluation from firing on its own;
	// the publish-triggered rerun is what must produce results.
	s.Engine = search.NewEngine(s.Dataset.Snapshot, time.Hour, 0.7)
	s.Engine.SetQuery("widget")

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := s.Engine.Results(); len(got) != 2 {
		t.Fatalf("rerun results = %d, want 2", len(got))
	}
	if s.Engine.Searching() {
		t.Fatalf("rerun must settle the searching flag")
	}
}

// ---------- window accessors ----------

func TestLoadMoreAndVisible(t *testing.T) {
	feed := &fakeFeed{batch: sampleBatch(30)}
	s := newRecallService(feed, 25)
	ctx := context.Background()

	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	step, visible := s.LoadMore(ctx)
	if step != 25 || len(visible) != 25 {
		t.Fatalf("first load: step=%d visible=%d", step, len(visible))
	}
	step, visible = s.LoadMore(ctx)
	if step != 5 || len(visible) != 30 {
		t.Fatalf("second load: step=%d visible=%d", step, len(visible))
	}
	step, _ = s.LoadMore(ctx)
	if step != 0 {
		t.Fatalf("exhausted load: step=%d", step)
	}
	if got := s.Visible(ctx); len(got) != 30 {
		t.Fatalf("visible = %d", len(got))
	}
}

func TestMeta(t *testing.T) {
	feed := &fakeFeed{batch: sampleBatch(30)}
	s := newRecallService(feed, 25)
	ctx := context.Background()

	m := s.Meta()
	if m.Total != 0 || m.Cursor != 0 || !m.Exhausted || !m.RefreshedAt.IsZero() {
		t.Fatalf("empty meta unexpected: %+v", m)
	}

	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	s.LoadMore(ctx)

	m = s.Meta()
	if m.Total != 30 || m.Cursor != 25 || m.PageSize != 25 || m.Exhausted {
		t.Fatalf("meta unexpected: %+v", m)
	}
	if m.RefreshedAt.IsZero() {
		t.Fatalf("RefreshedAt must be set after publish")
	}
}
