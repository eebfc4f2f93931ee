package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"newslens/internal/model"
	"newslens/pkg/news"
	"newslens/pkg/scoring"
)

const (
	// DefaultFreshFor is how long ingested articles satisfy later calls for
	// the same query without a new fetch.
	DefaultFreshFor = 10 * time.Minute

	fetchDaysBack = 1
	stalePageSize = 10
	ingestLockTTL = 30 * time.Second
)

type Store interface {
	FreshByQuery(query string, cutoff time.Time) ([]model.StoredArticle, error)
	LatestByTopic(topic string, cutoff time.Time, limit int) ([]model.StoredArticle, error)
	Upsert(article *model.StoredArticle) (bool, error)
}

// Locker serializes cache-miss ingests for one query across replicas.
// db.IngestLock implements it over Redis.
type Locker interface {
	Acquire(ctx context.Context, query string, ttl time.Duration) bool
	Release(ctx context.Context, query string)
}

// SkippedArticle records one article dropped from an ingest batch.
type SkippedArticle struct {
	URL    string
	Reason error
}

// Result is the outcome of a get-or-fetch call. Articles holds what the
// caller should serve; Skipped makes partial ingest failures observable
// instead of leaving them to the logs.
type Result struct {
	Articles  []model.StoredArticle
	Skipped   []SkippedArticle
	FromCache bool
	Stale     bool
}

// Pipeline decides cache freshness for a query and, on a miss, fetches raw
// articles, scores each one, and upserts them keyed by URL.
type Pipeline struct {
	store    Store
	source   news.Source
	scorer   scoring.Scorer
	lock     Locker
	freshFor time.Duration
	group    singleflight.Group
	now      func() time.Time
}

// New wires a pipeline. lock may be nil when no Redis is configured; freshFor
// <= 0 falls back to DefaultFreshFor.
func New(store Store, source news.Source, scorer scoring.Scorer, lock Locker, freshFor time.Duration) *Pipeline {
	if freshFor <= 0 {
		freshFor = DefaultFreshFor
	}
	return &Pipeline{
		store:    store,
		source:   source,
		scorer:   scorer,
		lock:     lock,
		freshFor: freshFor,
		now:      time.Now,
	}
}

// GetOrFetch serves stored articles for the query when any are fresh enough,
// otherwise runs one ingest. Concurrent misses for the same query share a
// single fetch.
func (p *Pipeline) GetOrFetch(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	cached, err := p.store.FreshByQuery(query, p.now().Add(-p.freshFor))
	if err != nil {
		return nil, fmt.Errorf("cache lookup for %q: %w", query, err)
	}
	if len(cached) > 0 {
		return &Result{Articles: cached, FromCache: true}, nil
	}

	v, err, _ := p.group.Do(query, func() (interface{}, error) {
		return p.ingest(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Result), nil
}

func (p *Pipeline) ingest(ctx context.Context, query string) (*Result, error) {
	acquired := true
	if p.lock != nil {
		acquired = p.lock.Acquire(ctx, query, ingestLockTTL)
	}
	if !acquired {
		// Another replica is already ingesting this query. Re-check the cache
		// once and fall through to a redundant fetch only if it is still cold;
		// the URL upsert keeps that outcome consistent.
		cached, err := p.store.FreshByQuery(query, p.now().Add(-p.freshFor))
		if err == nil && len(cached) > 0 {
			return &Result{Articles: cached, FromCache: true}, nil
		}
	} else if p.lock != nil {
		defer p.lock.Release(ctx, query)
	}

	raw, err := p.source.Fetch(ctx, query, fetchDaysBack)
	if err != nil {
		return p.staleFallback(query, err)
	}

	now := p.now().UTC()
	result := &Result{}
	var inserted int

	for _, ra := range raw {
		if ra.URL == "" {
			result.Skipped = append(result.Skipped, SkippedArticle{Reason: fmt.Errorf("article has no url")})
			continue
		}

		text := strings.TrimSpace(ra.Title + " " + ra.Description)
		scores, err := p.scorer.Score(ctx, text)
		if err != nil {
			slog.Error("scoring failed, skipping article", "query", query, "url", ra.URL, "error", err)
			result.Skipped = append(result.Skipped, SkippedArticle{URL: ra.URL, Reason: err})
			continue
		}

		article := model.StoredArticle{
			Title:         ra.Title,
			Description:   ra.Description,
			URL:           ra.URL,
			Query:         query,
			Topic:         query,
			PublishedAt:   ra.PublishedAt,
			FetchedAt:     now,
			Sentiment:     scores.Sentiment,
			FakeNewsScore: scores.FakeNewsScore,
		}

		isNew, err := p.store.Upsert(&article)
		if err != nil {
			slog.Error("upsert failed, skipping article", "query", query, "url", ra.URL, "error", err)
			result.Skipped = append(result.Skipped, SkippedArticle{URL: ra.URL, Reason: err})
			continue
		}
		if isNew {
			inserted++
		}

		result.Articles = append(result.Articles, article)
	}

	slog.Info("ingest complete", "query", query,
		"ingested", len(result.Articles), "new", inserted, "skipped", len(result.Skipped))

	return result, nil
}

// staleFallback serves the most recent stored articles for the query,
// regardless of freshness, when the source is down. With nothing stored the
// fetch error propagates.
func (p *Pipeline) staleFallback(query string, fetchErr error) (*Result, error) {
	stale, err := p.store.LatestByTopic(query, time.Time{}, stalePageSize)
	if err != nil || len(stale) == 0 {
		return nil, fmt.Errorf("fetch for %q: %w", query, fetchErr)
	}

	slog.Warn("source fetch failed, serving stale articles",
		"query", query, "count", len(stale), "error", fetchErr)

	return &Result{Articles: stale, Stale: true}, nil
}
