package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"newslens/internal/model"
	"newslens/internal/pipeline"
)

type fakeStore struct {
	latest      []model.StoredArticle
	latestTopic string
	latestLimit int
	avg         model.AvgStats
	topics      []model.TopicCount
	trend       []model.TrendPoint
	trendCutoff time.Time
	count       int
	err         error
}

func (f *fakeStore) LatestByTopic(topic string, cutoff time.Time, limit int) ([]model.StoredArticle, error) {
	f.latestTopic = topic
	f.latestLimit = limit
	return f.latest, f.err
}

func (f *fakeStore) AvgStats() (model.AvgStats, error) {
	return f.avg, f.err
}

func (f *fakeStore) TopicStats() ([]model.TopicCount, error) {
	return f.topics, f.err
}

func (f *fakeStore) SentimentTrend(cutoff time.Time) ([]model.TrendPoint, error) {
	f.trendCutoff = cutoff
	return f.trend, f.err
}

func (f *fakeStore) Count() (int, error) {
	return f.count, f.err
}

type fakePipeline struct {
	result    *pipeline.Result
	err       error
	calls     int
	lastQuery string
}

func (f *fakePipeline) GetOrFetch(ctx context.Context, query string) (*pipeline.Result, error) {
	f.calls++
	f.lastQuery = query
	return f.result, f.err
}

func newTestRouter(store NewsStore, p Ingestor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewNewsHandler(store, p)
	r.GET("/api/trending-news", h.GetTrendingNews)
	r.GET("/api/sentiment-trend", h.GetSentimentTrend)
	r.GET("/api/average-stats", h.GetAverageStats)
	r.GET("/api/topic-stats", h.GetTopicStats)
	r.POST("/search", h.Search)
	r.GET("/health", h.GetHealth)
	return r
}

func storedArticle(url, topic string) model.StoredArticle {
	return model.StoredArticle{
		Title:         "Title",
		Description:   "Description",
		URL:           url,
		Query:         topic,
		Topic:         topic,
		PublishedAt:   time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC),
		FetchedAt:     time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC),
		Sentiment:     0.5,
		FakeNewsScore: 0.1,
	}
}

func TestGetTrendingNews_ServesCached(t *testing.T) {
	store := &fakeStore{latest: []model.StoredArticle{storedArticle("https://a", "world")}}
	p := &fakePipeline{}
	r := newTestRouter(store, p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/trending-news", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, p.calls)
	assert.Equal(t, "world", store.latestTopic)
	assert.Equal(t, 10, store.latestLimit)

	var res []ArticleResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, "https://a", res[0].URL)
	assert.Equal(t, 0.5, res[0].Sentiment)
	assert.Equal(t, 0.1, res[0].FakeNewsScore)
}

func TestGetTrendingNews_FallsBackToFetch(t *testing.T) {
	store := &fakeStore{}
	p := &fakePipeline{result: &pipeline.Result{
		Articles: []model.StoredArticle{storedArticle("https://fresh", "science")},
	}}
	r := newTestRouter(store, p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/trending-news?category=science", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "science", p.lastQuery)

	var res []ArticleResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, "https://fresh", res[0].URL)
	assert.Equal(t, "science", res[0].Topic)
}

func TestGetTrendingNews_FallbackSourceDown(t *testing.T) {
	store := &fakeStore{}
	p := &fakePipeline{err: errors.New("newsapi down")}
	r := newTestRouter(store, p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/trending-news", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSearch_MissingQuery(t *testing.T) {
	r := newTestRouter(&fakeStore{}, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/search", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var res map[string]string
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "Query missing", res["error"])
}

func TestSearch_BlankQuery(t *testing.T) {
	r := newTestRouter(&fakeStore{}, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_ReturnsArticles(t *testing.T) {
	p := &fakePipeline{result: &pipeline.Result{
		Articles: []model.StoredArticle{storedArticle("https://a", "bitcoin")},
	}}
	r := newTestRouter(&fakeStore{}, p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query": "bitcoin"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bitcoin", p.lastQuery)

	var res []ArticleResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, "bitcoin", res[0].Query)
}

func TestSearch_SourceDown(t *testing.T) {
	p := &fakePipeline{err: errors.New("newsapi down")}
	r := newTestRouter(&fakeStore{}, p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query": "bitcoin"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetSentimentTrend(t *testing.T) {
	store := &fakeStore{trend: []model.TrendPoint{
		{Date: "2024-01-01", AvgSentiment: 0.5},
		{Date: "2024-01-02", AvgSentiment: -0.5},
	}}
	r := newTestRouter(store, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sentiment-trend?days=7", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res []TrendPointResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 2, len(res))
	assert.Equal(t, "2024-01-01", res[0].Date)
	assert.Equal(t, 0.5, res[0].AvgSentiment)
	assert.Equal(t, "2024-01-02", res[1].Date)
	assert.Equal(t, -0.5, res[1].AvgSentiment)
}

func TestGetSentimentTrend_DefaultDays(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(store, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sentiment-trend", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	want := time.Now().AddDate(0, 0, -7)
	if diff := store.trendCutoff.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff %v not around 7 days ago", store.trendCutoff)
	}
}

func TestGetAverageStats_EmptyCollection(t *testing.T) {
	r := newTestRouter(&fakeStore{}, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/average-stats", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res AvgStatsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 0.0, res.AvgSentiment)
	assert.Equal(t, 0.0, res.AvgFakeScore)
}

func TestGetTopicStats_Ordering(t *testing.T) {
	store := &fakeStore{topics: []model.TopicCount{
		{Topic: "a", Count: 3},
		{Topic: "b", Count: 1},
	}}
	r := newTestRouter(store, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/topic-stats", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res []TopicCountResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 2, len(res))
	assert.Equal(t, "a", res[0].Topic)
	assert.Equal(t, 3, res[0].Count)
	assert.Equal(t, "b", res[1].Topic)
	assert.Equal(t, 1, res[1].Count)
}

func TestGetHealth_Healthy(t *testing.T) {
	r := newTestRouter(&fakeStore{}, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	var res map[string]string
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "healthy", res["status"])
}

func TestGetHealth_Unhealthy(t *testing.T) {
	r := newTestRouter(&fakeStore{err: errors.New("DB down")}, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
