package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"newslens/internal/model"
	"newslens/internal/pipeline"
)

const (
	defaultCategory  = "world"
	trendingWindow   = 48 * time.Hour
	trendingLimit    = 10
	defaultTrendDays = 7
)

type NewsStore interface {
	LatestByTopic(topic string, cutoff time.Time, limit int) ([]model.StoredArticle, error)
	AvgStats() (model.AvgStats, error)
	TopicStats() ([]model.TopicCount, error)
	SentimentTrend(cutoff time.Time) ([]model.TrendPoint, error)
	Count() (int, error)
}

type Ingestor interface {
	GetOrFetch(ctx context.Context, query string) (*pipeline.Result, error)
}

type NewsHandler struct {
	repository NewsStore
	pipeline   Ingestor
}

func NewNewsHandler(repository NewsStore, pipeline Ingestor) *NewsHandler {
	return &NewsHandler{repository: repository, pipeline: pipeline}
}

// GetTrendingNews serves recent stored articles for a category, falling back
// to a live get-or-fetch when nothing recent is stored. Both paths return the
// same scored article shape.
func (h *NewsHandler) GetTrendingNews(c *gin.Context) {
	category := c.DefaultQuery("category", defaultCategory)

	articles, err := h.repository.LatestByTopic(category, time.Now().Add(-trendingWindow), trendingLimit)
	if err != nil {
		slog.Error("error fetching trending news", "category", category, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if len(articles) == 0 {
		res, err := h.pipeline.GetOrFetch(c.Request.Context(), category)
		if err != nil {
			slog.Error("error fetching fresh trending news", "category", category, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "News source unavailable"})
			return
		}
		articles = res.Articles
	}

	c.JSON(http.StatusOK, toArticleResponses(articles))
}

// Search runs the get-or-fetch pipeline for a caller-supplied query.
func (h *NewsHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query missing"})
		return
	}

	res, err := h.pipeline.GetOrFetch(c.Request.Context(), req.Query)
	if err != nil {
		slog.Error("error searching news", "query", req.Query, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "News source unavailable"})
		return
	}

	if len(res.Skipped) > 0 {
		slog.Warn("search returned partial results", "query", req.Query, "skipped", len(res.Skipped))
	}

	c.JSON(http.StatusOK, toArticleResponses(res.Articles))
}

func (h *NewsHandler) GetSentimentTrend(c *gin.Context) {
	days := getQueryDays(c)

	trend, err := h.repository.SentimentTrend(time.Now().AddDate(0, 0, -days))
	if err != nil {
		slog.Error("error fetching sentiment trend", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]TrendPointResponse, 0, len(trend))
	for _, p := range trend {
		res = append(res, TrendPointResponse{
			Date:         p.Date,
			AvgSentiment: p.AvgSentiment,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) GetAverageStats(c *gin.Context) {
	stats, err := h.repository.AvgStats()
	if err != nil {
		slog.Error("error fetching average stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, AvgStatsResponse{
		AvgSentiment: stats.AvgSentiment,
		AvgFakeScore: stats.AvgFakeScore,
	})
}

func (h *NewsHandler) GetTopicStats(c *gin.Context) {
	stats, err := h.repository.TopicStats()
	if err != nil {
		slog.Error("error fetching topic stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]TopicCountResponse, 0, len(stats))
	for _, tc := range stats {
		res = append(res, TopicCountResponse{
			Topic: tc.Topic,
			Count: tc.Count,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) GetHealth(c *gin.Context) {
	_, err := h.repository.Count()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func toArticleResponses(articles []model.StoredArticle) []ArticleResponse {
	res := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		publishedAt := ""
		if !a.PublishedAt.IsZero() {
			publishedAt = a.PublishedAt.Format(time.RFC3339)
		}

		res = append(res, ArticleResponse{
			Title:         a.Title,
			Description:   a.Description,
			URL:           a.URL,
			Query:         a.Query,
			Topic:         a.Topic,
			PublishedAt:   publishedAt,
			FetchedAt:     a.FetchedAt.Format(time.RFC3339),
			Sentiment:     a.Sentiment,
			FakeNewsScore: a.FakeNewsScore,
		})
	}
	return res
}

func getQueryDays(c *gin.Context) int {
	param := c.Query("days")
	if param == "" {
		return defaultTrendDays
	}

	days, err := strconv.Atoi(param)
	if err != nil || days < 1 {
		slog.Warn("invalid query parameter, using default", "param", "days", "value", param, "default", defaultTrendDays)
		return defaultTrendDays
	}

	return days
}
