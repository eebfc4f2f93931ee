package main

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"newslens/db"
	"newslens/internal/handler"
	"newslens/internal/pipeline"
	"newslens/internal/repository"
	"newslens/pkg/news"
	"newslens/pkg/scoring"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	conn, err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	redisClient, err := db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	source, err := buildSource()
	if err != nil {
		log.Fatalf("error building news source: %v", err)
	}

	scorer, err := buildScorer()
	if err != nil {
		log.Fatalf("error building scorer: %v", err)
	}

	articleRepo := repository.NewArticleRepository(conn)
	ingestPipeline := pipeline.New(articleRepo, source, scorer, db.NewIngestLock(redisClient), pipeline.DefaultFreshFor)
	newsHandler := handler.NewNewsHandler(articleRepo, ingestPipeline)

	if days := retentionDays(); days > 0 {
		go prune(articleRepo, days)
	}

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/api/trending-news", newsHandler.GetTrendingNews)
	r.GET("/api/sentiment-trend", newsHandler.GetSentimentTrend)
	r.GET("/api/average-stats", newsHandler.GetAverageStats)
	r.GET("/api/topic-stats", newsHandler.GetTopicStats)
	r.POST("/search", newsHandler.Search)
	r.GET("/health", newsHandler.GetHealth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	err = r.Run(":" + port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func buildSource() (news.Source, error) {
	apiKey := os.Getenv("NEWSAPI_KEY")
	if apiKey == "" {
		return nil, errors.New("NEWSAPI_KEY environment variable is not set")
	}

	registry := news.NewRegistry(news.NewNewsAPIClient(apiKey))

	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		finnhubClient := news.NewFinnhubClient(key)
		for _, topic := range finnhubClient.Topics() {
			registry.Register(topic, finnhubClient)
		}
	}

	return registry, nil
}

func buildScorer() (scoring.Scorer, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return scoring.NewOpenAIScorer(key), nil
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return scoring.NewAnthropicScorer(key), nil
	}
	return nil, errors.New("neither OPENAI_API_KEY nor ANTHROPIC_API_KEY is set")
}

func retentionDays() int {
	raw := os.Getenv("RETENTION_DAYS")
	if raw == "" {
		return 0
	}

	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		slog.Warn("invalid RETENTION_DAYS, retention disabled", "value", raw)
		return 0
	}

	return days
}

// prune deletes articles older than the retention window, once at startup and
// then daily.
func prune(repo *repository.ArticleRepository, days int) {
	for {
		removed, err := repo.PruneOlderThan(time.Now().AddDate(0, 0, -days))
		if err != nil {
			slog.Error("error pruning old articles", "error", err)
		} else if removed > 0 {
			slog.Info("pruned old articles", "removed", removed, "retention_days", days)
		}
		time.Sleep(24 * time.Hour)
	}
}
