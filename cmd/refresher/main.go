package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"newslens/db"
	"newslens/internal/pipeline"
	"newslens/internal/repository"
	"newslens/pkg/news"
	"newslens/pkg/scoring"
)

// Default topics match the trending categories the frontend offers.
var defaultTopics = []string{"world", "business", "technology", "sports", "health"}

// The refresher warms the article cache for the trending topics so the API's
// trending endpoint rarely needs its live-fetch fallback. Run it from cron.
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

	apiKey := os.Getenv("NEWSAPI_KEY")
	if apiKey == "" {
		log.Fatal("NEWSAPI_KEY environment variable is not set")
	}

	registry := news.NewRegistry(news.NewNewsAPIClient(apiKey))
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		finnhubClient := news.NewFinnhubClient(key)
		for _, topic := range finnhubClient.Topics() {
			registry.Register(topic, finnhubClient)
		}
	}

	var scorer scoring.Scorer
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		scorer = scoring.NewOpenAIScorer(key)
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		scorer = scoring.NewAnthropicScorer(key)
	} else {
		log.Fatal("neither OPENAI_API_KEY nor ANTHROPIC_API_KEY is set")
	}

	articleRepo := repository.NewArticleRepository(conn)
	ingestPipeline := pipeline.New(articleRepo, registry, scorer, db.NewIngestLock(redisClient), pipeline.DefaultFreshFor)

	ctx := context.Background()

	for _, topic := range refreshTopics() {
		res, err := ingestPipeline.GetOrFetch(ctx, topic)
		if err != nil {
			slog.Error("error refreshing topic", "topic", topic, "error", err)
			continue
		}

		slog.Info("topic refreshed", "topic", topic,
			"articles", len(res.Articles), "skipped", len(res.Skipped),
			"from_cache", res.FromCache, "stale", res.Stale)
	}
}

func refreshTopics() []string {
	raw := os.Getenv("REFRESH_TOPICS")
	if raw == "" {
		return defaultTopics
	}

	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}

	if len(topics) == 0 {
		return defaultTopics
	}

	return topics
}
