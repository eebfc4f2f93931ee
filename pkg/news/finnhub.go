package news

import (
	"context"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// finnhubCategories maps trending topics to Finnhub market-news categories.
var finnhubCategories = map[string]string{
	"finance": "general",
	"markets": "general",
	"crypto":  "crypto",
	"forex":   "forex",
	"merger":  "merger",
}

type FinnhubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubClient(apiKey string) *FinnhubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnhubClient{client: client}
}

func (c *FinnhubClient) Name() string {
	return "Finnhub"
}

// Topics lists the queries this client can serve.
func (c *FinnhubClient) Topics() []string {
	topics := make([]string, 0, len(finnhubCategories))
	for t := range finnhubCategories {
		topics = append(topics, t)
	}
	return topics
}

func (c *FinnhubClient) Fetch(ctx context.Context, query string, daysBack int) ([]Article, error) {
	if daysBack < 1 {
		daysBack = 1
	}

	category, ok := finnhubCategories[query]
	if !ok {
		category = "general"
	}

	res, _, err := c.client.MarketNews(ctx).Category(category).Execute()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)

	var articles []Article
	for _, item := range res {
		if len(articles) == defaultPageSize {
			break
		}

		a := Article{}

		if item.Headline != nil {
			a.Title = *item.Headline
		}
		if item.Summary != nil {
			a.Description = *item.Summary
		}
		if item.Url != nil {
			a.URL = *item.Url
		}
		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0).UTC()
		}

		if a.PublishedAt.Before(cutoff) {
			continue
		}

		articles = append(articles, a)
	}

	return articles, nil
}
