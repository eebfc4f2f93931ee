package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const newsAPIBaseURL = "https://newsapi.org/v2/everything"

type NewsAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:     apiKey,
		baseURL:    newsAPIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *NewsAPIClient) Name() string {
	return "NewsAPI"
}

func (c *NewsAPIClient) Fetch(ctx context.Context, query string, daysBack int) ([]Article, error) {
	if daysBack < 1 {
		daysBack = 1
	}

	from := time.Now().UTC().AddDate(0, 0, -daysBack).Format("2006-01-02")

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(defaultPageSize))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}

	if raw.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s (%s)", raw.Code, raw.Message)
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		articles = append(articles, Article{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			PublishedAt: publishedAt,
		})
	}

	return articles, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}
