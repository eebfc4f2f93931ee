package handler

type ArticleResponse struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	URL           string  `json:"url"`
	Query         string  `json:"query"`
	Topic         string  `json:"topic"`
	PublishedAt   string  `json:"published_at"`
	FetchedAt     string  `json:"fetched_at"`
	Sentiment     float64 `json:"sentiment"`
	FakeNewsScore float64 `json:"fake_news_score"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type AvgStatsResponse struct {
	AvgSentiment float64 `json:"avg_sentiment"`
	AvgFakeScore float64 `json:"avg_fake_score"`
}

type TopicCountResponse struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type TrendPointResponse struct {
	Date         string  `json:"date"`
	AvgSentiment float64 `json:"avg_sentiment"`
}
