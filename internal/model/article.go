package model

import "time"

// StoredArticle is a scored article persisted for a search query. The URL is
// the natural identity: re-ingesting the same URL overwrites every field.
type StoredArticle struct {
	ID            int64
	Title         string
	Description   string
	URL           string
	Query         string
	Topic         string
	PublishedAt   time.Time
	FetchedAt     time.Time
	Sentiment     float64
	FakeNewsScore float64
}

type AvgStats struct {
	AvgSentiment float64
	AvgFakeScore float64
}

type TopicCount struct {
	Topic string
	Count int
}

// TrendPoint is the average sentiment of all articles fetched on one UTC day.
type TrendPoint struct {
	Date         string
	AvgSentiment float64
}
