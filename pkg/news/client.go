package news

import (
	"context"
	"time"
)

const defaultPageSize = 10

// Article is a raw article as returned by an external source, before scoring.
type Article struct {
	Title       string
	Description string
	URL         string
	PublishedAt time.Time
}

type Source interface {
	Fetch(ctx context.Context, query string, daysBack int) ([]Article, error)
	Name() string
}
