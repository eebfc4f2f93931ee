package news

import (
	"context"
	"strings"
)

// Registry routes queries to sources. Topics registered for a specific source
// go there; everything else goes to the primary free-text source.
type Registry struct {
	primary Source
	byTopic map[string]Source
}

func NewRegistry(primary Source) *Registry {
	return &Registry{
		primary: primary,
		byTopic: make(map[string]Source),
	}
}

func (r *Registry) Register(topic string, s Source) {
	if s == nil {
		return
	}
	r.byTopic[strings.ToLower(strings.TrimSpace(topic))] = s
}

func (r *Registry) Name() string {
	return "registry"
}

func (r *Registry) Fetch(ctx context.Context, query string, daysBack int) ([]Article, error) {
	if s, ok := r.byTopic[strings.ToLower(strings.TrimSpace(query))]; ok {
		return s.Fetch(ctx, query, daysBack)
	}
	return r.primary.Fetch(ctx, query, daysBack)
}
