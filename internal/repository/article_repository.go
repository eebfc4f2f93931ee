package repository

import (
	"database/sql"
	"math"
	"time"

	"newslens/internal/model"
)

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Upsert inserts the article or, when the URL already exists, overwrites every
// field of the stored row (last write wins). It reports whether the row was a
// net-new insertion.
func (r *ArticleRepository) Upsert(article *model.StoredArticle) (bool, error) {
	var inserted bool
	err := r.db.QueryRow(`
		INSERT INTO article(title, description, url, query, topic, published_at, fetched_at, sentiment, fake_news_score)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			query = EXCLUDED.query,
			topic = EXCLUDED.topic,
			published_at = EXCLUDED.published_at,
			fetched_at = EXCLUDED.fetched_at,
			sentiment = EXCLUDED.sentiment,
			fake_news_score = EXCLUDED.fake_news_score
		RETURNING id, (xmax = 0)
	`, article.Title, article.Description, article.URL, article.Query, article.Topic,
		article.PublishedAt, article.FetchedAt, article.Sentiment, article.FakeNewsScore,
	).Scan(&article.ID, &inserted)

	if err != nil {
		return false, err
	}

	return inserted, nil
}

// FreshByQuery returns the articles ingested under the query with fetched_at
// at or after the cutoff.
func (r *ArticleRepository) FreshByQuery(query string, cutoff time.Time) ([]model.StoredArticle, error) {
	rows, err := r.db.Query(`
		SELECT id, title, description, url, query, topic, published_at, fetched_at, sentiment, fake_news_score
		FROM article
		WHERE query = $1 AND fetched_at >= $2
		ORDER BY fetched_at DESC
	`, query, cutoff)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

// LatestByTopic returns up to limit articles for the topic with fetched_at at
// or after the cutoff, most recent first.
func (r *ArticleRepository) LatestByTopic(topic string, cutoff time.Time, limit int) ([]model.StoredArticle, error) {
	rows, err := r.db.Query(`
		SELECT id, title, description, url, query, topic, published_at, fetched_at, sentiment, fake_news_score
		FROM article
		WHERE topic = $1 AND fetched_at >= $2
		ORDER BY fetched_at DESC
		LIMIT $3
	`, topic, cutoff, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

// AvgStats averages sentiment and fake-news score over every stored article,
// rounded to 3 decimal places. An empty table yields zeros, not an error.
func (r *ArticleRepository) AvgStats() (model.AvgStats, error) {
	var stats model.AvgStats
	err := r.db.QueryRow(`
		SELECT COALESCE(AVG(sentiment), 0), COALESCE(AVG(fake_news_score), 0)
		FROM article
	`).Scan(&stats.AvgSentiment, &stats.AvgFakeScore)

	if err != nil {
		return model.AvgStats{}, err
	}

	stats.AvgSentiment = round3(stats.AvgSentiment)
	stats.AvgFakeScore = round3(stats.AvgFakeScore)
	return stats, nil
}

// TopicStats counts stored articles per topic, highest count first, top 10.
func (r *ArticleRepository) TopicStats() ([]model.TopicCount, error) {
	rows, err := r.db.Query(`
		SELECT topic, COUNT(*)
		FROM article
		GROUP BY topic
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []model.TopicCount
	for rows.Next() {
		var tc model.TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, err
		}
		stats = append(stats, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// SentimentTrend groups articles fetched at or after the cutoff by UTC
// calendar date and averages their sentiment, ascending by date. Days without
// articles produce no entry.
func (r *ArticleRepository) SentimentTrend(cutoff time.Time) ([]model.TrendPoint, error) {
	rows, err := r.db.Query(`
		SELECT to_char(fetched_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, AVG(sentiment)
		FROM article
		WHERE fetched_at >= $1
		GROUP BY day
		ORDER BY day ASC
	`, cutoff)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []model.TrendPoint
	for rows.Next() {
		var p model.TrendPoint
		if err := rows.Scan(&p.Date, &p.AvgSentiment); err != nil {
			return nil, err
		}
		p.AvgSentiment = round3(p.AvgSentiment)
		trend = append(trend, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trend, nil
}

// PruneOlderThan deletes articles fetched before the cutoff and returns the
// number of rows removed.
func (r *ArticleRepository) PruneOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`
		DELETE FROM article WHERE fetched_at < $1
	`, cutoff)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *ArticleRepository) Count() (int, error) {
	var total int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM article
	`).Scan(&total)
	return total, err
}

func scanArticles(rows *sql.Rows) ([]model.StoredArticle, error) {
	var articles []model.StoredArticle
	for rows.Next() {
		var a model.StoredArticle
		var publishedAt sql.NullTime
		err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.URL, &a.Query, &a.Topic,
			&publishedAt, &a.FetchedAt, &a.Sentiment, &a.FakeNewsScore)
		if err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			a.PublishedAt = publishedAt.Time
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
