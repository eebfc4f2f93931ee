package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Model input is capped; headlines plus descriptions rarely exceed this.
const maxScoringChars = 512

const systemPrompt = `You are a news verification assistant. Given the headline and description of a news article, estimate two things:

1. The probability that the article is fabricated or misleading.
2. The emotional tone of the text.

Output as JSON only, no other text:
{
  "fake_probability": 0.0-1.0 likelihood the article is fake news,
  "sentiment_label": "positive" or "negative" or "neutral",
  "sentiment_confidence": 0.0-1.0 how strong the tone is
}`

// Scores is the uniform scoring contract: a fake-news probability in [0, 1]
// and a signed sentiment polarity in [-1, 1].
type Scores struct {
	FakeNewsScore float64
	Sentiment     float64
}

type Scorer interface {
	Score(ctx context.Context, text string) (Scores, error)
}

func truncateText(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxScoringChars {
		return text
	}

	// Cut on a rune boundary so a multi-byte character is never split.
	cut := maxScoringChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

func parseScores(content string) (Scores, error) {
	content = cleanJSONResponse(content)

	var parsed struct {
		FakeProbability     float64 `json:"fake_probability"`
		SentimentLabel      string  `json:"sentiment_label"`
		SentimentConfidence float64 `json:"sentiment_confidence"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Scores{}, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}

	confidence := clamp(parsed.SentimentConfidence, 0, 1)

	var sentiment float64
	switch strings.ToLower(strings.TrimSpace(parsed.SentimentLabel)) {
	case "positive":
		sentiment = confidence
	case "negative":
		sentiment = -confidence
	case "neutral":
		sentiment = 0
	default:
		return Scores{}, fmt.Errorf("unknown sentiment label %q", parsed.SentimentLabel)
	}

	return Scores{
		FakeNewsScore: clamp(parsed.FakeProbability, 0, 1),
		Sentiment:     sentiment,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
