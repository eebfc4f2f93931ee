package scoring

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicScorer struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicScorer(apiKey string) *AnthropicScorer {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicScorer{
		client: &client,
		model:  anthropic.Model("claude-haiku-4-5"),
	}
}

func (s *AnthropicScorer) Score(ctx context.Context, text string) (Scores, error) {
	text = truncateText(text)
	if text == "" {
		return Scores{}, nil
	}

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})

	if err != nil {
		return Scores{}, fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return Scores{}, fmt.Errorf("no response from anthropic")
	}

	return parseScores(resp.Content[0].Text)
}
