package scoring

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIScorer struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewOpenAIScorer(apiKey string) *OpenAIScorer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIScorer{
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

func (s *OpenAIScorer) Score(ctx context.Context, text string) (Scores, error) {
	text = truncateText(text)
	if text == "" {
		return Scores{}, nil
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})

	if err != nil {
		return Scores{}, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Scores{}, fmt.Errorf("no response from openai")
	}

	return parseScores(resp.Choices[0].Message.Content)
}
