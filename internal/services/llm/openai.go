package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient builds a chat completion client. Retries on 408/409/429/5xx
// and connection errors are handled by the SDK with exponential backoff.
func NewOpenAIClient(apiKey, baseURL string, maxRetries int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		default:
			return "", &ProviderError{Err: fmt.Errorf("unsupported message role %q", m.Role)}
		}
	}

	log.Debug().
		Str("model", req.Model).
		Int("messages", len(messages)).
		Msg("Sending chat completion")

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Err: ErrEmptyCompletion}
	}

	log.Debug().
		Str("model", resp.Model).
		Int64("total_tokens", resp.Usage.TotalTokens).
		Msg("Chat completion received")

	return resp.Choices[0].Message.Content, nil
}
