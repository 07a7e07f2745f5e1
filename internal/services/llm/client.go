package llm

import (
	"context"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single chat turn sent to the completion service
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is everything the provider needs for one call.
// Model and Temperature are fixed configuration, never computed per request.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// CompletionClient interface for different LLM providers
type CompletionClient interface {
	// Complete sends the request and returns the raw text of the first choice
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
