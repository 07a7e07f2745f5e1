package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"itinerario\": [], \"estimado_total\": 0}"}}
  ],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient("sk-test", srv.URL+"/v1/", 0)
	require.NoError(t, err)
	return client
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "", 0)
	assert.Error(t, err)
}

func TestCompleteSendsMessagesAndReturnsContent(t *testing.T) {
	var got struct {
		Model       string    `json:"model"`
		Temperature float64   `json:"temperature"`
		Messages    []Message `json:"messages"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})

	text, err := client.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		Messages: []Message{
			{Role: RoleSystem, Content: "system text"},
			{Role: RoleUser, Content: "user text"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"itinerario": [], "estimado_total": 0}`, text)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "system text", got.Messages[0].Content)
	assert.Equal(t, RoleUser, got.Messages[1].Role)
	assert.Equal(t, "user text", got.Messages[1].Content)
}

func TestCompleteClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{name: "auth failure is permanent", status: http.StatusUnauthorized, transient: false},
		{name: "rate limit is transient", status: http.StatusTooManyRequests, transient: true},
		{name: "server error is transient", status: http.StatusBadGateway, transient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "test_error"}}`))
			})

			_, err := client.Complete(context.Background(), CompletionRequest{
				Model:    "gpt-3.5-turbo",
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
			})
			require.Error(t, err)

			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.Equal(t, tt.transient, pe.Transient)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "created": 0, "model": "m", "choices": []}`))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "gpt-3.5-turbo",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	assert.False(t, IsTransient(err))
}

func TestCompleteRejectsUnknownRole(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called")
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "tool", Content: "hi"}},
	})
	assert.Error(t, err)
}

func TestClassifyDeadlineIsTransient(t *testing.T) {
	pe := classifyError(context.DeadlineExceeded)
	assert.True(t, pe.Transient)

	pe = classifyError(context.Canceled)
	assert.False(t, pe.Transient)
}
