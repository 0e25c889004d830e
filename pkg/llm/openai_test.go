package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAIServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "a post #a #b #c"}, "finish_reason": "length"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("sk-test", srv.URL+"/v1/", "gpt-test")
	require.NoError(t, err)

	out, err := NewCompleter(p, "gpt-test", 0.7).Complete(context.Background(), "You are a writer", "write it")
	require.NoError(t, err)
	assert.Equal(t, "a post #a #b #c", out)

	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a writer", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "write it", got.Messages[1].Content)
}

func TestOpenAIProvider_ResponseMapping(t *testing.T) {
	srv, _ := openAIServer(t, http.StatusOK, `{
		"id": "chatcmpl-2",
		"model": "gpt-test",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "cut"}, "finish_reason": "length"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`)

	p, err := NewOpenAIProvider("sk-test", srv.URL+"/v1/", "gpt-test")
	require.NoError(t, err)

	resp, err := p.Complete(context.Background(), &CompletionRequest{Messages: []Message{UserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "chatcmpl-2", resp.ID)
	assert.Equal(t, "max_tokens", resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOpenAIProvider_NoRetry(t *testing.T) {
	srv, hits := openAIServer(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`)

	p, err := NewOpenAIProvider("sk-test", srv.URL+"/v1/", "gpt-test")
	require.NoError(t, err)

	_, err = NewCompleter(p, "gpt-test", 0.7).Complete(context.Background(), "SYS", "USER")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load(), "a failed completion is sent exactly once")

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "http_500", pe.Code)
}

func TestOpenAIProvider_ErrorCodes(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		auth      bool
		rateLimit bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, auth: true},
		{name: "rate limited", status: http.StatusTooManyRequests, rateLimit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := openAIServer(t, tt.status, `{"error":{"message":"nope","type":"invalid_request_error"}}`)

			p, err := NewOpenAIProvider("sk-test", srv.URL+"/v1/", "gpt-test")
			require.NoError(t, err)

			_, err = p.Complete(context.Background(), &CompletionRequest{Messages: []Message{UserMessage("hi")}})
			require.Error(t, err)
			assert.Equal(t, tt.auth, IsAuthError(err))
			assert.Equal(t, tt.rateLimit, IsRateLimitError(err))
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	srv, _ := openAIServer(t, http.StatusOK, `{"id":"chatcmpl-3","model":"gpt-test","choices":[]}`)

	p, err := NewOpenAIProvider("sk-test", srv.URL+"/v1/", "gpt-test")
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), &CompletionRequest{Messages: []Message{UserMessage("hi")}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewOpenAIProvider_Validation(t *testing.T) {
	_, err := NewOpenAIProvider("", "", "gpt-test")
	assert.Error(t, err)

	_, err = NewOpenAIProvider("sk-test", "", "")
	assert.Error(t, err)
}
