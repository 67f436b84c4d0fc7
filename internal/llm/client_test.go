package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func completion(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]interface{}{
			{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, structured bool) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.LLMConfig{
		APIKey:           "test-key",
		BaseURL:          srv.URL,
		Model:            "test-model",
		StructuredOutput: structured,
		Timeout:          5 * time.Second,
	}, zap.NewNop())
	c.retry = retry.Policy{Retries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	return c
}

func TestClient_Generate(t *testing.T) {
	t.Run("Structured request and response", func(t *testing.T) {
		var got map[string]interface{}
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, completion(`{"description":"D","history":"H","attractions":["A"]}`))
		}, true)

		s, err := c.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "D", s.Description)
		assert.Equal(t, []string{"A"}, s.Attractions)

		assert.Equal(t, "test-model", got["model"])
		format, ok := got["response_format"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "json_schema", format["type"])
	})

	t.Run("Plain text falls back to labeled sections", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.NotContains(t, body, "response_format")
			fmt.Fprint(w, completion(labeledResponse))
		}, false)

		s, err := c.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Len(t, s.Attractions, 2)
	})

	t.Run("Malformed content", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, completion("I cannot help with that."))
		}, false)

		_, err := c.Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, ErrMalformedOutput)
	})

	t.Run("Server errors are retried once", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				fmt.Fprint(w, `{"error":{"message":"upstream down","type":"server_error"}}`)
				return
			}
			fmt.Fprint(w, completion(labeledResponse))
		}, false)

		_, err := c.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
		}, false)

		_, err := c.Generate(context.Background(), "prompt")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMalformedOutput)
		assert.Equal(t, int32(1), calls.Load())
	})
}
