package model

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easel-ai/easel/task"
)

func completionBody(content string) string {
	payload := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}

	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]ClientOption{
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
		WithRetryConfig(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffMultiplier: 1.0}),
	}, opts...)

	client, err := NewClient(opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv(apiKeyEnv, "")

	_, err := NewClient()
	require.Error(t, err)
	assert.Contains(t, err.Error(), apiKeyEnv)
}

func TestCompleteRaw(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("the answer is 4"))
	})

	output, err := client.Complete(context.Background(), CompletionRequest{
		Description: "add two numbers",
		Agent:       "math",
		Prompt:      "what is 2+2?",
	})
	require.NoError(t, err)

	assert.Equal(t, task.FormatRaw, output.Format)
	assert.Equal(t, "the answer is 4", output.Raw)
	assert.Equal(t, "math", output.Agent)
	assert.Equal(t, "the answer is 4", output.String())
}

func TestCompleteStructured(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("```json\n{\"reflection\":\"looks right\",\"satisfactory\":\"yes\"}\n```"))
	})

	output, err := client.Complete(context.Background(), CompletionRequest{
		Prompt: "critique the answer",
	}, WithResponseSchema("reflection", &task.Reflection{}))
	require.NoError(t, err)

	assert.Equal(t, task.FormatJSON, output.Format)
	assert.Equal(t, "looks right", output.JSONDict["reflection"])

	encoded, ok := output.JSON()
	require.True(t, ok)
	assert.Contains(t, encoded, `"satisfactory":"yes"`)
}

func TestCompleteStructuredRejectsMalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("not json at all"))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Prompt: "critique the answer",
	}, WithResponseSchema("reflection", &task.Reflection{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
			return
		}
		fmt.Fprint(w, completionBody("recovered"))
	})

	output, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, "recovered", output.Raw)
}

func TestCompleteDoesNotRetryInvalidRequest(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad request"}}`)
	})

	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ProviderErrorKindInvalidRequest, providerErr.Kind)
}

func TestCompleteRequiresPrompt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantKind      ProviderErrorKind
		wantRetryable bool
	}{
		{"rate limit", &openai.Error{StatusCode: 429}, ProviderErrorKindRateLimitExceeded, true},
		{"overloaded", &openai.Error{StatusCode: 503}, ProviderErrorKindOverloaded, true},
		{"internal", &openai.Error{StatusCode: 500}, ProviderErrorKindInternal, true},
		{"timeout", &openai.Error{StatusCode: 408}, ProviderErrorKindTimeout, true},
		{"invalid request", &openai.Error{StatusCode: 400}, ProviderErrorKindInvalidRequest, false},
		{"authentication", &openai.Error{StatusCode: 401}, ProviderErrorKindAuthentication, false},
		{"canceled context", context.Canceled, ProviderErrorKindCanceled, false},
		{"deadline", context.DeadlineExceeded, ProviderErrorKindTimeout, true},
		{"unrecognized", fmt.Errorf("boom"), ProviderErrorKindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantRetryable, got.Retryable())
		})
	}
}

func TestRetryConfigNextDelay(t *testing.T) {
	cfg := RetryConfig{
		InitialDelay:       100 * time.Millisecond,
		MaxDelay:           time.Second,
		UseProviderBackoff: true,
		BackoffMultiplier:  2.0,
	}

	assert.Equal(t, 100*time.Millisecond, cfg.nextDelay(1, 0))
	assert.Equal(t, 200*time.Millisecond, cfg.nextDelay(2, 0))
	assert.Equal(t, 400*time.Millisecond, cfg.nextDelay(3, 0))
	assert.Equal(t, time.Second, cfg.nextDelay(10, 0))

	// Provider hint wins when present.
	assert.Equal(t, 5*time.Second, cfg.nextDelay(1, 5*time.Second))
}
