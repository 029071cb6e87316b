package summarizer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/infra/summarizer"
)

func newOpenAI(t *testing.T, h http.HandlerFunc) *summarizer.OpenAI {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return summarizer.NewOpenAI(summarizer.OpenAIConfig{
		APIKey:    "sk-test",
		Model:     summarizer.DefaultOpenAIModel,
		BaseURL:   server.URL + "/v1",
		Timeout:   5 * time.Second,
		MinLength: 30,
	})
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   summarizer.DefaultOpenAIModel,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
}

func TestOpenAI_Summarize(t *testing.T) {
	var req struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	engine := newOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, chatCompletion("Costs rose. Revenue fell."))
	})

	got, err := engine.Summarize(context.Background(), "Quarterly report body.", 8192, 200)
	require.NoError(t, err)
	assert.Equal(t, "Costs rose. Revenue fell.", got)

	assert.Equal(t, summarizer.DefaultOpenAIModel, req.Model)
	assert.Equal(t, 200, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "between 22 and 150 words")
	assert.True(t, strings.HasSuffix(req.Messages[0].Content, "Quarterly report body."))
}

func TestOpenAI_Unauthorized(t *testing.T) {
	calls := 0
	engine := newOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		})
	})

	_, err := engine.Summarize(context.Background(), "text", 8192, 200)
	var infErr *entity.InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, summarizer.BackendOpenAI, infErr.Backend)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Equal(t, 1, calls, "401 is not retryable")
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	engine := newOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		resp := chatCompletion("")
		resp["choices"] = []any{}
		writeJSON(w, http.StatusOK, resp)
	})

	_, err := engine.Summarize(context.Background(), "text", 8192, 200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestOpenAIConfig_Validate(t *testing.T) {
	assert.NoError(t, summarizer.OpenAIConfig{APIKey: "k", Model: "m", Timeout: time.Second}.Validate())
	assert.Error(t, summarizer.OpenAIConfig{Model: "m", Timeout: time.Second}.Validate())
	assert.Error(t, summarizer.OpenAIConfig{APIKey: "k", Timeout: time.Second}.Validate())
	assert.Error(t, summarizer.OpenAIConfig{APIKey: "k", Model: "m"}.Validate())
}
