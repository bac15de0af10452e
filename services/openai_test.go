package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appconfig "wardrobeapi/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOpenAIServer(t *testing.T, status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultOpenAIModel, req["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

func newTestOpenAI(baseURL string) *OpenAIGenerator {
	return NewOpenAIGenerator(appconfig.LLMConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Model:    DefaultGeminiModel,
		BaseURL:  baseURL + "/v1",
		Timeout:  time.Second,
	}, &http.Client{Timeout: 5 * time.Second})
}

func TestOpenAIGeneratorReply(t *testing.T) {
	server := newOpenAIServer(t, http.StatusOK, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"outfit\":[\"a\"],\"reason\":\"b\"}"},"finish_reason":"stop"}]}`)
	defer server.Close()

	text, err := newTestOpenAI(server.URL).GenerateOutfitText(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"outfit":["a"],"reason":"b"}`, text)
}

func TestOpenAIGeneratorStatus(t *testing.T) {
	server := newOpenAIServer(t, http.StatusNotFound, `{"error":{"message":"The model does not exist","type":"invalid_request_error","code":"model_not_found"}}`)
	defer server.Close()

	_, err := newTestOpenAI(server.URL).GenerateOutfitText(context.Background(), "prompt")

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCodeOf(err))
}

func TestOpenAIGeneratorNoChoices(t *testing.T) {
	server := newOpenAIServer(t, http.StatusOK, `{"id":"1","object":"chat.completion","choices":[]}`)
	defer server.Close()

	_, err := newTestOpenAI(server.URL).GenerateOutfitText(context.Background(), "prompt")

	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestNewOutfitGeneratorProviders(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	generator, err := NewOutfitGenerator(ctx, appconfig.LLMConfig{Provider: "openai", APIKey: "k", Timeout: time.Second}, logger)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, generator)

	generator, err = NewOutfitGenerator(ctx, appconfig.LLMConfig{Provider: "gemini", APIKey: "k", Timeout: time.Second}, logger)
	require.NoError(t, err)
	assert.IsType(t, &GeminiGenerator{}, generator)

	_, err = NewOutfitGenerator(ctx, appconfig.LLMConfig{Provider: "claude", APIKey: "k"}, logger)
	assert.Error(t, err)
}
