package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	appconfig "wardrobeapi/config"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, cfg appconfig.LLMConfig, httpClient *http.Client) (*GeminiGenerator, error) {
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	client := *httpClient
	client.Transport = &apiKeyTransport{base: base, apiKey: cfg.APIKey}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &client,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL, APIVersion: "v1beta"}
	}
	genaiClient, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{client: genaiClient, model: model}, nil
}

func (g *GeminiGenerator) GenerateOutfitText(ctx context.Context, prompt string) (string, error) {
	status := &responseStatus{}
	ctx = context.WithValue(ctx, responseStatusKey{}, status)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		code := status.get()
		if code >= 200 && code < 300 {
			return "", &GenerationError{Err: fmt.Errorf("%w: %v", ErrUnreadableReply, err)}
		}
		return "", &GenerationError{StatusCode: code, Err: err}
	}
	return firstCandidateText(result)
}

// firstCandidateText reads candidates[0].content.parts[0].text.
func firstCandidateText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		return "", ErrEmptyReply
	}
	content := result.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil || content.Parts[0].Text == "" {
		return "", ErrEmptyReply
	}
	return content.Parts[0].Text, nil
}

type responseStatusKey struct{}

type responseStatus struct {
	mu   sync.Mutex
	code int
}

func (s *responseStatus) set(code int) {
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
}

func (s *responseStatus) get() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// apiKeyTransport sends the key as a query parameter as well as genai's header, and
// records the response status on the request context.
type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	query := req.URL.Query()
	if query.Get("key") == "" {
		query.Set("key", t.apiKey)
		req.URL.RawQuery = query.Encode()
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if status, ok := req.Context().Value(responseStatusKey{}).(*responseStatus); ok {
		status.set(resp.StatusCode)
	}
	return resp, nil
}
