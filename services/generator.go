package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	appconfig "wardrobeapi/config"

	"go.uber.org/zap"
)

var (
	ErrEmptyReply      = errors.New("model returned no text")
	ErrUnreadableReply = errors.New("model response could not be decoded")
)

// OutfitGenerator sends one prompt to a text model and returns the raw reply.
type OutfitGenerator interface {
	GenerateOutfitText(ctx context.Context, prompt string) (string, error)
}

// GenerationError is returned for failed calls. StatusCode is 0 when no HTTP
// response was received.
type GenerationError struct {
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed with status %d: %v", e.StatusCode, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StatusCodeOf extracts the HTTP status from a generation error, or 0.
func StatusCodeOf(err error) int {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.StatusCode
	}
	return 0
}

// NewOutfitGenerator returns nil when no credential is configured; callers treat
// that as "use the basic selector".
func NewOutfitGenerator(ctx context.Context, cfg appconfig.LLMConfig, logger *zap.Logger) (OutfitGenerator, error) {
	if !cfg.HasCredential() {
		logger.Info("no LLM credential configured, recommendations use the basic selector")
		return nil, nil
	}
	httpClient := &http.Client{Timeout: cfg.Timeout + 5*time.Second}
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiGenerator(ctx, cfg, httpClient)
	case "openai":
		return NewOpenAIGenerator(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
