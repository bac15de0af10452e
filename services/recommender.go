package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wardrobeapi/models"

	"go.uber.org/zap"
)

var (
	ErrNoItems                = errors.New("no clothing items to build an outfit from")
	ErrRecommendationInFlight = errors.New("a recommendation is already running for this user")
	ErrInvalidSelection       = errors.New("occasion and season are required")
)

type RecommendationState string

const (
	StateIdle       RecommendationState = "idle"
	StateRequesting RecommendationState = "requesting"
	StateFallback   RecommendationState = "fallback"
	StateDone       RecommendationState = "done"
)

var allowedTransitions = map[RecommendationState][]RecommendationState{
	StateIdle:       {StateRequesting},
	StateRequesting: {StateFallback, StateDone},
	StateFallback:   {StateDone},
}

type FallbackReason string

const (
	FallbackNone              FallbackReason = ""
	FallbackMissingCredential FallbackReason = "missing_credential"
	FallbackTransport         FallbackReason = "transport"
	FallbackHTTPStatus        FallbackReason = "http_status"
	FallbackMalformedReply    FallbackReason = "malformed_reply"
)

type RecommendationSource string

const (
	SourceAI    RecommendationSource = "ai"
	SourceBasic RecommendationSource = "basic"
)

var notFoundAdvisories = map[models.Language]string{
	models.JA: "基本的なコーディネートを提案します。",
	models.EN: "Showing a basic outfit suggestion instead.",
}

type Recommendation struct {
	Suggestion     models.OutfitSuggestion
	Source         RecommendationSource
	Advisory       string
	FallbackReason FallbackReason
	Transitions    []RecommendationState
}

type RecommendationProvider interface {
	Recommend(ctx context.Context, ownerID string, items []models.ClothingItem, occasion models.Occasion, season models.Season, lang models.Language) (*Recommendation, error)
}

// Recommender asks the generator for an outfit and falls back to SelectBasicOutfit.
// Each owner has at most one recommendation in flight.
type Recommender struct {
	generator OutfitGenerator
	random    RandomSource
	timeout   time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewRecommender accepts a nil generator, meaning no credential is configured.
func NewRecommender(generator OutfitGenerator, random RandomSource, timeout time.Duration, logger *zap.Logger) *Recommender {
	switch random {
	case nil:
		random = DefaultRandom
	case DefaultRandom:
	default:
		random = &lockedRandom{src: random}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{
		generator: generator,
		random:    random,
		timeout:   timeout,
		logger:    logger,
		inFlight:  make(map[string]struct{}),
	}
}

// lockedRandom serializes access to sources such as *rand.Rand, which are not
// safe for concurrent use.
type lockedRandom struct {
	mu  sync.Mutex
	src RandomSource
}

func (l *lockedRandom) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

type recommendationRun struct {
	state RecommendationState
	trace []RecommendationState
}

func newRecommendationRun() *recommendationRun {
	return &recommendationRun{state: StateIdle, trace: []RecommendationState{StateIdle}}
}

func (run *recommendationRun) moveTo(next RecommendationState) error {
	for _, allowed := range allowedTransitions[run.state] {
		if allowed == next {
			run.state = next
			run.trace = append(run.trace, next)
			return nil
		}
	}
	return fmt.Errorf("invalid recommendation transition %s -> %s", run.state, next)
}

// tryBegin marks ownerID as in flight. It returns false when a run is already active.
func (r *Recommender) tryBegin(ownerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[ownerID]; busy {
		return false
	}
	r.inFlight[ownerID] = struct{}{}
	return true
}

func (r *Recommender) finish(ownerID string) {
	r.mu.Lock()
	delete(r.inFlight, ownerID)
	r.mu.Unlock()
}

func (r *Recommender) Recommend(ctx context.Context, ownerID string, items []models.ClothingItem, occasion models.Occasion, season models.Season, lang models.Language) (*Recommendation, error) {
	if !occasion.IsValid() || !season.IsValid() {
		return nil, ErrInvalidSelection
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if !r.tryBegin(ownerID) {
		return nil, ErrRecommendationInFlight
	}
	defer r.finish(ownerID)

	run := newRecommendationRun()
	if err := run.moveTo(StateRequesting); err != nil {
		return nil, err
	}

	reason, advisory, suggestion := r.requestSuggestion(ctx, ownerID, items, occasion, season, lang)
	result := &Recommendation{Advisory: advisory, FallbackReason: reason}
	if reason == FallbackNone {
		result.Suggestion = *suggestion
		result.Source = SourceAI
	} else {
		if err := run.moveTo(StateFallback); err != nil {
			return nil, err
		}
		result.Suggestion = SelectBasicOutfit(items, occasion, season, r.random, lang)
		result.Source = SourceBasic
	}
	if err := run.moveTo(StateDone); err != nil {
		return nil, err
	}
	result.Transitions = run.trace
	return result, nil
}

// requestSuggestion makes the single remote attempt. A non-empty FallbackReason
// means the caller should use the basic selector.
func (r *Recommender) requestSuggestion(ctx context.Context, ownerID string, items []models.ClothingItem, occasion models.Occasion, season models.Season, lang models.Language) (FallbackReason, string, *models.OutfitSuggestion) {
	if r.generator == nil {
		r.logger.Info("recommendation without credential", zap.String("user_id", ownerID))
		return FallbackMissingCredential, "", nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	prompt := BuildOutfitPrompt(items, occasion, season, lang)
	reply, err := r.generator.GenerateOutfitText(ctx, prompt)
	if err != nil {
		status := StatusCodeOf(err)
		fields := []zap.Field{zap.String("user_id", ownerID), zap.Int("status", status), zap.Error(err)}
		switch {
		case status == http.StatusNotFound:
			r.logger.Warn("recommendation model not found", fields...)
			return FallbackHTTPStatus, notFoundAdvisory(lang), nil
		case status != 0:
			r.logger.Warn("recommendation call rejected", fields...)
			return FallbackHTTPStatus, "", nil
		case errors.Is(err, ErrEmptyReply), errors.Is(err, ErrUnreadableReply):
			r.logger.Warn("recommendation reply empty", fields...)
			return FallbackMalformedReply, "", nil
		default:
			r.logger.Warn("recommendation call failed", fields...)
			return FallbackTransport, "", nil
		}
	}

	suggestion, err := ExtractSuggestion(reply)
	if err != nil {
		r.logger.Warn("recommendation reply malformed", zap.String("user_id", ownerID), zap.Error(err))
		return FallbackMalformedReply, "", nil
	}
	return FallbackNone, "", suggestion
}

func notFoundAdvisory(lang models.Language) string {
	if advisory, ok := notFoundAdvisories[lang]; ok {
		return advisory
	}
	return notFoundAdvisories[models.DefaultLanguage]
}
