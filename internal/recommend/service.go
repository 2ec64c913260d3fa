// Package recommend is the recommendation engine: it prompts Gemini for
// suggestions and degrades to the user's saves when the model is unavailable.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/gemini"
	"github.com/edgard/maintain/internal/metrics"
	"github.com/edgard/maintain/internal/model"
)

// Count limits for a single request.
const (
	DefaultCount = 10
	MaxCount     = 20
)

// FallbackModel is reported as the model name when fallback suggestions are served.
const FallbackModel = "fallback"

// ErrNoSuggestions means the model answered but nothing could be parsed.
var ErrNoSuggestions = errors.New("model response contained no suggestions")

// errAborted marks model calls cut short by the caller's own context. The
// breaker ignores them.
var errAborted = errors.New("request aborted")

// SavesReader is the slice of the store the fallback needs.
type SavesReader interface {
	GetUserSaves(ctx context.Context, userID string, list model.SaveList) ([]database.SavedItem, error)
}

// Options tune the service.
type Options struct {
	// Production hides error details from responses.
	Production bool
	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32
}

// Service produces recommendations.
type Service struct {
	client     gemini.Client
	saves      SavesReader
	breaker    *gobreaker.CircuitBreaker[string]
	log        *slog.Logger
	production bool
	shuffle    func(n int, swap func(i, j int))
}

// NewService builds the engine. client may be nil, in which case every
// request is served from the fallback.
func NewService(client gemini.Client, saves SavesReader, opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	logger := log.With("component", "recommend")

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "gemini",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, errAborted)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Service{
		client:     client,
		saves:      saves,
		breaker:    breaker,
		log:        logger,
		production: opts.Production,
		shuffle:    defaultShuffle,
	}
}

// ClampCount applies the default and bounds to a requested count.
func ClampCount(count int) int {
	switch {
	case count == 0:
		return DefaultCount
	case count < 1:
		return 1
	case count > MaxCount:
		return MaxCount
	}
	return count
}

// Recommend never fails: model errors turn into fallback suggestions.
// userID may be empty for anonymous requests.
func (s *Service) Recommend(ctx context.Context, userID string, req model.RecommendRequest) model.RecommendResponse {
	count := ClampCount(req.Count)

	suggestions, err := s.generate(ctx, req, count)
	if err == nil {
		metrics.RecordRecommendation(false)
		return model.RecommendResponse{
			Suggestions:  suggestions,
			Model:        s.client.ModelName(),
			UsedFallback: false,
		}
	}

	s.log.WarnContext(ctx, "Serving fallback recommendations", "user_id", userID, "error", err)
	metrics.RecordRecommendation(true)
	resp := model.RecommendResponse{
		Suggestions:  s.Fallback(ctx, userID, req.Message, count),
		Model:        FallbackModel,
		UsedFallback: true,
	}
	if !s.production {
		resp.Error = err.Error()
	}
	return resp
}

func (s *Service) generate(ctx context.Context, req model.RecommendRequest, count int) ([]model.Suggestion, error) {
	if s.client == nil {
		return nil, gemini.ErrMissingAPIKey
	}

	prompt := gemini.RecommendPrompt(count, req.Message, req.Mood, req.Profile)
	text, err := s.breaker.Execute(func() (string, error) {
		start := time.Now()
		defer func() { metrics.GeminiLatency.Observe(time.Since(start).Seconds()) }()
		text, err := s.client.Generate(ctx, gemini.RecommendSystemInstruction, prompt)
		if err != nil && ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", errAborted, err)
		}
		return text, err
	})
	if err != nil {
		return nil, err
	}

	suggestions := ParseSuggestions(text, count)
	if len(suggestions) == 0 {
		s.log.DebugContext(ctx, "Unparseable model response", "response_length", len(text))
		return nil, ErrNoSuggestions
	}
	return suggestions, nil
}

// Fallback builds suggestions from the user's saves, placeholders when there
// are none, or error items when the saves can't be read.
func (s *Service) Fallback(ctx context.Context, userID, message string, count int) []model.Suggestion {
	if userID == "" || s.saves == nil {
		return placeholderSuggestions(message, count)
	}
	items, err := s.saves.GetUserSaves(ctx, userID, "")
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load saves for fallback", "user_id", userID, "error", err)
		return errorSuggestions(count)
	}
	if len(items) == 0 {
		return placeholderSuggestions(message, count)
	}
	return savedSuggestions(items, count, s.shuffle)
}
