// Package trending proxies the YouTube "most popular" chart and maps it to
// suggestions, serving a static list when YouTube is unavailable.
package trending

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/metrics"
	"github.com/edgard/maintain/internal/model"
)

// Sources reported in responses.
const (
	SourceYouTube  = "youtube"
	SourceFallback = "fallback"
)

// CategoryAll fans out over allCategories.
const CategoryAll = "all"

// Count limits for a single request.
const (
	DefaultCount = 10
	MaxCount     = 50
)

var allCategories = []string{"gaming", "music", "entertainment", "education"}

// ErrNoAPIKey is reported when the service runs without a YouTube key.
var ErrNoAPIKey = errors.New("youtube API key is not configured")

// errAborted marks YouTube calls cut short by the caller's context.
var errAborted = errors.New("request aborted")

// Response is the trending payload shared by the API and the bot.
type Response struct {
	Suggestions []model.Suggestion `json:"suggestions"`
	Source      string             `json:"source"`
	Category    string             `json:"category"`
	Error       string             `json:"error,omitempty"`
}

// Service fetches trending content.
type Service struct {
	client     *apiClient
	breaker    *gobreaker.CircuitBreaker[[]videoItem]
	log        *slog.Logger
	production bool
}

// NewService builds the trending service. Without an API key every call
// returns the static list.
func NewService(cfg config.YouTubeConfig, production bool, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger := log.With("component", "trending")

	s := &Service{log: logger, production: production}
	if cfg.APIKey != "" {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		s.client = newAPIClient(cfg.BaseURL, cfg.APIKey, cfg.RegionCode, timeout)
	}
	s.breaker = gobreaker.NewCircuitBreaker[[]videoItem](gobreaker.Settings{
		Name:    "youtube",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, errAborted)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return s
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

// Trending returns up to count trending suggestions for category.
// It never fails; upstream errors produce the static list.
func (s *Service) Trending(ctx context.Context, category string, count int) Response {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = CategoryAll
	}
	count = ClampCount(count)

	suggestions, err := s.fetch(ctx, category, count)
	if err != nil {
		if !errors.Is(err, ErrNoAPIKey) {
			s.log.WarnContext(ctx, "Serving fallback trending content", "category", category, "error", err)
		}
		metrics.TrendingRequestsTotal.WithLabelValues(SourceFallback).Inc()
		resp := Response{Suggestions: FallbackItems(count), Source: SourceFallback, Category: category}
		if !s.production && !errors.Is(err, ErrNoAPIKey) {
			resp.Error = err.Error()
		}
		return resp
	}

	metrics.TrendingRequestsTotal.WithLabelValues(SourceYouTube).Inc()
	return Response{Suggestions: suggestions, Source: SourceYouTube, Category: category}
}

func (s *Service) fetch(ctx context.Context, category string, count int) ([]model.Suggestion, error) {
	if s.client == nil {
		return nil, ErrNoAPIKey
	}
	if category != CategoryAll {
		items, err := s.popular(ctx, category, count)
		if err != nil {
			return nil, err
		}
		return mapItems(items, category), nil
	}

	perCategory := (count + len(allCategories) - 1) / len(allCategories)
	results := make([][]model.Suggestion, len(allCategories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range allCategories {
		g.Go(func() error {
			items, err := s.popular(gctx, cat, perCategory)
			if err != nil {
				// One failing category doesn't sink the others.
				s.log.WarnContext(gctx, "Trending category failed", "category", cat, "error", err)
				return nil
			}
			results[i] = mapItems(items, cat)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.Suggestion
	for _, r := range results {
		out = append(out, r...)
	}
	if len(out) == 0 {
		return nil, errors.New("no trending content from any category")
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (s *Service) popular(ctx context.Context, category string, maxResults int) ([]videoItem, error) {
	return s.breaker.Execute(func() ([]videoItem, error) {
		items, err := s.client.mostPopular(ctx, category, maxResults)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errAborted, err)
		}
		return items, err
	})
}

func mapItems(items []videoItem, category string) []model.Suggestion {
	out := make([]model.Suggestion, 0, len(items))
	for _, item := range items {
		out = append(out, toSuggestion(item, category))
	}
	return out
}

// FallbackItems returns up to count entries of the static trending list.
func FallbackItems(count int) []model.Suggestion {
	items := []model.Suggestion{
		{ID: "trend_1", Title: "Top Tech News This Week", CreatorName: "Tech Daily", DurationMinutes: model.IntPtr(15),
			Description: "Stay updated with the latest in technology", Tags: []string{"tech", "news", model.TagTrending}},
		{ID: "trend_2", Title: "Relaxing Music Mix", CreatorName: "Chill Vibes", DurationMinutes: model.IntPtr(60),
			Description: "Perfect background music for work or study", Tags: []string{"music", "chill", model.TagTrending}},
		{ID: "trend_3", Title: "Quick Coding Tutorial", CreatorName: "Code Masters", DurationMinutes: model.IntPtr(12),
			Description: "Learn something new in just 12 minutes", Tags: []string{"coding", "learning", model.TagTrending}},
		{ID: "trend_4", Title: "Gaming Highlights", CreatorName: "Pro Gamer", DurationMinutes: model.IntPtr(20),
			Description: "Best gaming moments from this week", Tags: []string{"gaming", "entertainment", model.TagTrending}},
		{ID: "trend_5", Title: "Productivity Tips", CreatorName: "Life Optimizer", DurationMinutes: model.IntPtr(8),
			Description: "Boost your daily productivity", Tags: []string{"wellness", "learning", model.TagTrending}},
	}
	for i := range items {
		items[i].Relevance = 0.7
		items[i].URL = "#"
	}
	if count < len(items) {
		items = items[:count]
	}
	return items
}
