package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/model"
)

// Telegram rejects callback data longer than 64 bytes. The longest prefix
// is "saveto_knowledge_", which leaves room for refs up to maxRefLength.
const (
	maxCallbackData = 64
	maxRefLength    = 40
	tokenPrefix     = "~"
	suggestionTTL   = time.Hour
)

// suggestionRef returns the callback reference for a video id: the id
// itself when it fits, a short stable token otherwise.
func suggestionRef(videoID string) string {
	if len(videoID) <= maxRefLength {
		return videoID
	}
	sum := sha256.Sum256([]byte(videoID))
	return tokenPrefix + hex.EncodeToString(sum[:8])
}

func suggestionKey(ref string) string {
	return "sug:" + ref
}

// rememberSuggestion caches s for later button presses and returns its ref.
func rememberSuggestion(ctx context.Context, c cache.Cache, s model.Suggestion) (string, error) {
	ref := suggestionRef(s.ID)
	return ref, c.Put(ctx, suggestionKey(ref), s, suggestionTTL)
}

// lookupSuggestion returns the cached suggestion for ref, or nil once expired.
func lookupSuggestion(ctx context.Context, c cache.Cache, ref string) (*model.Suggestion, error) {
	var s model.Suggestion
	found, err := c.Get(ctx, suggestionKey(ref), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}
