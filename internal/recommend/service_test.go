package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

type fakeClient struct {
	text  string
	err   error
	calls int
}

func (f *fakeClient) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeClient) ModelName() string { return "gemini-2.0-flash" }

type fakeSaves struct {
	items []database.SavedItem
	err   error
}

func (f fakeSaves) GetUserSaves(context.Context, string, model.SaveList) ([]database.SavedItem, error) {
	return f.items, f.err
}

func savedItem(videoID, list, desc string, tags ...string) database.SavedItem {
	return database.SavedItem{
		VideoID: videoID,
		List:    list,
		Suggestion: database.NewJSON(model.Suggestion{
			ID: videoID, Title: "Saved " + videoID, CreatorName: "C", Description: desc, Tags: tags,
		}),
	}
}

func noShuffle(int, func(i, j int)) {}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 10, ClampCount(0))
	assert.Equal(t, 1, ClampCount(-5))
	assert.Equal(t, 7, ClampCount(7))
	assert.Equal(t, 20, ClampCount(99))
}

func TestRecommendFromModel(t *testing.T) {
	client := &fakeClient{text: `[{"id":"a","title":"A"},{"id":"b","title":"B"},{"id":"c","title":"C"}]`}
	svc := NewService(client, nil, Options{}, nil)

	resp := svc.Recommend(context.Background(), "", model.RecommendRequest{Message: "go", Count: 2})
	assert.False(t, resp.UsedFallback)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
	assert.Empty(t, resp.Error)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "a", resp.Suggestions[0].ID)
}

func TestRecommendWithoutClient(t *testing.T) {
	svc := NewService(nil, nil, Options{}, nil)

	resp := svc.Recommend(context.Background(), "", model.RecommendRequest{Message: "jazz", Count: 3})
	assert.True(t, resp.UsedFallback)
	assert.Equal(t, FallbackModel, resp.Model)
	assert.NotEmpty(t, resp.Error)
	require.Len(t, resp.Suggestions, 3)

	first := resp.Suggestions[0]
	assert.Equal(t, "fallback_1", first.ID)
	assert.Equal(t, "No saved content yet - jazz", first.Title)
	assert.Equal(t, "Your Saves", first.CreatorName)
	assert.Equal(t, 30, first.Minutes())
	assert.Equal(t, []string{"saved", "fallback"}, first.Tags)
	assert.Equal(t, 0.5, first.Relevance)
	assert.Equal(t, "#", first.URL)
	assert.Equal(t, "fallback_3", resp.Suggestions[2].ID)
}

func TestRecommendFallbackFromSaves(t *testing.T) {
	client := &fakeClient{err: errors.New("upstream down")}
	saves := fakeSaves{items: []database.SavedItem{
		savedItem("v1", "learn", "Deep dive", "go"),
		savedItem("v2", "listen", ""),
		savedItem("v3", "other", "x"),
	}}
	svc := NewService(client, saves, Options{Production: true}, nil)
	svc.shuffle = noShuffle

	resp := svc.Recommend(context.Background(), "user-1", model.RecommendRequest{Message: "anything", Count: 2})
	assert.True(t, resp.UsedFallback)
	assert.Empty(t, resp.Error, "production responses hide errors")
	require.Len(t, resp.Suggestions, 2)

	assert.Equal(t, "saved_v1_0", resp.Suggestions[0].ID)
	assert.Equal(t, "From your saves (learn) - Deep dive", resp.Suggestions[0].Description)
	assert.Equal(t, []string{"go", "saved", "learn"}, resp.Suggestions[0].Tags)
	assert.InDelta(t, 0.9, resp.Suggestions[0].Relevance, 1e-9)

	assert.Equal(t, "saved_v2_1", resp.Suggestions[1].ID)
	assert.Equal(t, "From your saves (listen) - Saved content", resp.Suggestions[1].Description)
	assert.InDelta(t, 0.8, resp.Suggestions[1].Relevance, 1e-9)
}

func TestSavedSuggestionsRelevanceFloor(t *testing.T) {
	var items []database.SavedItem
	for i := 0; i < 8; i++ {
		items = append(items, savedItem(string(rune('a'+i)), "other", ""))
	}
	got := savedSuggestions(items, 8, noShuffle)
	require.Len(t, got, 8)
	assert.InDelta(t, 0.4, got[5].Relevance, 1e-9)
	assert.InDelta(t, 0.4, got[7].Relevance, 1e-9)
}

func TestRecommendFallbackSavesError(t *testing.T) {
	svc := NewService(&fakeClient{text: "no json"}, fakeSaves{err: errors.New("db gone")}, Options{}, nil)

	resp := svc.Recommend(context.Background(), "user-1", model.RecommendRequest{Message: "x", Count: 2})
	assert.True(t, resp.UsedFallback)
	assert.Equal(t, ErrNoSuggestions.Error(), resp.Error)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "error_1", resp.Suggestions[0].ID)
	assert.Equal(t, "AI temporarily unavailable", resp.Suggestions[0].Title)
	assert.Equal(t, []string{"error"}, resp.Suggestions[0].Tags)
}

func TestCircuitBreakerOpens(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	svc := NewService(client, nil, Options{BreakerFailures: 2}, nil)

	for i := 0; i < 4; i++ {
		resp := svc.Recommend(context.Background(), "", model.RecommendRequest{Message: "x", Count: 1})
		assert.True(t, resp.UsedFallback)
	}
	assert.Equal(t, 2, client.calls, "open breaker short-circuits further calls")
}

func TestCanceledRequestsKeepBreakerClosed(t *testing.T) {
	client := &fakeClient{err: context.Canceled}
	svc := NewService(client, nil, Options{BreakerFailures: 2}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		resp := svc.Recommend(ctx, "", model.RecommendRequest{Message: "x", Count: 1})
		assert.True(t, resp.UsedFallback)
	}
	assert.Equal(t, 5, client.calls)

	client.err = nil
	client.text = `[{"id":"a","title":"A"}]`
	resp := svc.Recommend(context.Background(), "", model.RecommendRequest{Message: "x", Count: 1})
	assert.False(t, resp.UsedFallback, resp.Error)
	assert.Equal(t, 6, client.calls)
}
