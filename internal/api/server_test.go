package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/maintain/internal/auth"
	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
	"github.com/edgard/maintain/internal/trending"
)

type fakeRecommender struct {
	lastUserID string
	lastReq    model.RecommendRequest
}

func (f *fakeRecommender) Recommend(_ context.Context, userID string, req model.RecommendRequest) model.RecommendResponse {
	f.lastUserID = userID
	f.lastReq = req
	return model.RecommendResponse{
		Suggestions: []model.Suggestion{{ID: "s1", Title: "First", Tags: []string{"go"}, Relevance: 0.9}},
		Model:       "test-model",
	}
}

type fakeTrending struct {
	category string
	count    int
}

func (f *fakeTrending) Trending(_ context.Context, category string, count int) trending.Response {
	f.category = category
	f.count = count
	return trending.Response{Suggestions: trending.FallbackItems(2), Source: trending.SourceFallback, Category: "all"}
}

type testEnv struct {
	handler     http.Handler
	store       database.Store
	cache       cache.Cache
	recommender *fakeRecommender
	trending    *fakeTrending
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.TestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	env := &testEnv{
		store:       store,
		cache:       cache.NewMemory(time.Hour),
		recommender: &fakeRecommender{},
		trending:    &fakeTrending{},
	}
	srv := NewServer(Deps{
		Config: config.ServerConfig{
			AllowedOrigins:     []string{"http://localhost:3000"},
			RecommendRateLimit: 100,
		},
		LinkTTL:     5 * time.Minute,
		Store:       store,
		Auth:        auth.NewService(store, nil),
		Recommender: env.recommender,
		Trending:    env.trending,
		Cache:       env.cache,
	})
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doRaw(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signup(t *testing.T, email string) (*http.Cookie, string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"email": email, "password": "secret12", "name": "Tester"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User auth.User `json:"user"`
	}
	decode(t, rec, &resp)
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c, resp.User.ID
		}
	}
	t.Fatal("signup did not set a session cookie")
	return nil, ""
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	decode(t, rec, &e)
	return e.Error
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/healthz", nil, nil)
	rec := env.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maintain_http_requests_total")
}

func TestUnauthorizedRoutes(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/likes", "/api/saves", "/api/history", "/api/profile", "/api/stats"} {
		rec := env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "unauthorized", errorOf(t, rec), path)
	}

	stale := &http.Cookie{Name: auth.CookieName, Value: "does-not-exist"}
	rec := env.do(t, http.MethodGet, "/api/likes", nil, stale)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupLoginMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"email": "bad", "password": "secret12"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, auth.ErrInvalidEmail.Error(), errorOf(t, rec))

	cookie, userID := env.signup(t, "me@example.com")
	assert.True(t, cookie.HttpOnly)

	rec = env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"email": "me@example.com", "password": "secret12"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "me@example.com", "password": "nope-nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "me@example.com", "password": "secret12"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Result().Cookies())

	rec = env.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User *auth.User `json:"user"`
	}
	decode(t, rec, &me)
	require.NotNil(t, me.User)
	assert.Equal(t, userID, me.User.ID)
	assert.NotNil(t, me.User.Stats)

	rec = env.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/auth/me", nil, &http.Cookie{Name: auth.CookieName, Value: "ghost"})
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	rec = env.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestRecommendAnonymousAndSignedIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/recommend", model.RecommendRequest{Message: "  go talks ", Mood: "sleepy"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.RecommendResponse
	decode(t, rec, &resp)
	assert.Len(t, resp.Suggestions, 1)
	assert.Empty(t, env.recommender.lastUserID)
	assert.Equal(t, "go talks", env.recommender.lastReq.Message)
	assert.Empty(t, env.recommender.lastReq.Mood)

	cookie, userID := env.signup(t, "rec@example.com")
	require.NoError(t, env.store.UpsertProfile(context.Background(), userID, model.ProfileUpdate{Hobbies: []string{"chess"}}))

	rec = env.do(t, http.MethodPost, "/api/recommend", model.RecommendRequest{Message: "x", Mood: model.MoodChill}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, env.recommender.lastUserID)
	assert.Equal(t, model.MoodChill, env.recommender.lastReq.Mood)
	require.NotNil(t, env.recommender.lastReq.Profile)
	assert.Equal(t, []string{"chess"}, env.recommender.lastReq.Profile.Hobbies)

}

func TestRecommendIgnoresUnreadableBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/recommend", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.RecommendResponse
	decode(t, rec, &resp)
	assert.Len(t, resp.Suggestions, 1)

	for _, body := range []string{`not json`, `{"message":"x","count":"five"}`, `{"message":`} {
		env.recommender.lastReq = model.RecommendRequest{Message: "stale"}
		rec = env.doRaw(t, http.MethodPost, "/api/recommend", body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Suggestions, body)
		assert.Equal(t, model.RecommendRequest{}, env.recommender.lastReq, body)
	}
}

func TestTrendingPassesQuery(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/trending?category=music&count=7", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "music", env.trending.category)
	assert.Equal(t, 7, env.trending.count)

	var resp trending.Response
	decode(t, rec, &resp)
	assert.Equal(t, trending.SourceFallback, resp.Source)
	assert.Len(t, resp.Suggestions, 2)
}

func TestLikesRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.signup(t, "likes@example.com")

	rec := env.do(t, http.MethodPost, "/api/likes", map[string]any{"suggestion": map[string]any{"title": "no id"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sug := model.Suggestion{ID: "vid-1", Title: "Video", Tags: []string{"go"}, Relevance: 0.8}
	rec = env.do(t, http.MethodPost, "/api/likes", likeRequest{Suggestion: &sug}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/likes", likeRequest{Suggestion: &sug}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/likes", nil, cookie)
	var likes likesResponse
	decode(t, rec, &likes)
	assert.Equal(t, []string{"vid-1"}, likes.Likes)
	assert.Equal(t, "Video", likes.LikedSuggestions["vid-1"].Title)

	rec = env.do(t, http.MethodDelete, "/api/likes?id=vid-1", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/likes?id=vid-1", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSavesRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.signup(t, "saves@example.com")

	sug := model.Suggestion{ID: "vid-2", Title: "Lecture", Tags: []string{}, Relevance: 0.5}
	rec := env.do(t, http.MethodPost, "/api/saves", saveRequest{Suggestion: &sug, List: "nowhere"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/saves", saveRequest{Suggestion: &sug}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/saves", saveRequest{Suggestion: &sug, List: model.ListLearn}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved saveResponse
	decode(t, rec, &saved)
	assert.True(t, saved.Created)
	assert.Equal(t, model.ListLearn, saved.Item.List)

	rec = env.do(t, http.MethodGet, "/api/saves?list=learn", nil, cookie)
	var saves savesResponse
	decode(t, rec, &saves)
	require.Len(t, saves.Items, 1)
	assert.Equal(t, "vid-2", saves.Items[0].ID)

	rec = env.do(t, http.MethodGet, "/api/saves?list=listen", nil, cookie)
	decode(t, rec, &saves)
	assert.Empty(t, saves.Items)

	rec = env.do(t, http.MethodGet, "/api/saves?list=bogus", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/saves?id=vid-2", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/saves?id=vid-2", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.signup(t, "history@example.com")

	rec := env.do(t, http.MethodPost, "/api/history", historyRequest{Session: &model.HistorySession{Message: "no id"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"h1", "h2", "h3"} {
		session := model.HistorySession{ID: id, Message: "query " + id, Mood: model.MoodCurious, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		rec = env.do(t, http.MethodPost, "/api/history", historyRequest{Session: &session}, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/history", nil, cookie)
	var hist historyResponse
	decode(t, rec, &hist)
	require.Len(t, hist.History, 3)
	assert.Equal(t, "h3", hist.History[0].ID)

	otherCookie, _ := env.signup(t, "other-history@example.com")
	rec = env.do(t, http.MethodPost, "/api/history", historyRequest{Session: &model.HistorySession{ID: "h1", Message: "mine now"}}, otherCookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/history", nil, otherCookie)
	decode(t, rec, &hist)
	assert.Empty(t, hist.History)

	rec = env.do(t, http.MethodDelete, "/api/history?id=h2", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/history?id=h2", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/history", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/history", nil, cookie)
	decode(t, rec, &hist)
	assert.Empty(t, hist.History)

	rec = env.do(t, http.MethodGet, "/api/stats", nil, cookie)
	var stats statsResponse
	decode(t, rec, &stats)
	assert.Equal(t, 3, stats.Stats.TotalQueries)
}

func TestProfileRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.signup(t, "profile@example.com")

	rec := env.do(t, http.MethodPost, "/api/profile", map[string]any{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	profile := model.Profile{Hobbies: []string{"climbing"}, Interests: []string{"rust"}, Languages: []string{"English"}, WorkContext: "backend"}
	rec = env.do(t, http.MethodPost, "/api/profile", profileBody{Profile: &profile}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/profile", nil, cookie)
	var got profileBody
	decode(t, rec, &got)
	require.NotNil(t, got.Profile)
	assert.Equal(t, []string{"climbing"}, got.Profile.Hobbies)
	assert.Equal(t, "backend", got.Profile.WorkContext)
}

func TestTelegramLinkCode(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/telegram-link", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie, userID := env.signup(t, "link@example.com")
	rec = env.do(t, http.MethodPost, "/api/auth/telegram-link", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp linkCodeResponse
	decode(t, rec, &resp)
	assert.Equal(t, 300, resp.ExpiresIn)

	got, err := cache.RedeemLinkCode(context.Background(), env.cache, resp.Code)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/nothing-here", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorOf(t, rec))
}
