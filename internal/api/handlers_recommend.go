package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/edgard/maintain/internal/auth"
	"github.com/edgard/maintain/internal/model"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req model.RecommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		// An unreadable body is treated as an empty request.
		s.log.DebugContext(r.Context(), "Ignoring recommend request body", "error", err)
		req = model.RecommendRequest{}
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Mood != "" && !req.Mood.Valid() {
		req.Mood = ""
	}

	userID := auth.UserIDFromContext(r.Context())
	if userID != "" && req.Profile == nil {
		if p, err := s.deps.Store.GetProfile(r.Context(), userID); err == nil {
			m := p.ToModel()
			if !m.IsEmpty() {
				req.Profile = &m
			}
		}
	}

	resp := s.deps.Recommender.Recommend(r.Context(), userID, req)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	resp := s.deps.Trending.Trending(r.Context(), category, count)
	respondJSON(w, http.StatusOK, resp)
}
