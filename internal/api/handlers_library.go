package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edgard/maintain/internal/auth"
	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

// historyLimit is how many sessions a web user keeps.
const historyLimit = 50

type likesResponse struct {
	Likes            []string                    `json:"likes"`
	LikedSuggestions map[string]model.Suggestion `json:"likedSuggestions"`
}

type likeRequest struct {
	Suggestion *model.Suggestion `json:"suggestion"`
}

type savesResponse struct {
	Items []model.SavedItem `json:"items"`
}

type saveRequest struct {
	Suggestion *model.Suggestion `json:"suggestion"`
	List       model.SaveList    `json:"list"`
	Notes      string            `json:"notes,omitempty"`
}

type saveResponse struct {
	OK      bool            `json:"ok"`
	Created bool            `json:"created"`
	Item    model.SavedItem `json:"item"`
}

type historyResponse struct {
	History []model.HistorySession `json:"history"`
}

type historyRequest struct {
	Session *model.HistorySession `json:"session"`
}

type profileBody struct {
	Profile *model.Profile `json:"profile"`
}

type statsResponse struct {
	Stats model.Stats `json:"stats"`
}

func (s *Server) handleGetLikes(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	likes, err := s.deps.Store.GetUserLikes(r.Context(), userID, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load likes")
		return
	}

	resp := likesResponse{
		Likes:            make([]string, 0, len(likes)),
		LikedSuggestions: make(map[string]model.Suggestion, len(likes)),
	}
	for _, l := range likes {
		resp.Likes = append(resp.Likes, l.VideoID)
		if sug := l.Suggestion.V; sug != nil {
			resp.LikedSuggestions[l.VideoID] = *sug
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddLike(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Suggestion == nil || req.Suggestion.ID == "" {
		respondError(w, http.StatusBadRequest, "missing suggestion")
		return
	}
	userID := auth.UserIDFromContext(r.Context())
	if _, err := s.deps.Store.LikeVideo(r.Context(), userID, req.Suggestion.ID, req.Suggestion); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save like")
		return
	}
	respondOK(w)
}

func (s *Server) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id")
		return
	}
	err := s.deps.Store.UnlikeVideo(r.Context(), auth.UserIDFromContext(r.Context()), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "like not found")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to remove like")
	default:
		respondOK(w)
	}
}

func (s *Server) handleGetSaves(w http.ResponseWriter, r *http.Request) {
	var list model.SaveList
	if raw := r.URL.Query().Get("list"); raw != "" {
		parsed, ok := model.ParseSaveList(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid list")
			return
		}
		list = parsed
	}

	saves, err := s.deps.Store.GetUserSaves(r.Context(), auth.UserIDFromContext(r.Context()), list)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load saves")
		return
	}
	resp := savesResponse{Items: make([]model.SavedItem, 0, len(saves))}
	for _, item := range saves {
		resp.Items = append(resp.Items, item.ToModel())
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Suggestion == nil || req.Suggestion.ID == "" || req.List == "" {
		respondError(w, http.StatusBadRequest, "missing suggestion/list")
		return
	}
	if !req.List.Valid() {
		respondError(w, http.StatusBadRequest, "invalid list")
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	item, created, err := s.deps.Store.SaveVideo(r.Context(), userID, *req.Suggestion, req.List, strings.TrimSpace(req.Notes))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save item")
		return
	}
	respondJSON(w, http.StatusOK, saveResponse{OK: true, Created: created, Item: item.ToModel()})
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id")
		return
	}
	err := s.deps.Store.RemoveSave(r.Context(), auth.UserIDFromContext(r.Context()), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "saved item not found")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to remove saved item")
	default:
		respondOK(w)
	}
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.deps.Store.GetUserHistory(r.Context(), auth.UserIDFromContext(r.Context()), historyLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}
	resp := historyResponse{History: make([]model.HistorySession, 0, len(sessions))}
	for _, h := range sessions {
		resp.History = append(resp.History, h.ToModel())
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Session == nil || req.Session.ID == "" {
		respondError(w, http.StatusBadRequest, "missing session data")
		return
	}

	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	if err := s.deps.Store.AddHistory(ctx, userID, database.NewHistorySession(userID, *req.Session)); err != nil {
		if errors.Is(err, database.ErrHistoryIDTaken) {
			respondError(w, http.StatusConflict, "session id already in use")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to save history")
		return
	}
	if _, err := s.deps.Store.TrimUserHistory(ctx, userID, historyLimit); err != nil {
		s.log.WarnContext(ctx, "Failed to trim history", "user_id", userID, "error", err)
	}
	respondOK(w)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	if id := r.URL.Query().Get("id"); id != "" {
		err := s.deps.Store.DeleteHistory(ctx, userID, id)
		switch {
		case errors.Is(err, database.ErrNotFound):
			respondError(w, http.StatusNotFound, "history session not found")
		case err != nil:
			respondError(w, http.StatusInternalServerError, "failed to delete history")
		default:
			respondOK(w)
		}
		return
	}

	if _, err := s.deps.Store.ClearHistory(ctx, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete history")
		return
	}
	respondOK(w)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Store.GetProfile(r.Context(), auth.UserIDFromContext(r.Context()))
	if errors.Is(err, database.ErrNotFound) {
		respondJSON(w, http.StatusOK, profileBody{Profile: &model.Profile{Hobbies: []string{}, Interests: []string{}, Languages: []string{}}})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	m := p.ToModel()
	respondJSON(w, http.StatusOK, profileBody{Profile: &m})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileBody
	if err := decodeJSON(w, r, &req); err != nil || req.Profile == nil {
		respondError(w, http.StatusBadRequest, "missing profile")
		return
	}
	if err := s.deps.Store.UpsertProfile(r.Context(), auth.UserIDFromContext(r.Context()), model.FullUpdate(*req.Profile)); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	respondOK(w)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Store.GetUserStats(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	respondJSON(w, http.StatusOK, statsResponse{Stats: st.ToModel()})
}
