package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hmercer/tapread/internal/model"
	"github.com/hmercer/tapread/internal/session"
)

type createSessionRequest struct {
	DocID    string       `json:"doc_id"`
	Viewport session.Size `json:"viewport"`
	Tooltip  session.Size `json:"tooltip"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DocID == "" {
		jsonError(w, "doc_id is required", http.StatusBadRequest)
		return
	}
	text, err := s.store.Get(req.DocID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		// Fall back to the first page's bounds.
		b := text.Pages[0].Bounds
		req.Viewport = session.Size{Width: b.Width, Height: b.Height}
	}

	c := s.sessions.Create(session.Config{
		Document: text,
		Cache:    s.cache,
		Provider: s.provider,
		Stats:    s.stats,
		Logger:   s.log,
		Viewport: req.Viewport,
		Tooltip:  req.Tooltip,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": c.ID(),
		"doc_id":     req.DocID,
		"state":      c.State(),
	})
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeState(w, c.State())
}

type tapRequest struct {
	ElementID string      `json:"element_id"`
	Point     model.Point `json:"point"`
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	st, err := c.Tap(req.ElementID, req.Point)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeState(w, st)
}

type pressRequest struct {
	ElementID string `json:"element_id"`
	WordIndex *int   `json:"word_index,omitempty"`
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	var req pressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	wordIndex := -1
	if req.WordIndex != nil {
		wordIndex = *req.WordIndex
	}
	st, err := c.Press(req.ElementID, wordIndex)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeState(w, st)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeState(w, c.Detail())
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeState(w, c.Dismiss())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, err := s.sessions.Get(id); err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	s.sessions.Delete(id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": id})
}

func writeState(w http.ResponseWriter, st session.State) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"state": st})
}
