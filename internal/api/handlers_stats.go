package api

import (
	"encoding/json"
	"net/http"

	"github.com/hmercer/tapread/internal/cache"
)

func (s *Server) handleLookupStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "lookup stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"latency":       s.stats.Snapshot(),
		"cache_entries": s.cache.Len(),
		"cache_bytes":   s.cache.SizeBytes(),
	})
}

type pressureRequest struct {
	Level string `json:"level"`
}

// handleMemoryPressure lets the embedding platform report a pressure level.
func (s *Server) handleMemoryPressure(w http.ResponseWriter, r *http.Request) {
	var req pressureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	level := cache.ParsePressureLevel(req.Level)
	s.governor.OnMemoryPressure(level)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"level":      level.String(),
		"low_memory": s.governor.LowMemory(),
	})
}
