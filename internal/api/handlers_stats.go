package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"queue_size":  s.cfg.MaxQueueSize,
		"workers":     s.cfg.WorkerCount,
		"jobs":        s.orchestrator.JobCount(),
		"latency":     s.orchestrator.Converter().Latency().Snapshot(),
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": s.orchestrator.Converter().Renderer().Languages().Labels(),
	})
}
