package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdblocks/internal/pipeline"
)

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobBlocks(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	conv, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "job failed",
				"status": snap.Status,
				"errors": snap.Progress.Errors,
			})
			return
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not completed",
			"status": snap.Status,
		})
		return
	}
	writeJSON(w, http.StatusOK, conv)
}
