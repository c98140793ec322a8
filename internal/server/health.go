package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dagenius007/pr-reviewer/internal/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := s.probe()
	if err != nil {
		s.log.Error(err, "health probe failed")
		writeJSON(w, http.StatusInternalServerError, types.UnhealthyResponse{Status: "unhealthy", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) probe() (resp types.HealthResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("health probe panicked: %v", r)
		}
	}()

	github := "configured"
	if !s.opts.GitHubConfigured {
		github = "unconfigured"
	}
	st := s.opts.AI.Status()
	resp = types.HealthResponse{
		Status: "healthy",
		Services: types.Services{
			GitHub: github,
			AI:     types.AIServiceStatus{Provider: st.Provider, Status: st.Status, Model: st.Model},
		},
		Uptime:    time.Since(s.started).Seconds(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if s.opts.Queue != nil {
		q := s.opts.Queue.Stats()
		resp.Queue = &types.QueueStatus{Workers: q.Workers, Queued: q.Queued, Capacity: q.Capacity, Running: q.Running}
	}
	return resp, nil
}
