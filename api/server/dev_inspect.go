//Dev delete upon production migration
// This endpoint is for development/testing only. It lists every registered oracle correlation with its completion state.
package server

import (
	"net/http"
	"os"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/ledger"
)

// RegisterDevInspectAPI registers the dev-only request inspection endpoint.
func RegisterDevInspectAPI(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("/api/v1/dev/pending-requests", s.handleDevPendingRequests)
}

// handleDevPendingRequests returns all registered correlations (dev only)
func (s *Server) handleDevPendingRequests(w http.ResponseWriter, r *http.Request) {
	if os.Getenv("MONITOR_DEV_API") != "1" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	reqs, err := s.svc.PendingRequests()
	if err != nil {
		http.Error(w, "Failed to list requests", http.StatusInternalServerError)
		return
	}
	if reqs == nil {
		reqs = []ledger.Request{}
	}
	open := 0
	for _, req := range reqs {
		if !req.Completed {
			open++
		}
	}
	writeJSON(w, map[string]interface{}{
		"requests": reqs,
		"open":     open,
		"total":    len(reqs),
	})
}
