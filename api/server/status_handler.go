// status_handler.go - HTTP handler for /status
package server

import (
	"encoding/json"
	"net/http"
)

// HandleStatus responds to /status with node status
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	metrics := s.GetNodeMetrics()

	// Derive node health status from metrics
	status := "healthy"
	if metrics.FeedLength == 0 {
		status = "initializing"
	} else if metrics.OpenRequests > 100 {
		status = "backlogged"
	}

	resp := StatusResponse{
		Status:      status,
		Uptime:      metrics.UptimeSeconds,
		RecordCount: metrics.RecordCount,
		AlertCount:  metrics.AlertCount,
		FeedLength:  metrics.FeedLength,
		Version:     NodeVersion(),
		APIVersion:  APIVersion(),
		LastFeed:    metrics.LastFeedTime,
		Metrics:     metrics,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
