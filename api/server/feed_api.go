package server

import (
	"net/http"
	"strconv"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

const defaultFeedLimit = 100

// Handler for querying a record's decrypted outcome
func (s *Server) GetDecryptedEventHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid id parameter", http.StatusBadRequest)
		return
	}
	outcome, err := s.svc.GetDecryptedEvent(ids.RecordID(id))
	if err != nil {
		http.Error(w, "Failed to read outcome", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"recordId": id,
		"summary":  outcome.Summary,
		"handled":  outcome.Handled,
	})
}

// Handler for the notification feed
func (s *Server) FeedHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	var after uint64
	if v := r.URL.Query().Get("after"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid after parameter", http.StatusBadRequest)
			return
		}
		after = parsed
	}
	limit := defaultFeedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := s.svc.FeedSince(after, limit)
	if err != nil {
		http.Error(w, "Failed to read feed", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []notify.Notification{}
	}
	writeJSON(w, map[string]interface{}{
		"after":   after,
		"entries": entries,
	})
}

// RegisterFeedAPI registers the query endpoints to the mux
func RegisterFeedAPI(mux *http.ServeMux, server *Server) {
	mux.HandleFunc("/api/v1/decrypted-event", server.GetDecryptedEventHandler)
	mux.HandleFunc("/api/v1/feed", server.FeedHandler)
}
