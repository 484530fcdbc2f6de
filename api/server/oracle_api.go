package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/validation"
)

// oracleCallback is the wire shape both callback endpoints share.
type oracleCallback struct {
	RequestID  string `json:"requestId"`
	Cleartexts string `json:"cleartexts"` // base64
	Proof      string `json:"proof"`      // base64
}

// decodeOracleCallback authenticates and decodes a callback body. On
// failure the response is already written and ok is false.
func (s *Server) decodeOracleCallback(w http.ResponseWriter, r *http.Request) (token oracle.Token, cleartexts, proof []byte, ok bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return "", nil, nil, false
	}
	if !s.allowRequest(w, r) {
		return "", nil, nil, false
	}
	if !requireAPIKey(w, r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", nil, nil, false
	}

	bodyBytes, _ := io.ReadAll(r.Body)

	if err := validation.ValidateOracleCallback(bodyBytes); err != nil {
		http.Error(w, "Invalid callback: "+err.Error(), http.StatusBadRequest)
		return "", nil, nil, false
	}

	var cb oracleCallback
	if err := json.Unmarshal(bodyBytes, &cb); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return "", nil, nil, false
	}
	cleartexts, err := base64.StdEncoding.DecodeString(cb.Cleartexts)
	if err != nil {
		http.Error(w, "Invalid cleartexts encoding: "+err.Error(), http.StatusBadRequest)
		return "", nil, nil, false
	}
	proof, err = base64.StdEncoding.DecodeString(cb.Proof)
	if err != nil {
		http.Error(w, "Invalid proof encoding: "+err.Error(), http.StatusBadRequest)
		return "", nil, nil, false
	}
	return oracle.Token(cb.RequestID), cleartexts, proof, true
}

// Handler for oracle anomaly result callbacks
func (s *Server) AnomalyResultHandler(w http.ResponseWriter, r *http.Request) {
	token, cleartexts, proof, ok := s.decodeOracleCallback(w, r)
	if !ok {
		return
	}
	if err := s.svc.HandleAnomalyResult(token, cleartexts, proof); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	writeJSON(w, map[string]interface{}{
		"requestId": token,
		"status":    "applied",
	})
}

// Handler for oracle alert cleartext callbacks
func (s *Server) AlertCleartextHandler(w http.ResponseWriter, r *http.Request) {
	token, cleartexts, proof, ok := s.decodeOracleCallback(w, r)
	if !ok {
		return
	}
	if err := s.svc.HandleAlertCleartext(token, cleartexts, proof); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	writeJSON(w, map[string]interface{}{
		"requestId": token,
		"status":    "emitted",
	})
}

// RegisterOracleAPI registers the oracle callback endpoints to the mux
func RegisterOracleAPI(mux *http.ServeMux, server *Server) {
	mux.HandleFunc("/api/v1/oracle/anomaly-result", server.AnomalyResultHandler)
	mux.HandleFunc("/api/v1/oracle/alert-cleartext", server.AlertCleartextHandler)
}
