package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/validation"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// getAPISecret fetches the API secret/token from env
func getAPISecret() string {
	return os.Getenv("API_JWT_SECRET") // Set this in monitor.env
}

// Middleware for JWT/API key authentication (enforce either JWT or API key)
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwtSecret := getAPISecret()
		apiKey := os.Getenv("API_KEY")
		authHeader := r.Header.Get("Authorization")
		xApiKey := r.Header.Get("X-API-Key")

		jwtValid := false
		if strings.HasPrefix(authHeader, "Bearer ") {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == jwtSecret && token != "" {
				jwtValid = true
			}
		}
		apiKeyValid := (xApiKey != "" && apiKey != "" && xApiKey == apiKey)

		if !jwtValid && !apiKeyValid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler for submitting encrypted sensor records
func (s *Server) SubmitSensorRecordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	if !s.allowRequest(w, r) {
		return
	}

	bodyBytes, _ := io.ReadAll(r.Body)

	if err := validation.ValidateSensorRecordSubmission(bodyBytes); err != nil {
		http.Error(w, "Invalid submission: "+err.Error(), http.StatusBadRequest)
		return
	}

	var submission struct {
		DeviceID       string `json:"deviceId"`
		ActivityHandle string `json:"activityHandle"`
		SleepHandle    string `json:"sleepHandle"`
	}
	if err := json.Unmarshal(bodyBytes, &submission); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	activity, err := ids.HandleFromString(submission.ActivityHandle)
	if err != nil {
		http.Error(w, "Invalid activityHandle: "+err.Error(), http.StatusBadRequest)
		return
	}
	sleep, err := ids.HandleFromString(submission.SleepHandle)
	if err != nil {
		http.Error(w, "Invalid sleepHandle: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.svc.SubmitEncryptedSensorData(activity, sleep)
	if err != nil {
		http.Error(w, "Failed to store record", http.StatusInternalServerError)
		return
	}

	// Return a receipt
	receipt := map[string]interface{}{
		"recordId": id,
		"deviceId": submission.DeviceID,
		"status":   "accepted",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

// Handler for submitting encrypted alerts
func (s *Server) SubmitAlertHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	if !s.allowRequest(w, r) {
		return
	}

	bodyBytes, _ := io.ReadAll(r.Body)

	if err := validation.ValidateAlertSubmission(bodyBytes); err != nil {
		http.Error(w, "Invalid submission: "+err.Error(), http.StatusBadRequest)
		return
	}

	var submission struct {
		DeviceID      string `json:"deviceId"`
		PayloadHandle string `json:"payloadHandle"`
	}
	if err := json.Unmarshal(bodyBytes, &submission); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	payload, err := ids.HandleFromString(submission.PayloadHandle)
	if err != nil {
		http.Error(w, "Invalid payloadHandle: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.svc.SubmitEncryptedAlert(payload)
	if err != nil {
		http.Error(w, "Failed to store alert", http.StatusInternalServerError)
		return
	}

	receipt := map[string]interface{}{
		"alertId":  id,
		"deviceId": submission.DeviceID,
		"status":   "accepted",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

// Handler for caregiver anomaly detection requests
func (s *Server) RequestAnomalyDetectionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	if !s.allowRequest(w, r) {
		return
	}

	caller, err := s.callerFromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		RecordID uint64 `json:"recordId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, err := s.svc.RequestAnomalyDetection(caller, ids.RecordID(req.RecordID))
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, map[string]interface{}{
		"requestId": token,
		"recordId":  req.RecordID,
		"status":    "dispatched",
	})
}

// Handler for caregiver alert decryption requests
func (s *Server) RequestAlertDecryptionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	if !s.allowRequest(w, r) {
		return
	}

	caller, err := s.callerFromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		AlertID uint64 `json:"alertId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, err := s.svc.RequestAlertDecryption(caller, ids.AlertID(req.AlertID))
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, map[string]interface{}{
		"requestId": token,
		"alertId":   req.AlertID,
		"status":    "dispatched",
	})
}

// RegisterSensorRecordAPI registers the intake and request endpoints to the mux
func RegisterSensorRecordAPI(mux *http.ServeMux, server *Server) {
	mux.Handle("/api/v1/submit-sensor-record", authMiddleware(http.HandlerFunc(server.SubmitSensorRecordHandler)))
	mux.Handle("/api/v1/submit-alert", authMiddleware(http.HandlerFunc(server.SubmitAlertHandler)))
	mux.HandleFunc("/api/v1/request-anomaly-detection", server.RequestAnomalyDetectionHandler)
	mux.HandleFunc("/api/v1/request-alert-decryption", server.RequestAlertDecryptionHandler)
}
