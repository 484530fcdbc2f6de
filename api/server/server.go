package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/auth"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/monitor"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/storage"

	log "log"

	// Load env vars from monitor.env for local/dev
	_ "github.com/joho/godotenv/autoload"
)

import "github.com/joho/godotenv"

func init() {
	godotenv.Load("monitor.env")
}

// --- Environment Variable Config ---
// All sensitive/configurable values are loaded from environment variables.
// See monitor.env for variable names and dummy values.

var (
	apiKey          = os.Getenv("API_KEY")            // API key for oracle/admin endpoints
	jwtSecret       = os.Getenv("API_JWT_SECRET")     // JWT secret for submitter authentication
	oracleEndpoint  = os.Getenv("ORACLE_ENDPOINT")    // Decryption oracle base URL
	serverPort      = os.Getenv("SERVER_PORT")        // Server port (default: 8080)
	rateLimitPerMin = os.Getenv("RATE_LIMIT_PER_MIN") // Requests per minute per IP
	enableHTTPS     = os.Getenv("ENABLE_HTTPS")       // Enable HTTPS (true/false)
	tlsCertPath     = os.Getenv("TLS_CERT_PATH")      // TLS certificate path
	tlsKeyPath      = os.Getenv("TLS_KEY_PATH")       // TLS key path
	logLevel        = os.Getenv("LOG_LEVEL")          // Logging level
	envMode         = os.Getenv("ENV")                // Environment (development/production)
)

// --- Auth Helpers ---
// Callers decide which endpoints enforce these.

// Checks for API key in X-API-Key header. Logs warning if missing or invalid.
func requireAPIKey(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("X-API-Key")
	if key == "" {
		log.Println("[WARN] No API key provided")
		return false
	}
	if key != apiKey {
		log.Println("[WARN] Invalid API key")
		return false
	}
	return true
}

// Checks for JWT in Authorization: Bearer header. Logs warning if missing or invalid.
func requireJWT(w http.ResponseWriter, r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Println("[WARN] No Bearer token provided")
		return false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		log.Printf("[WARN] Invalid JWT: %v\n", err)
		return false
	}
	return true
}

type Server struct {
	store      *storage.Storage
	svc        *monitor.Service
	verifier   *auth.CapabilityVerifier
	allowlist  *auth.AllowlistPolicy
	ListenAddr string

	// Per-client rate limit and ban state (persisted via store).
	lock          sync.Mutex
	requestTimes  map[string][]time.Time
	bannedClients map[string]time.Time
	banCounts     map[string]int
}

func NewServer(store *storage.Storage, svc *monitor.Service, verifier *auth.CapabilityVerifier, allowlist *auth.AllowlistPolicy, listenAddr string) *Server {
	return &Server{
		store:         store,
		svc:           svc,
		verifier:      verifier,
		allowlist:     allowlist,
		ListenAddr:    listenAddr,
		requestTimes:  make(map[string][]time.Time),
		bannedClients: make(map[string]time.Time),
		banCounts:     make(map[string]int),
	}
}

func (s *Server) Start() error {
	// Modular health/status endpoints
	http.HandleFunc("/nodehealth", s.HandleNodeHealth) // For CLI metrics
	http.HandleFunc("/health/liveness", s.HandleLiveness)
	http.HandleFunc("/health/readiness", s.HandleReadiness)
	http.HandleFunc("/status", s.HandleStatus)
	http.HandleFunc("/version", s.HandleVersion)

	// === Allowlist Admin Endpoint ===
	http.HandleFunc("/admin/reload-allowlist", s.handleReloadAllowlist)

	// === CLI-specific JSON endpoints ===
	http.HandleFunc("/api/cli/status", s.handleCLIStatus)

	// === Sensor Record Submission Endpoints ===
	RegisterSensorRecordAPI(http.DefaultServeMux, s)

	// === Oracle Callback Endpoints ===
	RegisterOracleAPI(http.DefaultServeMux, s)

	// === Query Endpoints ===
	RegisterFeedAPI(http.DefaultServeMux, s)

	// === DEV ONLY: Pending Request Inspection Endpoint ===
	RegisterDevInspectAPI(http.DefaultServeMux, s)

	s.LoadBanState()

	fmt.Println("API server listening at", s.ListenAddr)

	enableHTTPS := os.Getenv("ENABLE_HTTPS")
	certPath := os.Getenv("TLS_CERT_PATH")
	keyPath := os.Getenv("TLS_KEY_PATH")

	if enableHTTPS == "true" {
		fmt.Println("[HTTPS] Enabled. Using cert:", certPath, "key:", keyPath)
		return http.ListenAndServeTLS(s.ListenAddr, certPath, keyPath, nil)
	} else {
		fmt.Println("[HTTPS] Disabled. Serving HTTP only!")
		return http.ListenAndServe(s.ListenAddr, nil)
	}
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, monitor.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, monitor.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, monitor.ErrAlreadyHandled):
		return http.StatusConflict
	case errors.Is(err, monitor.ErrInvalidProof):
		return http.StatusUnauthorized
	case errors.Is(err, monitor.ErrUnauthorized):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// callerFromRequest verifies the caregiver capability token and returns
// the caller subject handed to the request policy.
func (s *Server) callerFromRequest(r *http.Request) (string, error) {
	token := r.Header.Get("X-Caregiver-Token")
	if token == "" {
		return "", fmt.Errorf("missing X-Caregiver-Token header")
	}
	if s.verifier == nil {
		return "", fmt.Errorf("capability verification not configured")
	}
	claims, err := s.verifier.VerifyCaregiverToken(token)
	if err != nil {
		return "", err
	}
	return claims.Sub, nil
}

// handleReloadAllowlist re-reads the caregiver allowlist from disk.
func (s *Server) handleReloadAllowlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}
	if !requireAPIKey(w, r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if s.allowlist == nil {
		http.Error(w, "no allowlist configured", http.StatusInternalServerError)
		return
	}
	if err := s.allowlist.Reload(); err != nil {
		http.Error(w, "reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	log.Println("[ADMIN] Caregiver allowlist reloaded")
	writeJSON(w, map[string]interface{}{"status": "reloaded"})
}

// --- CLI-specific JSON endpoints ---
// Returns node status as JSON
func (s *Server) handleCLIStatus(w http.ResponseWriter, r *http.Request) {
	records, alerts, feed, err := s.svc.Counts()
	if err != nil {
		http.Error(w, "Failed to read ledger counters", http.StatusInternalServerError)
		return
	}
	open := 0
	if reqs, err := s.svc.PendingRequests(); err == nil {
		for _, req := range reqs {
			if !req.Completed {
				open++
			}
		}
	}
	writeJSON(w, map[string]interface{}{
		"records":       records,
		"alerts":        alerts,
		"feed_length":   feed,
		"open_requests": open,
		"version":       NodeVersion(),
	})
}
