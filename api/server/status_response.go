// status_response.go - JSON response structs for status/health endpoints
package server

// StatusResponse represents the JSON structure for /status endpoint
type StatusResponse struct {
	Status      string      `json:"status"`
	Uptime      int64       `json:"uptime_seconds"`
	RecordCount uint64      `json:"record_count"`
	AlertCount  uint64      `json:"alert_count"`
	FeedLength  uint64      `json:"feed_length"`
	Version     string      `json:"version"`
	APIVersion  string      `json:"api_version"`
	LastFeed    string      `json:"last_feed_time"`
	Metrics     NodeMetrics `json:"metrics"`
}

// LivenessResponse for /health/liveness
type LivenessResponse struct {
	Alive bool `json:"alive"`
}

// ReadinessResponse for /health/readiness
type ReadinessResponse struct {
	Ready bool `json:"ready"`
}
