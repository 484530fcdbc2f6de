// version.go - Node & API version info for the monitoring node
package server

import "net/http"

// NodeVersion returns the current node software version.
func NodeVersion() string {
	// TODO: Return version from build flags or config
	return "v0.1.0"
}

// APIVersion returns the current API version.
func APIVersion() string {
	return "v1"
}

// HandleVersion responds to /version
func (s *Server) HandleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"version":     NodeVersion(),
		"api_version": APIVersion(),
	})
}
