// readiness.go - Readiness probe logic for the monitoring node
package server

import "os"

// NodeReadiness returns true if the store is reachable and the oracle
// verification key is configured.
func (s *Server) NodeReadiness() bool {
	if !s.NodeLiveness() || s.svc == nil {
		return false
	}
	return os.Getenv("ORACLE_PUBKEY") != ""
}
