// liveness.go - Liveness probe logic for the monitoring node
package server

// NodeLiveness returns true if the node is running and the store is reachable.
func (s *Server) NodeLiveness() bool {
	if s.store == nil {
		return false
	}
	_, err := s.store.Has("seq:feed")
	return err == nil
}
