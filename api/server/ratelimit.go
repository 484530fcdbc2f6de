package server

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Rate limiting and client banning for the API server. Ban state is
// persisted in the node store so a restart does not lift active bans.

const rateLimitWindow = 60 * time.Second
const defaultRequestsPerWindow = 600

// Progressive ban durations
var banDurations = []time.Duration{
	10 * time.Minute,
	1 * time.Hour,
	24 * time.Hour,
}

const permabanDuration = 100 * 365 * 24 * time.Hour // effectively permanent

// requestsPerWindow returns the per-client budget. RATE_LIMIT_PER_MIN
// overrides the default.
func requestsPerWindow() int {
	if n, err := strconv.Atoi(rateLimitPerMin); err == nil && n > 0 {
		return n
	}
	return defaultRequestsPerWindow
}

// AllowClientRequest checks and updates the rate limit for a client
func (s *Server) AllowClientRequest(address string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.isClientBannedLocked(address) {
		return false
	}

	now := time.Now()
	times := s.requestTimes[address]
	// Keep only recent requests
	var recent []time.Time
	for _, t := range times {
		if now.Sub(t) < rateLimitWindow {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	s.requestTimes[address] = recent
	if len(recent) > requestsPerWindow() {
		fmt.Printf("[RATE LIMIT] Blocking request from %s (over limit)\n", address)
		// Progressive ban logic
		s.banCounts[address]++
		banCount := s.banCounts[address]
		if banCount > len(banDurations) {
			s.banClientLocked(address, permabanDuration)
			fmt.Printf("[PERMABAN] Permanently banned %s after %d violations\n", address, banCount)
		} else {
			dur := banDurations[banCount-1]
			s.banClientLocked(address, dur)
			fmt.Printf("[BAN] %s banned for %s (violation #%d)\n", address, dur, banCount)
		}
		return false // Rate limited
	}
	return true
}

// banClientLocked bans a client for a given duration.
// NOTE: Assumes caller holds s.lock!
func (s *Server) banClientLocked(address string, duration time.Duration) {
	expiry := time.Now().Add(duration)
	s.bannedClients[address] = expiry
	// --- Persistent Ban State ---
	if s.store != nil {
		if err := s.store.Put("ban:"+address, []byte(expiry.Format(time.RFC3339))); err != nil {
			fmt.Printf("[ERROR] Failed to persist ban for %s: %v\n", address, err)
		}
		countBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(countBytes, uint64(s.banCounts[address]))
		if err := s.store.Put("banCount:"+address, countBytes); err != nil {
			fmt.Printf("[ERROR] Failed to persist ban count for %s: %v\n", address, err)
		}
	}
}

// isClientBannedLocked checks if a client is currently banned.
// NOTE: Assumes caller holds s.lock!
func (s *Server) isClientBannedLocked(address string) bool {
	expiry, ok := s.bannedClients[address]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		fmt.Printf("[UNBAN] Ban expired for %s (was until %s)\n", address, expiry.Format(time.RFC3339))
		delete(s.bannedClients, address)
		// --- Remove persistent ban state ---
		if s.store != nil {
			if err := s.store.Delete("ban:" + address); err != nil {
				fmt.Printf("[ERROR] Failed to remove persistent ban for %s: %v\n", address, err)
			}
			if err := s.store.Delete("banCount:" + address); err != nil {
				fmt.Printf("[ERROR] Failed to remove persistent ban count for %s: %v\n", address, err)
			}
		}
		return false
	}
	return true
}

// LoadBanState loads persistent bans and ban counts from the store
func (s *Server) LoadBanState() {
	if s.store == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	imported := 0
	iter := s.store.PrefixIterator("ban:")
	for iter.Next() {
		address := string(iter.Key()[len("ban:"):])
		expiry, err := time.Parse(time.RFC3339, string(iter.Value()))
		if err == nil && time.Now().Before(expiry) {
			s.bannedClients[address] = expiry
			imported++
		}
	}
	iter.Release()

	iter = s.store.PrefixIterator("banCount:")
	for iter.Next() {
		address := string(iter.Key()[len("banCount:"):])
		if len(iter.Value()) == 8 {
			s.banCounts[address] = int(binary.BigEndian.Uint64(iter.Value()))
		}
	}
	iter.Release()

	if imported > 0 {
		fmt.Printf("[BAN] Imported %d active bans from store\n", imported)
	}
}

// allowRequest applies the per-client rate limit to an HTTP request.
// On rejection the response is already written and false is returned.
func (s *Server) allowRequest(w http.ResponseWriter, r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !s.AllowClientRequest(host) {
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return false
	}
	return true
}
