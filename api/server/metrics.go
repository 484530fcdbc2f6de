// metrics.go - Metrics collection for the monitoring node
package server

import (
	"runtime"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// NodeMetrics holds granular health metrics for the node.
type NodeMetrics struct {
	UptimeSeconds  int64   `json:"uptime_seconds"`
	RecordCount    uint64  `json:"record_count"`
	AlertCount     uint64  `json:"alert_count"`
	FeedLength     uint64  `json:"feed_length"`
	OpenRequests   int     `json:"open_requests"`
	CPULoadPercent float64 `json:"cpu_load_percent"`
	MemoryMB       float64 `json:"memory_mb"`
	DiskFreeMB     float64 `json:"disk_free_mb"`
	LastFeedTime   string  `json:"last_feed_time"`
}

// Track server start time for uptime calculation
var startTime = time.Now()

// GetNodeMetrics returns current health metrics for the node.
func (s *Server) GetNodeMetrics() NodeMetrics {
	// Uptime
	uptime := int64(time.Since(startTime).Seconds())

	// Memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memoryMB := float64(m.Alloc) / (1024 * 1024)

	// Disk usage (root partition)
	var disk syscall.Statfs_t
	diskFreeMB := 0.0
	if err := syscall.Statfs("/", &disk); err == nil {
		diskFreeMB = float64(disk.Bfree) * float64(disk.Bsize) / (1024 * 1024)
	}

	// CPU usage: Use gopsutil to get current CPU percent
	cpuPercents, err := cpu.Percent(0, false)
	cpuLoad := 0.0
	if err == nil && len(cpuPercents) > 0 {
		cpuLoad = cpuPercents[0]
	}

	// Ledger counters
	var records, alerts, feed uint64
	if s.svc != nil {
		records, alerts, feed, _ = s.svc.Counts()
	}

	// Open requests: registered correlations whose result has not landed
	openRequests := 0
	if s.svc != nil {
		if reqs, err := s.svc.PendingRequests(); err == nil {
			for _, req := range reqs {
				if !req.Completed {
					openRequests++
				}
			}
		}
	}

	// Last feed time: timestamp of the newest feed entry, if any
	var lastFeedTime time.Time
	if s.svc != nil && feed > 0 {
		if entries, err := s.svc.FeedSince(feed-1, 1); err == nil && len(entries) > 0 {
			lastFeedTime = entries[0].At
		}
	}

	return NodeMetrics{
		UptimeSeconds:  uptime,
		RecordCount:    records,
		AlertCount:     alerts,
		FeedLength:     feed,
		OpenRequests:   openRequests,
		CPULoadPercent: cpuLoad,
		MemoryMB:       memoryMB,
		DiskFreeMB:     diskFreeMB,
		LastFeedTime:   lastFeedTime.Format(time.RFC3339),
	}
}
