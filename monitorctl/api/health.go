package api

import (
	"encoding/json"
	"net/http"
)

type HealthMetrics struct {
	Status  string `json:"status"`
	Metrics struct {
		UptimeSeconds  int64   `json:"uptime_seconds"`
		RecordCount    uint64  `json:"record_count"`
		AlertCount     uint64  `json:"alert_count"`
		FeedLength     uint64  `json:"feed_length"`
		OpenRequests   int     `json:"open_requests"`
		CPULoadPercent float64 `json:"cpu_load_percent"`
		MemoryMB       float64 `json:"memory_mb"`
		DiskFreeMB     float64 `json:"disk_free_mb"`
		LastFeedTime   string  `json:"last_feed_time"`
	} `json:"metrics"`
}

func GetHealthMetrics() (HealthMetrics, error) {
	resp, err := http.Get(BaseURL() + "/nodehealth")
	if err != nil {
		return HealthMetrics{}, err
	}
	defer resp.Body.Close()

	var data HealthMetrics
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return HealthMetrics{}, err
	}
	return data, nil
}

func GetLiveness() (bool, error) {
	resp, err := http.Get(BaseURL() + "/health/liveness")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	var result struct {
		Alive bool `json:"alive"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.Alive, nil
}

func GetReadiness() (bool, error) {
	resp, err := http.Get(BaseURL() + "/health/readiness")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	var result struct {
		Ready bool `json:"ready"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.Ready, nil
}
