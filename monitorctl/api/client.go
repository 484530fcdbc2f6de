package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"strconv"
)

// BaseURL returns the node API base URL. MONITORCTL_SERVER overrides
// the local default.
func BaseURL() string {
	if url := os.Getenv("MONITORCTL_SERVER"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

type Status struct {
	Records      uint64 `json:"records"`
	Alerts       uint64 `json:"alerts"`
	FeedLength   uint64 `json:"feed_length"`
	OpenRequests int    `json:"open_requests"`
	Version      string `json:"version"`
}

func (s Status) ToJSON() string {
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

func GetStatus() (Status, error) {
	resp, err := http.Get(BaseURL() + "/api/cli/status")
	if err != nil {
		return Status{}, err
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// postJSON sends a JSON payload and decodes the JSON receipt.
func postJSON(path string, payload interface{}, bearer, caregiverToken string) (map[string]interface{}, error) {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", BaseURL()+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if caregiverToken != "" {
		req.Header.Set("X-Caregiver-Token", caregiverToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("Error: %s", string(body))
	}
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitRecord deposits an encrypted sensor record's handles.
func SubmitRecord(deviceID, activityHandle, sleepHandle, bearer string) (map[string]interface{}, error) {
	payload := map[string]string{
		"deviceId":       deviceID,
		"activityHandle": activityHandle,
		"sleepHandle":    sleepHandle,
	}
	return postJSON("/api/v1/submit-sensor-record", payload, bearer, "")
}

// SubmitAlert deposits an encrypted alert's handle.
func SubmitAlert(deviceID, payloadHandle, bearer string) (map[string]interface{}, error) {
	payload := map[string]string{
		"deviceId":      deviceID,
		"payloadHandle": payloadHandle,
	}
	return postJSON("/api/v1/submit-alert", payload, bearer, "")
}

// RequestAnomaly asks the node to dispatch an anomaly detection request.
func RequestAnomaly(recordID uint64, caregiverToken string) (map[string]interface{}, error) {
	return postJSON("/api/v1/request-anomaly-detection", map[string]uint64{"recordId": recordID}, "", caregiverToken)
}

// RequestAlertDecryption asks the node to dispatch an alert decryption request.
func RequestAlertDecryption(alertID uint64, caregiverToken string) (map[string]interface{}, error) {
	return postJSON("/api/v1/request-alert-decryption", map[string]uint64{"alertId": alertID}, "", caregiverToken)
}

type Outcome struct {
	RecordID uint64 `json:"recordId"`
	Summary  string `json:"summary"`
	Handled  bool   `json:"handled"`
}

// GetOutcome fetches the decrypted outcome for a record.
func GetOutcome(recordID uint64) (Outcome, error) {
	resp, err := http.Get(BaseURL() + "/api/v1/decrypted-event?id=" + strconv.FormatUint(recordID, 10))
	if err != nil {
		return Outcome{}, err
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return Outcome{}, fmt.Errorf("Error: %s", string(body))
	}
	var outcome Outcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

// FeedEntry is one notification from the node's append-only feed.
type FeedEntry struct {
	Seq      uint64 `json:"seq"`
	Kind     string `json:"kind"`
	RecordID uint64 `json:"recordId"`
	AlertID  uint64 `json:"alertId"`
	At       string `json:"at"`
}

// GetFeed fetches up to limit feed entries with seq > after.
func GetFeed(after uint64, limit int) ([]FeedEntry, error) {
	url := fmt.Sprintf("%s/api/v1/feed?after=%d&limit=%d", BaseURL(), after, limit)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("Error: %s", string(body))
	}
	var out struct {
		After   uint64      `json:"after"`
		Entries []FeedEntry `json:"entries"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// PendingRequest is one registered oracle correlation.
type PendingRequest struct {
	RequestID string `json:"requestId"`
	Kind      string `json:"kind"`
	RecordID  uint64 `json:"recordId"`
	AlertID   uint64 `json:"alertId"`
	Completed bool   `json:"completed"`
}

type PendingList struct {
	Requests []PendingRequest `json:"requests"`
	Open     int              `json:"open"`
	Total    int              `json:"total"`
}

// GetPending lists all registered correlations (dev nodes only).
func GetPending() (PendingList, error) {
	resp, err := http.Get(BaseURL() + "/api/v1/dev/pending-requests")
	if err != nil {
		return PendingList{}, err
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return PendingList{}, fmt.Errorf("Error: %s", string(body))
	}
	var list PendingList
	if err := json.Unmarshal(body, &list); err != nil {
		return PendingList{}, err
	}
	return list, nil
}
