package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

func main() {
	// Read API JWT secret from environment (for Authorization header)
	apiJwtSecret := os.Getenv("API_JWT_SECRET")
	if apiJwtSecret == "" {
		fmt.Println("API_JWT_SECRET not set in environment")
		os.Exit(1)
	}

	deviceID := os.Getenv("DEVICE_ID")
	if deviceID == "" {
		deviceID = "bedroom-hub-01"
	}

	nodeURL := os.Getenv("MONITOR_NODE_URL")
	if nodeURL == "" {
		nodeURL = "http://localhost:8080"
	}

	// The encrypted observation windows stay in the device vault; the
	// node only ever sees their handles.
	activityBlob, err := ioutil.ReadFile("activity_window.enc")
	if err != nil {
		fmt.Printf("Failed to read activity_window.enc: %v\n", err)
		os.Exit(1)
	}
	sleepBlob, err := ioutil.ReadFile("sleep_window.enc")
	if err != nil {
		fmt.Printf("Failed to read sleep_window.enc: %v\n", err)
		os.Exit(1)
	}

	submission := map[string]string{
		"deviceId":       deviceID,
		"activityHandle": ids.NewHandle(activityBlob).String(),
		"sleepHandle":    ids.NewHandle(sleepBlob).String(),
	}
	jsonData, err := json.Marshal(submission)
	if err != nil {
		panic(err)
	}

	url := nodeURL + "/api/v1/submit-sensor-record"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiJwtSecret)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	body, _ := ioutil.ReadAll(resp.Body)
	fmt.Println("Response:", string(body))
}
