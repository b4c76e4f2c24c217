package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("SIFT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Checking root...")
	if !sendRequest(baseURL, "GET", "/", nil) {
		fmt.Println("FAILED: Root")
		os.Exit(1)
	}
	fmt.Println("PASSED: Root")

	fmt.Println("2. Basic search...")
	basic := map[string]interface{}{
		"query":       "quantum computing basics",
		"mode":        "basic",
		"max_results": 5,
	}
	if !sendRequest(baseURL, "POST", "/search", basic) {
		fmt.Println("FAILED: Basic search")
		os.Exit(1)
	}
	fmt.Println("PASSED: Basic search")

	fmt.Println("3. Advanced search...")
	advanced := map[string]interface{}{
		"query":       "golang generics tutorial",
		"mode":        "advanced",
		"max_results": 5,
	}
	if engine := os.Getenv("SIFT_ENGINE"); engine != "" {
		advanced["llm_engine"] = engine
		advanced["provide_answer"] = true
	}
	if !sendRequest(baseURL, "POST", "/search", advanced) {
		fmt.Println("FAILED: Advanced search")
		os.Exit(1)
	}
	fmt.Println("PASSED: Advanced search")
}

func sendRequest(baseURL, method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
