package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Posts a few sample records to a running instance. Useful for
// smoke-testing a fresh deployment.

type samplePayload struct {
	Filename    string  `json:"filename"`
	Duration    float64 `json:"duration"`
	Size        int64   `json:"size"`
	ReceivedAt  string  `json:"received_at"`
	QueueTime   float64 `json:"queue_time"`
	ProcessTime float64 `json:"process_time"`
	Text        string  `json:"text"`
}

func main() {
	baseURL := os.Getenv("SEED_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	samples := []samplePayload{
		{
			Filename:    "testfile.txt",
			Duration:    41.5,
			Size:        1345,
			ReceivedAt:  "2025-07-21 12:36:56",
			QueueTime:   1.2,
			ProcessTime: 0.8,
			Text:        "sample log body",
		},
		{
			Filename:    "ingest.log",
			Duration:    3.25,
			Size:        512,
			ReceivedAt:  time.Now().Format("2006-01-02 15:04:05"),
			QueueTime:   0.1,
			ProcessTime: 0.4,
			Text:        "second sample log body",
		},
	}

	client := &http.Client{Timeout: 10 * time.Second}
	for _, sample := range samples {
		body, err := json.Marshal(sample)
		if err != nil {
			log.Fatalf("marshal sample: %v", err)
		}

		resp, err := client.Post(baseURL+"/log", "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("post sample: %v", err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		fmt.Printf("POST /log %s -> %d %s\n", sample.Filename, resp.StatusCode, string(respBody))
	}

	log.Println("✅ Seeding completed successfully!")
}
