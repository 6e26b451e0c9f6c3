package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
)

// Seeds a running server with sample drafts so local dashboards have
// something to show. Posts against the public surface rather than the store
// directly, so it works the same for memory and Postgres deployments.
func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "Server base URL")
	count := flag.Int("count", 5, "How many drafts to create")
	flag.Parse()

	_ = godotenv.Load()

	client := &http.Client{Timeout: 10 * time.Second}

	samples := []map[string]any{
		{
			"channel":          "email",
			"conversation_id":  "conv-inventory-1001",
			"incoming_text":    "Hello, do you have this in stock?\nI need three units by Friday.",
			"draft_text":       "Hi! Yes, we have it in stock and can ship three units today.",
			"subject":          "Stock availability",
			"customer_display": "Sam Porter",
			"customer_email":   "sam@example.com",
			"confidence":       0.92,
			"tags":             []string{"inventory", "priority"},
		},
		{
			"channel":         "chat",
			"conversation_id": "conv-returns-2002",
			"incoming_text":   "My order arrived damaged, what do I do now?",
			"draft_text":      "Sorry about that! I can start a replacement right away.",
			"customer_email":  "casey@example.com",
			"confidence":      0.41,
			"tags":            []string{"returns"},
		},
		{
			"channel":         "email",
			"conversation_id": "conv-billing-3003",
			"incoming_text":   "I was charged twice this month.",
			"draft_text":      "I see the duplicate charge and have issued a refund.",
			"subject":         "Duplicate charge",
			"confidence":      0.75,
			"tags":            []string{"billing"},
		},
	}

	created := 0
	for i := 0; i < *count; i++ {
		payload := make(map[string]any, len(samples[i%len(samples)])+1)
		for k, v := range samples[i%len(samples)] {
			payload[k] = v
		}
		payload["conversation_id"] = fmt.Sprintf("%s-%d", payload["conversation_id"], i)

		body, err := json.Marshal(payload)
		if err != nil {
			log.Fatalf("Failed to marshal sample draft: %v", err)
		}

		resp, err := client.Post(*baseURL+"/assistants/draft", "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("Failed to post draft: %v", err)
		}
		if resp.StatusCode >= 300 {
			resp.Body.Close()
			log.Fatalf("Draft rejected with status %d", resp.StatusCode)
		}

		var out struct {
			DraftID string `json:"draft_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			resp.Body.Close()
			log.Fatalf("Failed to decode response: %v", err)
		}
		resp.Body.Close()

		log.Printf("created draft %s", out.DraftID)
		created++
	}

	log.Printf("seeded %d drafts", created)
}
