// simulate fires genuinely concurrent traffic at a running api-server to
// exercise the two booking races: N clients booking the same slot, and
// overlapping slot creates for the same tenant. A correct deployment yields
// exactly one success per contended resource.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gosimple/slug"
)

type simConfig struct {
	baseURL string
	workers int
}

type raceResult struct {
	success  int64
	conflict int64
	failure  int64
}

func (r *raceResult) record(status int) {
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&r.success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&r.conflict, 1)
	default:
		atomic.AddInt64(&r.failure, 1)
	}
}

func main() {
	cfg := simConfig{}
	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:8080", "api-server base URL")
	flag.IntVar(&cfg.workers, "workers", 25, "concurrent clients per race")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}

	tenantID := mustCreateTenant(client, cfg.baseURL)
	log.Printf("created tenant %s", tenantID)

	runBookingRace(client, cfg, tenantID)
	runOverlapRace(client, cfg, tenantID)
}

// runBookingRace creates one slot and books it from `workers` goroutines at
// once. Exactly one booking must succeed.
func runBookingRace(client *http.Client, cfg simConfig, tenantID string) {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	slotID := mustCreateSlot(client, cfg.baseURL, tenantID, start, start.Add(time.Hour))
	log.Printf("booking race: slot %s, %d concurrent clients", slotID, cfg.workers)

	var result raceResult
	var wg sync.WaitGroup

	gate := make(chan struct{})
	for i := 0; i < cfg.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-gate

			body := map[string]any{
				"slot_id": slotID,
				"customer": map[string]any{
					"name":  gofakeit.Name(),
					"email": gofakeit.Email(),
				},
			}
			status := doPost(client, fmt.Sprintf("%s/tenants/%s/appointments", cfg.baseURL, tenantID), body)
			result.record(status)
		}()
	}
	close(gate)
	wg.Wait()

	log.Printf("booking race: success=%d conflict=%d failure=%d", result.success, result.conflict, result.failure)
	if result.success != 1 {
		log.Printf("WARNING: expected exactly 1 successful booking, got %d", result.success)
	}
}

// runOverlapRace creates `workers` slots that all overlap the same window.
// Exactly one create must succeed; the rest must be rejected as overlaps or
// retryable lock contention.
func runOverlapRace(client *http.Client, cfg simConfig, tenantID string) {
	base := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	log.Printf("overlap race: window %s, %d concurrent creates", base.Format(time.RFC3339), cfg.workers)

	var result raceResult
	var wg sync.WaitGroup

	gate := make(chan struct{})
	for i := 0; i < cfg.workers; i++ {
		offset := time.Duration(i) * 10 * time.Minute
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-gate

			body := map[string]any{
				"start_time": base.Add(offset).Format(time.RFC3339),
				"end_time":   base.Add(offset + time.Hour).Format(time.RFC3339),
			}
			status := doPost(client, fmt.Sprintf("%s/tenants/%s/slots", cfg.baseURL, tenantID), body)
			result.record(status)
		}()
	}
	close(gate)
	wg.Wait()

	log.Printf("overlap race: success=%d conflict=%d failure=%d", result.success, result.conflict, result.failure)
	if result.success < 1 {
		log.Printf("WARNING: expected at least 1 successful slot create, got %d", result.success)
	}
}

func mustCreateTenant(client *http.Client, baseURL string) string {
	name := gofakeit.Company()
	body := map[string]any{
		"name": name,
		"slug": slug.Make(name) + "-" + fmt.Sprint(time.Now().UnixNano()),
	}

	var resp struct {
		ID string `json:"id"`
	}
	status := doPostDecode(client, baseURL+"/tenants", body, &resp)
	if status != http.StatusCreated {
		log.Fatalf("create tenant: unexpected status %d", status)
	}
	return resp.ID
}

func mustCreateSlot(client *http.Client, baseURL, tenantID string, start, end time.Time) string {
	body := map[string]any{
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}

	var resp struct {
		ID string `json:"id"`
	}
	status := doPostDecode(client, fmt.Sprintf("%s/tenants/%s/slots", baseURL, tenantID), body, &resp)
	if status != http.StatusCreated {
		log.Fatalf("create slot: unexpected status %d", status)
	}
	return resp.ID
}

func doPost(client *http.Client, url string, body map[string]any) int {
	return doPostDecode(client, url, body, nil)
}

func doPostDecode(client *http.Client, url string, body map[string]any, out any) int {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("marshal request: %v", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("post %s: %v", url, err)
		return 0
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode response: %v", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return resp.StatusCode
}
