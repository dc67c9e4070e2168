package main

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

var maxDevices int = 50
var requestsPerWorker int = 200
var workers int = 20
var httpHostPort string = "127.0.0.1:1080"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

// seedload hammers a running dashboard server to measure how the bucketed
// cache loader holds up under concurrent read load. Seed the CSV first:
//
//	go run ./cmd/simulator --devices 50 --history-days 30
func main() {
	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	paths := []string{
		"/api/records?device=%d",
		"/api/records?status=OK&status=WARN&limit=50",
		"/api/devices/latest",
		"/api/status/counts",
		"/api/summary",
	}

	var startTime time.Time
	var usedTime time.Duration
	var failed int64
	var mu sync.Mutex

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range requestsPerWorker {
				path := paths[rnd.Intn(len(paths))]
				if path == paths[0] {
					path = fmt.Sprintf(path, 1+rnd.Intn(maxDevices))
				}
				resp, err := http.Get(fmt.Sprintf("http://%s%s", httpHostPort, path))
				if err != nil || resp.StatusCode != http.StatusOK {
					mu.Lock()
					failed++
					mu.Unlock()
				}
				if err == nil {
					io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	total := workers * requestsPerWorker
	fmt.Printf("done: %d requests in %v (%.0f req/s), %d failed\n",
		total, usedTime, float64(total)/usedTime.Seconds(), failed)
}
