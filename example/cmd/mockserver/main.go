// Standalone mock board database for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/mbedtargets list -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/armmbed/mbedtargets/internal/snapshot"
)

func main() {
	fmt.Println("Mock board database starting on :9999")
	fmt.Println("Serving http://localhost:9999/api/v4/targets/all")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	http.HandleFunc("/api/v4/targets/all", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		records, err := snapshot.Embedded()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		slog.Info("serving targets",
			"count", len(records),
			"request_id", r.Header.Get("X-Request-ID"),
			"authenticated", r.Header.Get("Authorization") != "",
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"data": records}); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
