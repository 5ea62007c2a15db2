package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/armmbed/mbedtargets/internal/snapshot"
)

// StartMockDatabase runs a mock board database serving the embedded
// snapshot at /api/v4/targets/all. Requests must carry token as a bearer
// token when token is non-empty.
// Call this in a goroutine before querying it.
func StartMockDatabase(addr, token string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/targets/all", func(w http.ResponseWriter, r *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			slog.Warn("rejected request", "request_id", r.Header.Get("X-Request-ID"))
			http.Error(w, `{"errors": [{"title": "unauthorized"}]}`, http.StatusUnauthorized)
			return
		}

		records, err := snapshot.Embedded()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		slog.Info("serving targets", "count", len(records), "request_id", r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"data": records}); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
