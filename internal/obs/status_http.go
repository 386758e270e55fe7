package obs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// StatusSource exposes read-only snapshots of the monitoring loops. Values
// may be stale; there is exactly one writer per entry.
type StatusSource interface {
	Running() bool
	LastChecks() map[string]time.Time
}

// BootstrapStatusServer serves /metrics, /healthz, / and /statusz on addr.
func BootstrapStatusServer(addr string, health func(context.Context) error, src StatusSource, l *zap.Logger) *http.Server {
	ms := createStatusServer(addr, health, src)

	go func() {
		l.Info("status listening", zap.String("addr", addr))
		if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("status server error", zap.Error(err))
		}
	}()

	return ms
}

func createStatusServer(addr string, health func(context.Context) error, src StatusSource) *http.Server {
	start := time.Now()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if health != nil {
			if err := health(ctx); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":         "alive",
			"uptime_seconds": time.Since(start).Seconds(),
		})
	})
	mux.HandleFunc("/statusz", func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]any{
			"uptime_seconds": time.Since(start).Seconds(),
			"running":        false,
			"last_checks":    map[string]string{},
		}
		if src != nil {
			last := make(map[string]string)
			for id, ts := range src.LastChecks() {
				last[id] = ts.UTC().Format(time.RFC3339)
			}
			resp["running"] = src.Running()
			resp["last_checks"] = last
		}
		writeJSON(w, resp)
	})

	return &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(mux, "status"),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
