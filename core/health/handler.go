package health

import (
	"encoding/json"
	"net/http"
)

// handlerConfig controls which endpoints aggregate and which are static.
type handlerConfig struct {
	readinessAggregates bool
}

// HandlerOption configures the health handler.
type HandlerOption func(*handlerConfig)

// WithAggregatedReadiness makes /ready and /readyz run the dependency
// checks instead of answering a static 200.
func WithAggregatedReadiness() HandlerOption {
	return func(c *handlerConfig) {
		c.readinessAggregates = true
	}
}

// Handler serves the standard probe endpoints from a reporter:
//
//   - /health, /healthz: aggregate report, 200 or 503 with a JSON body
//   - /ready, /readyz: static 200 (aggregate with WithAggregatedReadiness)
//   - /live, /livez: static 200
func Handler(reporter *Reporter, opts ...HandlerOption) http.Handler {
	var cfg handlerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	mux := http.NewServeMux()

	aggregate := func(w http.ResponseWriter, r *http.Request) {
		report := reporter.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !report.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	}

	static := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}

	mux.HandleFunc("/health", aggregate)
	mux.HandleFunc("/healthz", aggregate)

	readiness := static
	if cfg.readinessAggregates {
		readiness = aggregate
	}
	mux.HandleFunc("/ready", readiness)
	mux.HandleFunc("/readyz", readiness)
	mux.HandleFunc("/live", static)
	mux.HandleFunc("/livez", static)

	return mux
}
