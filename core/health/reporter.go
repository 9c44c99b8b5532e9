package health

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/all-source-os/allframe/core/logger"
)

const (
	// StatusOK marks a passing check or report.
	StatusOK = "ok"
	// StatusFail marks a failing check or report.
	StatusFail = "fail"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is one dependency's outcome inside a report.
type CheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report aggregates all dependency checks. Status is StatusOK only when
// every check passed.
type Report struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

type namedCheck struct {
	name  string
	check CheckFunc
}

// Reporter runs registered dependency checks and aggregates the outcomes.
// Checks run concurrently, each bounded by the per-check timeout.
type Reporter struct {
	checkTimeout time.Duration
	logger       *slog.Logger

	mu     sync.RWMutex
	checks []namedCheck
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithCheckTimeout bounds each check's runtime. Default is 5 seconds.
func WithCheckTimeout(d time.Duration) ReporterOption {
	return func(r *Reporter) {
		if d > 0 {
			r.checkTimeout = d
		}
	}
}

// WithReporterLogger configures structured logging for failing checks.
func WithReporterLogger(logger *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReporter creates a reporter with no checks; an empty reporter is
// healthy.
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		checkTimeout: 5 * time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AddCheck registers a named dependency check.
func (r *Reporter) AddCheck(name string, check CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Check runs every registered check concurrently and aggregates the
// results. Result order matches registration order.
func (r *Reporter) Check(ctx context.Context) Report {
	r.mu.RLock()
	checks := make([]namedCheck, len(r.checks))
	copy(checks, r.checks)
	r.mu.RUnlock()

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(idx int, nc namedCheck) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, r.checkTimeout)
			defer cancel()

			result := CheckResult{Name: nc.name, Status: StatusOK}
			if err := runCheck(checkCtx, nc.check); err != nil {
				result.Status = StatusFail
				result.Detail = err.Error()
				r.logger.ErrorContext(ctx, "health check failed",
					slog.String("check", nc.name),
					logger.Error(err))
			}
			results[idx] = result
		}(i, c)
	}
	wg.Wait()

	report := Report{Status: StatusOK, Checks: results}
	for _, result := range results {
		if result.Status != StatusOK {
			report.Status = StatusFail
			break
		}
	}
	return report
}

// runCheck bounds a check by its context even when the check ignores it.
func runCheck(ctx context.Context, check CheckFunc) error {
	done := make(chan error, 1)
	go func() {
		done <- check(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
