// Package adapter exposes plugin-shmem state to external monitoring systems.
package adapter

import (
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/plugin-shmem/api"
)

const (
	// DefaultGoroutineThreshold fails liveness when the process leaks goroutines.
	DefaultGoroutineThreshold = 10000
	defaultCheckTimeout       = time.Second
)

// HealthOptions configures NewHealthHandler.
type HealthOptions struct {
	// GoroutineThreshold is the liveness goroutine limit, DefaultGoroutineThreshold when 0.
	GoroutineThreshold int
	// Registerer, when set, also exports each check as a prometheus gauge.
	Registerer prometheus.Registerer
	// Namespace of the exported gauges.
	Namespace string
}

// NewHealthHandler returns a handler serving /live and /ready. Readiness
// fails while any object of src has no segment attached.
func NewHealthHandler(src api.Health, opts HealthOptions) healthcheck.Handler {
	var h healthcheck.Handler
	if opts.Registerer != nil {
		h = healthcheck.NewMetricsHandler(opts.Registerer, opts.Namespace)
	} else {
		h = healthcheck.NewHandler()
	}
	threshold := opts.GoroutineThreshold
	if threshold <= 0 {
		threshold = DefaultGoroutineThreshold
	}
	h.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(threshold))
	if src != nil {
		h.AddReadinessCheck("segments-attached", healthcheck.Timeout(src.Attached, defaultCheckTimeout))
	}
	return h
}
