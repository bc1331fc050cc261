package adapter

import (
	"go.opentelemetry.io/otel"

	"github.com/srediag/plugin-shmem/pkg/shm"
)

// InstrumentationScope names the meter and tracer used for segments.
const InstrumentationScope = "github.com/srediag/plugin-shmem/pkg/shm"

// WithGlobalTelemetry fills the Meter and Tracer of cfg from the global
// OpenTelemetry providers, keeping any already set.
func WithGlobalTelemetry(cfg *shm.Config) *shm.Config {
	if cfg.Meter == nil {
		cfg.Meter = otel.GetMeterProvider().Meter(InstrumentationScope)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.GetTracerProvider().Tracer(InstrumentationScope)
	}
	return cfg
}
