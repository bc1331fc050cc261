package shm

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/srediag/plugin-shmem/pkg/shm"

const (
	directionIn  = "in"
	directionOut = "out"
)

type instruments struct {
	tracer      trace.Tracer
	allocations metric.Int64Counter
	copied      metric.Int64Counter
	elements    metric.Int64UpDownCounter
}

func newInstruments(cfg *Config) *instruments {
	meter := cfg.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	inst := &instruments{tracer: tracer}

	var err error
	if inst.allocations, err = meter.Int64Counter("shm.segment.allocations",
		metric.WithDescription("Segment allocation attempts, by result.")); err != nil {
		inst.allocations = metricnoop.Int64Counter{}
	}
	if inst.copied, err = meter.Int64Counter("shm.segment.copied",
		metric.WithDescription("Elements moved between the segment and external buffers."),
		metric.WithUnit("{element}")); err != nil {
		inst.copied = metricnoop.Int64Counter{}
	}
	if inst.elements, err = meter.Int64UpDownCounter("shm.segment.elements",
		metric.WithDescription("Elements currently attached."),
		metric.WithUnit("{element}")); err != nil {
		inst.elements = metricnoop.Int64UpDownCounter{}
	}
	return inst
}

func (i *instruments) recordAllocation(ctx context.Context, key int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	i.allocations.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("shm.key", key),
		attribute.String("result", result),
	))
}

func (i *instruments) recordCopy(direction string, n int) {
	if n == 0 {
		return
	}
	i.copied.Add(context.Background(), int64(n), metric.WithAttributes(attribute.String("direction", direction)))
}

func (i *instruments) recordAttached(delta int) {
	if delta == 0 {
		return
	}
	i.elements.Add(context.Background(), int64(delta))
}
