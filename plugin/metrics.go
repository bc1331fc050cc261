/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package plugin

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "shmem"

// Diagnostic kinds, used as the "kind" label of shmem_diagnostics_total.
const (
	diagUsage       = "usage"
	diagInvalidKey  = "invalid_key"
	diagAllocate    = "allocate"
	diagNotAttached = "not_attached"
	diagLookup      = "lookup"
	diagTeardown    = "teardown"
	diagSelector    = "selector"
)

// Metrics holds the prometheus collectors of a Class. A nil *Metrics records nothing.
type Metrics struct {
	allocations *prometheus.CounterVec
	copied      *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	objects     prometheus.Gauge
	capacity    *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "allocations_total",
			Help:      "Segment allocations, by result.",
		}, []string{"result"}),
		copied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "copied_elements_total",
			Help:      "Elements copied between segments and tables, by direction.",
		}, []string{"direction"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "diagnostics_total",
			Help:      "Errors reported to the host, by kind.",
		}, []string{"kind"}),
		objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "objects",
			Help:      "Live shmem objects.",
		}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "segment_capacity_elements",
			Help:      "Capacity of the segment attached by each object, 0 when unattached.",
		}, []string{"object"}),
	}
	for _, c := range []prometheus.Collector{m.allocations, m.copied, m.diagnostics, m.objects, m.capacity} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) allocation(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.allocations.WithLabelValues(result).Inc()
}

func (m *Metrics) copiedElements(direction string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.copied.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) diagnostic(kind string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(kind).Inc()
}

func (m *Metrics) objectCreated(name string) {
	if m == nil {
		return
	}
	m.objects.Inc()
	m.capacity.WithLabelValues(name).Set(0)
}

func (m *Metrics) objectFreed(name string) {
	if m == nil {
		return
	}
	m.objects.Dec()
	m.capacity.DeleteLabelValues(name)
}

func (m *Metrics) segmentCapacity(name string, capacity int) {
	if m == nil {
		return
	}
	m.capacity.WithLabelValues(name).Set(float64(capacity))
}
