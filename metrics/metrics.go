// Package metrics counts what analysis runs saw, per trace version, and writes
// the counters in the Prometheus text format for a node-exporter textfile
// collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"trace-flow/classify"
	"trace-flow/flow"
)

const namespace = "trace_flow"

// Collector owns a private registry so repeated runs in one process never
// collide with the global one.
type Collector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	purposes        *prometheus.CounterVec
	turns           *prometheus.CounterVec
	phases          *prometheus.CounterVec
	unknownRequests *prometheus.CounterVec
}

// NewCollector creates and registers all counters.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Captured requests by endpoint tag.",
		}, []string{"version", "tag"}),
		purposes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_purposes_total",
			Help:      "Model requests by how their purpose was decided.",
		}, []string{"version", "outcome"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "User-initiated turns detected.",
		}, []string{"version"}),
		phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phases_total",
			Help:      "Health-check phases completed.",
		}, []string{"version"}),
		unknownRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unrecognized_requests_total",
			Help:      "Requests with an unrecognized endpoint or purpose.",
		}, []string{"version", "kind"}),
	}

	c.registry.MustRegister(c.requests, c.purposes, c.turns, c.phases, c.unknownRequests)
	return c
}

// Registry exposes the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observer returns a flow.Observer recording into c under the given trace
// version.
func (c *Collector) Observer(version string) flow.Observer {
	return &versionObserver{c: c, version: version}
}

// WriteTextfile writes every counter to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

type versionObserver struct {
	c       *Collector
	version string
}

func (o *versionObserver) ObserveRequest(req flow.ClassifiedRequest) {
	o.c.requests.WithLabelValues(o.version, string(req.Tag)).Inc()

	if req.Tag == classify.TagUnknown {
		o.c.unknownRequests.WithLabelValues(o.version, "endpoint").Inc()
	}
	if req.Turn != nil {
		o.c.turns.WithLabelValues(o.version).Inc()
	}
	if req.Phase != nil {
		o.c.phases.WithLabelValues(o.version).Inc()
	}

	if req.Detail == nil {
		return
	}
	o.c.purposes.WithLabelValues(o.version, req.Outcome.String()).Inc()
	if req.Outcome == classify.OutcomeUnrecognized || req.Outcome == classify.OutcomeUnknownModel {
		o.c.unknownRequests.WithLabelValues(o.version, "pattern").Inc()
	}
}
