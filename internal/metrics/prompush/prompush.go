// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A sampling run is a short-lived batch process, so instead of exposing a
// scrape endpoint the collected metrics are pushed to a Pushgateway once
// the run finishes. Every run pushes under its own "instance" grouping key
// so concurrent runs of the same job do not overwrite each other.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/proycon/ssam/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	instance   string // Pushgateway "instance" group, one per run
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // ssam_step_total
	stepDuration *prometheus.SummaryVec // ssam_step_duration_seconds
	unitCounter  *prometheus.CounterVec // ssam_units_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name; defaults to "ssam".
// instance: grouping value identifying this run; may be empty.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, instance, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "ssam"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Total number of run step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of run steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	unitCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.UnitsTotal,
			Help: "Unit counts per kind (read, excluded, assigned, unassigned, written).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(stepCounter); err != nil {
		return nil, fmt.Errorf("prompush: register step counter: %w", err)
	}
	if err := reg.Register(stepDuration); err != nil {
		return nil, fmt.Errorf("prompush: register step summary: %w", err)
	}
	if err := reg.Register(unitCounter); err != nil {
		return nil, fmt.Errorf("prompush: register unit counter: %w", err)
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		instance:     instance,
		reg:          reg,
		stepCounter:  stepCounter,
		stepDuration: stepDuration,
		unitCounter:  unitCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case metrics.UnitsTotal:
		if b.unitCounter == nil {
			return
		}
		b.unitCounter.WithLabelValues(labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	if b.instance != "" {
		p = p.Grouping("instance", b.instance)
	}
	return p.Push()
}
