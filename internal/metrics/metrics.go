// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the prometheus instruments for record-source traffic
// and offline substitution. Each Metrics owns its registry so tests and
// embedding programs get isolated counters.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "collab_finder"

// Metrics groups the instruments.
type Metrics struct {
	Registry *prometheus.Registry

	// SourceRequests counts live source calls by operation and outcome
	// (ok, not_found, unavailable, rejected).
	SourceRequests *prometheus.CounterVec

	// Substitutions counts offline substitutions by operation.
	Substitutions *prometheus.CounterVec

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState *prometheus.GaugeVec

	// EnrichmentFailures counts trend entries whose detail lookup failed.
	EnrichmentFailures *prometheus.CounterVec
}

// New creates and registers the instruments on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SourceRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_requests_total",
				Help:      "Live record source calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		Substitutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offline_substitutions_total",
				Help:      "Results served from the offline corpus instead of the live source.",
			},
			[]string{"operation"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
			},
			[]string{"name"},
		),
		EnrichmentFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trend_enrichment_failures_total",
				Help:      "Trend entries whose detail lookup failed.",
			},
			[]string{"kind"},
		),
	}
	m.Registry.MustRegister(m.SourceRequests, m.Substitutions, m.BreakerState, m.EnrichmentFailures)
	return m
}

// WriteText writes every registered metric family in the text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
