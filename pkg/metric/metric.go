// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	metrics "github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all engine metrics using luxfi/metric
type Metrics struct {
	metricsInstance metrics.Metrics

	// Simulation metrics
	SimulationTicks metrics.CounterVec
	TickFailures    metrics.CounterVec
	ActiveDrivers   metrics.Gauge

	// Document store metrics
	DocumentsWritten metrics.Counter
	DocumentsRead    metrics.Counter

	// Domain counters
	EarningsCreated  metrics.Counter
	ContactsReceived metrics.Counter
	UsageRecorded    metrics.Counter
	WebhookEvents    metrics.CounterVec

	// API metrics
	RequestsProcessed metrics.CounterVec
	FeedClients       metrics.Gauge

	// Performance metrics
	MutationDuration metrics.Histogram
	QueryDuration    metrics.Histogram
}

// NewMetrics creates a new metrics instance using luxfi/metric
func NewMetrics() (*Metrics, error) {
	factory := metrics.NewPrometheusFactory()
	metricsInstance := factory.New("precise")

	m := &Metrics{
		metricsInstance: metricsInstance,
	}

	// Simulation metrics
	m.SimulationTicks = metricsInstance.NewCounterVec(
		"sim_ticks_total",
		"Total number of simulation ticks by driver",
		[]string{"driver"},
	)
	m.TickFailures = metricsInstance.NewCounterVec(
		"sim_tick_failures_total",
		"Total number of failed simulation ticks by driver",
		[]string{"driver"},
	)
	m.ActiveDrivers = metricsInstance.NewGauge("sim_active_drivers", "Number of running simulation drivers")

	// Document store metrics
	m.DocumentsWritten = metricsInstance.NewCounter("store_documents_written_total", "Total documents written to the store")
	m.DocumentsRead = metricsInstance.NewCounter("store_documents_read_total", "Total documents read from the store")

	// Domain counters
	m.EarningsCreated = metricsInstance.NewCounter("earnings_created_total", "Total earning events created")
	m.ContactsReceived = metricsInstance.NewCounter("contacts_received_total", "Total contact form submissions received")
	m.UsageRecorded = metricsInstance.NewCounter("usage_recorded_total", "Total usage queries recorded against assets")
	m.WebhookEvents = metricsInstance.NewCounterVec(
		"webhook_events_total",
		"Total DSP webhook events received by type",
		[]string{"event"},
	)

	// API metrics
	m.RequestsProcessed = metricsInstance.NewCounterVec(
		"api_requests_processed_total",
		"Total number of API requests processed",
		[]string{"method", "status"},
	)
	m.FeedClients = metricsInstance.NewGauge("feed_clients", "Number of connected live-feed clients")

	// Performance metrics
	m.MutationDuration = metricsInstance.NewHistogram(
		"mutation_duration_seconds",
		"Time to apply a store mutation",
		prometheus.DefBuckets,
	)
	m.QueryDuration = metricsInstance.NewHistogram(
		"query_duration_seconds",
		"Time to run an analytics query",
		prometheus.DefBuckets,
	)

	return m, nil
}

// GetGatherer returns the prometheus gatherer for metrics export
func (m *Metrics) GetGatherer() prometheus.Gatherer {
	if registry := m.metricsInstance.Registry(); registry != nil {
		return registry
	}
	return prometheus.DefaultGatherer
}

// GetRegisterer returns the prometheus registerer
func (m *Metrics) GetRegisterer() prometheus.Registerer {
	if registry := m.metricsInstance.Registry(); registry != nil {
		return registry
	}
	return prometheus.DefaultRegisterer
}
