// Package metrics exposes prometheus counters for scan and apply runs.
//
// A nil *Collector is valid and records nothing, so library callers that do
// not care about metrics can pass nil everywhere.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "redactable"

// Collector groups the counters recorded by the registry and the engine.
type Collector struct {
	registry *prometheus.Registry

	findingsTotal         *prometheus.CounterVec
	detectorFailuresTotal *prometheus.CounterVec
	replacementsTotal     *prometheus.CounterVec
	scanDuration          prometheus.Histogram
	policyReloadsTotal    *prometheus.CounterVec
}

// NewCollector registers the collector's metrics with registry. A nil registry
// gets a fresh private one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "findings_total",
				Help:      "Findings emitted by detectors, by kind",
			},
			[]string{"kind"},
		),
		detectorFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "detector_failures_total",
				Help:      "Detector runs that failed and were isolated",
			},
			[]string{"detector"},
		),
		replacementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "replacements_total",
				Help:      "Spans rewritten by the policy engine",
			},
			[]string{"action", "kind"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Wall time of a full registry scan",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
		),
		policyReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_reloads_total",
				Help:      "Policy file reload attempts by outcome",
			},
			[]string{"status"},
		),
	}
	registry.MustRegister(c.findingsTotal, c.detectorFailuresTotal, c.replacementsTotal, c.scanDuration, c.policyReloadsTotal)
	return c
}

// Registry returns the prometheus registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// AddFindings counts n findings of kind.
func (c *Collector) AddFindings(kind string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.findingsTotal.WithLabelValues(kind).Add(float64(n))
}

// DetectorFailed counts one isolated detector failure.
func (c *Collector) DetectorFailed(detector string) {
	if c == nil {
		return
	}
	c.detectorFailuresTotal.WithLabelValues(detector).Inc()
}

// Replaced counts one applied replacement.
func (c *Collector) Replaced(action, kind string) {
	if c == nil {
		return
	}
	c.replacementsTotal.WithLabelValues(action, kind).Inc()
}

// ObserveScan records the duration of one registry scan.
func (c *Collector) ObserveScan(d time.Duration) {
	if c == nil {
		return
	}
	c.scanDuration.Observe(d.Seconds())
}

// PolicyReloaded counts a reload attempt; ok selects the status label.
func (c *Collector) PolicyReloaded(ok bool) {
	if c == nil {
		return
	}
	status := "success"
	if !ok {
		status = "error"
	}
	c.policyReloadsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile dumps all metrics in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
