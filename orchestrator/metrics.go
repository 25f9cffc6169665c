// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics.
var (
	promTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novapay_assistant_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"destination", "status"},
	)
	promTurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "novapay_assistant_turn_duration_milliseconds",
			Help:    "Turn duration in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"destination"},
	)
	promToolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novapay_assistant_tool_calls_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool"},
	)
)

func init() {
	prometheus.MustRegister(promTurnsTotal)
	prometheus.MustRegister(promTurnDuration)
	prometheus.MustRegister(promToolCalls)
}

// destinationStats aggregates per-destination counters for the JSON
// metrics endpoint.
type destinationStats struct {
	Turns     int64   `json:"turns"`
	Failures  int64   `json:"failures"`
	AvgMS     float64 `json:"avg_ms"`
	latencies []int64
}

// Metrics keeps in-process counters alongside the Prometheus registry,
// served as JSON for quick inspection.
type Metrics struct {
	mu           sync.RWMutex
	startTime    time.Time
	totalTurns   int64
	failedTurns  int64
	destinations map[string]*destinationStats
	toolCounts   map[string]int64
}

// NewMetrics initializes the in-process counters.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime:    time.Now(),
		destinations: make(map[string]*destinationStats),
		toolCounts:   make(map[string]int64),
	}
}

// RecordTurn records one completed turn in both registries.
func (m *Metrics) RecordTurn(destination string, success bool, duration time.Duration, toolsUsed []string) {
	status := "success"
	if !success {
		status = "error"
	}
	ms := duration.Milliseconds()

	promTurnsTotal.WithLabelValues(destination, status).Inc()
	promTurnDuration.WithLabelValues(destination).Observe(float64(ms))
	for _, tool := range toolsUsed {
		promToolCalls.WithLabelValues(tool).Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalTurns++
	if !success {
		m.failedTurns++
	}

	ds, ok := m.destinations[destination]
	if !ok {
		ds = &destinationStats{latencies: make([]int64, 0, 1000)}
		m.destinations[destination] = ds
	}
	ds.Turns++
	if !success {
		ds.Failures++
	}
	ds.latencies = append(ds.latencies, ms)
	if len(ds.latencies) > 1000 {
		ds.latencies = ds.latencies[1:]
	}

	for _, tool := range toolsUsed {
		m.toolCounts[tool]++
	}
}

// Snapshot returns the JSON metrics payload.
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := 100.0
	if m.totalTurns > 0 {
		successRate = float64(m.totalTurns-m.failedTurns) * 100.0 / float64(m.totalTurns)
	}

	destinations := make(map[string]interface{}, len(m.destinations))
	for dest, ds := range m.destinations {
		destinations[dest] = map[string]interface{}{
			"turns":    ds.Turns,
			"failures": ds.Failures,
			"avg_ms":   average(ds.latencies),
		}
	}

	tools := make(map[string]int64, len(m.toolCounts))
	for tool, count := range m.toolCounts {
		tools[tool] = count
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(m.startTime).Seconds(),
		"total_turns":    m.totalTurns,
		"failed_turns":   m.failedTurns,
		"success_rate":   successRate,
		"destinations":   destinations,
		"tools":          tools,
		"timestamp":      time.Now().UTC(),
	}
}

func average(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
