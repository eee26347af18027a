// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/siemens/ldbengine/model"
)

// Metrics tracks Prometheus metrics for lifecycle operations.
//
// All metrics use the "ldbengine_" prefix. Methods handle a nil receiver
// gracefully, so a nil *Metrics acts as a no-op when metrics are disabled.
type Metrics struct {
	// Operations counts lifecycle operations by operation and result.
	// Labels: operation=[create, start, stop, restart, delete, list, status, get]
	//         result=[success, engine_unavailable, not_found, port_conflict,
	//                 no_ports, provisioning_failed, partial_state, invalid, error]
	Operations *prometheus.CounterVec

	// OperationDuration tracks lifecycle operation durations by operation.
	OperationDuration *prometheus.HistogramVec

	// ListFailures counts the individual containers that failed to be
	// reconciled while listing.
	ListFailures prometheus.Counter
}

// NewMetrics creates and registers the lifecycle metrics with the specified
// registerer. A nil registerer returns nil metrics, disabling metrics.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		return nil
	}
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ldbengine_operations_total",
				Help: "Total lifecycle operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ldbengine_operation_duration_seconds",
				Help:    "Lifecycle operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ListFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ldbengine_list_failures_total",
				Help: "Total containers that failed to be reconciled while listing",
			},
		),
	}
	registerer.MustRegister(m.Operations, m.OperationDuration, m.ListFailures)
	return m
}

// observe records the outcome and duration of an operation.
func (m *Metrics) observe(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, resultOf(err)).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// listFailed records a failed list item.
func (m *Metrics) listFailed() {
	if m == nil {
		return
	}
	m.ListFailures.Inc()
}

// resultOf classifies an operation error for metric labelling.
func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, model.ErrEngineUnavailable):
		return "engine_unavailable"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrPortConflict):
		return "port_conflict"
	case errors.Is(err, model.ErrNoPortsAvailable):
		return "no_ports"
	case errors.Is(err, model.ErrProvisioningFailed):
		return "provisioning_failed"
	case errors.Is(err, model.ErrPartialState):
		return "partial_state"
	case errors.Is(err, model.ErrInvalidRequest):
		return "invalid"
	}
	return "error"
}
