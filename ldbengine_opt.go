// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NewOption represents options to New when creating a new Manager.
type NewOption func(*Manager)

// WithWorkers sets the maximum number of parallel container inspections on
// the same Manager. A maximum number of zero or less is taken as GOMAXPROCS
// instead. Please note that this maximum applies to all concurrent
// [Manager.List] calls, and not to individual [Manager.List] calls separately.
func WithWorkers(num int) NewOption {
	return func(m *Manager) {
		m.numworkers = num
	}
}

// WithGracePeriod sets how long stopping and restarting containers waits for
// the database to shut down before force terminating it. Defaults to 10s.
func WithGracePeriod(d time.Duration) NewOption {
	return func(m *Manager) {
		m.grace = d
	}
}

// WithSettleDelay sets how long to wait after restarting a container before
// inspecting it. Defaults to 1s.
func WithSettleDelay(d time.Duration) NewOption {
	return func(m *Manager) {
		m.settle = d
	}
}

// WithRegisterer registers the lifecycle metrics with the specified
// Prometheus registerer. Without this option, no metrics are collected.
func WithRegisterer(registerer prometheus.Registerer) NewOption {
	return func(m *Manager) {
		m.metrics = NewMetrics(registerer)
	}
}
