// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chainflow/chainflowgo/utils/wrappers"
)

const metricsNamespace = "statesync"

type metrics struct {
	clientRequests  *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	pendingWaiters  prometheus.Gauge
	commitsReceived prometheus.Counter
	syncedVersion   prometheus.Gauge
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		clientRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "client_requests",
				Help:      "Number of wait-until-settled requests by notification kind",
			},
			[]string{"kind"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "notifications_resolved",
				Help:      "Number of completion notifications resolved by result",
			},
			[]string{"result"},
		),
		pendingWaiters: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "pending_waiters",
				Help:      "Number of callers currently waiting for a terminal sync status",
			},
		),
		commitsReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "commits_received",
				Help:      "Number of commit notifications consumed by the driver",
			},
		),
		syncedVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "synced_version",
				Help:      "Highest ledger version the driver has observed committed",
			},
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.clientRequests),
		registerer.Register(m.notifications),
		registerer.Register(m.pendingWaiters),
		registerer.Register(m.commitsReceived),
		registerer.Register(m.syncedVersion),
	)
	return m, errs.Err
}

func (m *metrics) markResolved(err error) {
	if err == nil {
		m.notifications.WithLabelValues("ok").Inc()
	} else {
		m.notifications.WithLabelValues("failure").Inc()
	}
}
