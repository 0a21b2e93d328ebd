// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "devicehub"

// dispatch results
const (
	dispatchDelivered    = "delivered"
	dispatchFailed       = "failed"
	dispatchNoConnection = "no_connection"
)

// acknowledgement results
const (
	ackApplied = "applied"
	ackIgnored = "ignored"
	ackUnknown = "unknown"
)

var (
	sessionsConnected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sessions",
		Name:      "connected_total",
		Help:      "Number of device connections accepted.",
	})
	sessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sessions",
		Name:      "closed_total",
		Help:      "Number of device sessions closed, by cause.",
	}, []string{"cause"})
	connectsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sessions",
		Name:      "rejected_total",
		Help:      "Number of device connections rejected, by reason.",
	}, []string{"reason"})

	commandsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "commands",
		Name:      "created_total",
		Help:      "Number of commands created, by type.",
	}, []string{"type"})
	commandTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "commands",
		Name:      "transitions_total",
		Help:      "Number of command status changes, by target status.",
	}, []string{"status"})
	acknowledgements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "commands",
		Name:      "acknowledgements_total",
		Help:      "Number of device acknowledgements, by result.",
	}, []string{"result"})

	dispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "dispatcher",
		Name:      "dispatches_total",
		Help:      "Number of dispatch attempts, by result.",
	}, []string{"result"})
	pushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "dispatcher",
		Name:      "push_duration_seconds",
		Help:      "Time spent pushing a message to one connection.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "result"})

	sweeps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "reconciler",
		Name:      "sweeps_total",
		Help:      "Number of reconciler sweeps.",
	})
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "reconciler",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of a reconciler sweep.",
		Buckets:   prometheus.DefBuckets,
	})
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
