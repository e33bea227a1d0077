// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus metrics for the rescue-mission service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mission lifecycle
	missionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rescue_missions_started_total",
		Help: "Total number of missions created",
	})

	missionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescue_missions_finished_total",
		Help: "Total number of missions reaching a terminal state, by outcome",
	}, []string{"outcome"}) // outcome=completed|aborted|exhausted

	missionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rescue_missions_active",
		Help: "Number of missions currently held in memory",
	})

	// Mission progress
	dronesSpawned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rescue_drones_spawned_total",
		Help: "Total number of drones spawned across all missions",
	})

	survivorsRescued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rescue_survivors_rescued_total",
		Help: "Total number of survivors rescued across all missions",
	})

	survivorsDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rescue_survivors_discovered_total",
		Help: "Total number of hidden survivors discovered by detection sweeps",
	})

	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rescue_mission_step_duration_seconds",
		Help:    "Wall time per coordinator step",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	// Pathfinding
	pathSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescue_path_searches_total",
		Help: "A* searches by outcome",
	}, []string{"outcome"}) // outcome=found|no_path

	pathSearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rescue_path_search_duration_seconds",
		Help:    "A* search duration",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
	})

	// Persistence
	storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescue_store_failures_total",
		Help: "Mission store failures by operation",
	}, []string{"op"})
)

// MissionStarted increments the mission creation counter.
func MissionStarted() { missionsStarted.Inc() }

// MissionFinished records a mission reaching a terminal state.
func MissionFinished(outcome string) { missionsFinished.WithLabelValues(outcome).Inc() }

// SetActiveMissions sets the in-memory mission gauge.
func SetActiveMissions(n int) { missionsActive.Set(float64(n)) }

// DroneSpawned increments the spawn counter.
func DroneSpawned() { dronesSpawned.Inc() }

// SurvivorsRescued adds n to the rescue counter.
func SurvivorsRescued(n int) { survivorsRescued.Add(float64(n)) }

// SurvivorsDiscovered adds n to the discovery counter.
func SurvivorsDiscovered(n int) { survivorsDiscovered.Add(float64(n)) }

// ObserveStep records the wall time of one coordinator step.
func ObserveStep(d time.Duration) { stepDuration.Observe(d.Seconds()) }

// PathSearch records an A* search outcome and duration.
func PathSearch(found bool, d time.Duration) {
	outcome := "found"
	if !found {
		outcome = "no_path"
	}
	pathSearches.WithLabelValues(outcome).Inc()
	pathSearchDuration.Observe(d.Seconds())
}

// StoreFailure records a mission store failure for the given operation.
func StoreFailure(op string) { storeFailures.WithLabelValues(op).Inc() }
