// Package metrics provides lightweight Prometheus instrumentation for the
// Tracker and Scheduler Core, grounded on leapmux-leapmux's
// internal/metrics package. This is ambient observability only — nothing
// in this package gates correctness, and every metric here is additive to
// the spec's own state machines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tracker metrics.
var (
	ExecutionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cursor_enhanced_executions_started_total",
		Help: "Total subagent executions started, by tool name.",
	}, []string{"tool"})

	ExecutionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cursor_enhanced_executions_completed_total",
		Help: "Total subagent executions that reached a terminal status, by tool name and status.",
	}, []string{"tool", "status"})

	ExecutionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cursor_enhanced_executions_active",
		Help: "Number of executions not yet in a terminal status.",
	})
)

// Scheduler metrics.
var (
	SchedulesFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cursor_enhanced_schedules_fired_total",
		Help: "Total reach-schedule fires delivered across all FireDue ticks.",
	})

	SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cursor_enhanced_scheduler_ticks_total",
		Help: "Total Scheduler.Run/FireDue due-checks performed.",
	})
)
