// Package telemetry provides Prometheus metrics for the bot.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	ChatLines        prometheus.Counter
	CommandsMatched  prometheus.Counter
	CommandsExecuted *prometheus.CounterVec
	CommandsRejected *prometheus.CounterVec
	CommandsFailed   prometheus.Counter
	EventsEnqueued   *prometheus.CounterVec
	EventsDropped    prometheus.Counter

	// Gauges
	OverlayQueueDepth prometheus.Gauge
	OverlayClients    prometheus.Gauge
	TriggersLoaded    prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		ChatLines = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_chat_lines_total", Help: "Number of chat lines seen"})
		CommandsMatched = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_matched_total", Help: "Number of chat lines that matched a trigger"})
		CommandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bot_commands_executed_total", Help: "Number of commands executed, by action"}, []string{"action"})
		CommandsRejected = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bot_commands_rejected_total", Help: "Number of commands rejected, by reason"}, []string{"reason"})
		CommandsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_failed_total", Help: "Number of commands that failed with an internal error"})
		EventsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bot_overlay_events_enqueued_total", Help: "Number of presentation events enqueued, by kind"}, []string{"kind"})
		EventsDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_overlay_events_dropped_total", Help: "Number of presentation events dropped before enqueue"})
		OverlayQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_overlay_queue_depth", Help: "Current number of queued presentation events"})
		OverlayClients = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_overlay_clients", Help: "Connected overlay websocket clients"})
		TriggersLoaded = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_triggers_loaded", Help: "Number of triggers in the active registry"})
	})
}

// CountRejection increments the rejection counter if metrics are initialised.
func CountRejection(reason string) {
	if CommandsRejected != nil {
		CommandsRejected.WithLabelValues(reason).Inc()
	}
}

// CountExecution increments the execution counter if metrics are initialised.
func CountExecution(action string) {
	if CommandsExecuted != nil {
		CommandsExecuted.WithLabelValues(action).Inc()
	}
}

// SetQueueDepth records the current overlay queue depth.
func SetQueueDepth(n int) {
	if OverlayQueueDepth != nil {
		OverlayQueueDepth.Set(float64(n))
	}
}
