// Package metrics defines all custom Prometheus metrics for the attendance
// service. It is the single source of truth for metric names, labels, and
// help strings. Metrics register themselves with the default registry via
// promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attendance"

// CheckinsTotal counts accepted check-ins.
// Label:
//   - classification: "on_time" or "late"
var CheckinsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkins_total",
		Help:      "Total number of recorded check-ins, by lateness classification.",
	},
	[]string{"classification"},
)

// CheckinsDuplicateTotal counts check-in attempts rejected as already
// recorded for the day.
var CheckinsDuplicateTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkins_duplicate_total",
		Help:      "Total number of check-in attempts skipped as duplicates.",
	},
)

// CheckinsErrorsTotal counts check-in attempts that failed.
// Label:
//   - reason: "unknown_identity", "bad_input", "notify_failed", "storage"
var CheckinsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkins_errors_total",
		Help:      "Total number of check-in attempts that failed, by reason.",
	},
	[]string{"reason"},
)

// RemindersSentTotal counts reminder messages delivered by morning scans.
var RemindersSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_sent_total",
		Help:      "Total number of reminder messages delivered.",
	},
)

// ScansTotal counts morning scan invocations.
// Label:
//   - status: "ok", "skip_weekend", "not_after_cutoff"
var ScansTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Total number of morning scan runs, by outcome.",
	},
	[]string{"status"},
)

// WebhookEventsTotal counts webhook events received from the messaging
// platform.
// Label:
//   - type: the platform event type (e.g. "message", "follow")
var WebhookEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Total number of webhook events received, by event type.",
	},
	[]string{"type"},
)
