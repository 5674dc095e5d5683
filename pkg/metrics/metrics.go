package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	assetConsole = "asset_console"

	// Reconciliation metrics
	reconcileCyclesTotal = "reconcile_cycles_total"
	notificationCount    = "notification_count"
	unseenCount          = "unseen_notification_count"

	// Dismissal metrics
	jobDeletionsTotal = "job_deletions_total"

	// Labels
	reconcileOutcomeLabel = "outcome"
	notificationTypeLabel = "type"
	jobDeletionStateLabel = "state"
)

var reconcileCyclesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: assetConsole,
		Name:      reconcileCyclesTotal,
		Help:      "number of reconciliation cycles partitioned by outcome",
	},
	[]string{reconcileOutcomeLabel},
)

var notificationCountMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: assetConsole,
		Name:      notificationCount,
		Help:      "current number of notifications in the feed per behavior type",
	},
	[]string{notificationTypeLabel},
)

var unseenCountMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: assetConsole,
		Name:      unseenCount,
		Help:      "current tray badge count",
	},
)

var jobDeletionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: assetConsole,
		Name:      jobDeletionsTotal,
		Help:      "number of cascade delete-job calls issued on confirmed dismissal",
	},
	[]string{jobDeletionStateLabel},
)

func IncreaseReconcileCyclesTotalMetric(outcome string) {
	reconcileCyclesTotalMetric.With(prometheus.Labels{reconcileOutcomeLabel: outcome}).Inc()
}

func UpdateNotificationCountMetric(notificationType string, count int) {
	notificationCountMetric.With(prometheus.Labels{notificationTypeLabel: notificationType}).Set(float64(count))
}

func UpdateUnseenCountMetric(count int) {
	unseenCountMetric.Set(float64(count))
}

func IncreaseJobDeletionsTotalMetric(state string) {
	jobDeletionsTotalMetric.With(prometheus.Labels{jobDeletionStateLabel: state}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(reconcileCyclesTotalMetric)
	prometheus.MustRegister(notificationCountMetric)
	prometheus.MustRegister(unseenCountMetric)
	prometheus.MustRegister(jobDeletionsTotalMetric)
}
