package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	StoreWrites          *prometheus.CounterVec
	StoreFailures        *prometheus.CounterVec
	ValidationFailures   *prometheus.CounterVec
	CallsValidated       prometheus.Counter
	EventsProcessed      *prometheus.CounterVec
	SlackNotifSent       prometheus.Counter
	SlackNotifFailed     prometheus.Counter
	StartupFetchDuration prometheus.Histogram
	StartupTimeSeconds   prometheus.Gauge
	OfflineMode          prometheus.Gauge
}
