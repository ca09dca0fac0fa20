package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_store_writes_total",
			Help: "The total number of successful backend writes, by collection.",
		}, []string{"collection"}),
		StoreFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_store_failures_total",
			Help: "The total number of failed backend operations, by collection and failure kind.",
		}, []string{"collection", "kind"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_validation_failures_total",
			Help: "The total number of operations rejected before reaching the backend.",
		}, []string{"collection"}),
		CallsValidated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_calls_validated_total",
			Help: "The total number of attendance calls validated.",
		}),
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_events_processed_total",
			Help: "The total number of domain events handled, by event type.",
		}, []string{"event"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtside_startup_fetch_duration_seconds",
			Help:    "The duration of the parallel collection fetch at startup.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
		OfflineMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_offline_mode",
			Help: "1 when the app runs on local in-memory state, 0 when online.",
		}),
	}

	reg.MustRegister(
		s.StoreWrites,
		s.StoreFailures,
		s.ValidationFailures,
		s.CallsValidated,
		s.EventsProcessed,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupFetchDuration,
		s.StartupTimeSeconds,
		s.OfflineMode,
	)

	return s
}

func (s *Service) IncStoreWrites(collection string) {
	s.StoreWrites.WithLabelValues(collection).Inc()
}

func (s *Service) IncStoreFailures(collection, kind string) {
	s.StoreFailures.WithLabelValues(collection, kind).Inc()
}

func (s *Service) IncValidationFailures(collection string) {
	s.ValidationFailures.WithLabelValues(collection).Inc()
}

func (s *Service) IncCallsValidated() {
	s.CallsValidated.Inc()
}

func (s *Service) IncEventsProcessed(event string) {
	s.EventsProcessed.WithLabelValues(event).Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) ObserveStartupFetchDuration(seconds float64) {
	s.StartupFetchDuration.Observe(seconds)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}

func (s *Service) SetOfflineMode(offline bool) {
	if offline {
		s.OfflineMode.Set(1)
		return
	}
	s.OfflineMode.Set(0)
}
