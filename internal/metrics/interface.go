package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncStoreWrites(collection string)
	IncStoreFailures(collection, kind string)
	IncValidationFailures(collection string)
	IncCallsValidated()
	IncEventsProcessed(event string)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	ObserveStartupFetchDuration(seconds float64)
	SetStartupTime(duration float64)
	SetOfflineMode(offline bool)
}
