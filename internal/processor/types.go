package processor

import (
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// Processor turns published events into notifications.
type Processor struct {
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
}
