package processor

import "github.com/mauv0809/courtside/internal/notifier"

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}
