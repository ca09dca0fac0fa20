package processor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// New creates a new Processor. The pubsub client is only used to decode payloads.
func New(notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
	}
}

// Subscribe routes every loopback topic to the processor.
func (p *Processor) Subscribe(l *pubsub.Loopback) {
	for _, event := range pubsub.Events {
		event := event
		l.Subscribe(event, func(ctx context.Context, data []byte) error {
			return p.Handle(event, data, notifier.IsDryRun(ctx))
		})
	}
}

// Handle dispatches one raw payload by topic.
func (p *Processor) Handle(event pubsub.EventType, data []byte, dryRun bool) error {
	switch event {
	case pubsub.EventAttendanceValidated:
		return p.NotifyAttendance(data, dryRun)
	case pubsub.EventMatchCompleted:
		return p.NotifyResult(data, dryRun)
	default:
		log.Warn("Unknown event", "event", event)
		return fmt.Errorf("unknown event %q", event)
	}
}

func (p *Processor) NotifyAttendance(data []byte, dryRun bool) error {
	var summary pubsub.AttendanceValidated
	if err := p.pubsub.ProcessMessage(data, &summary); err != nil {
		return fmt.Errorf("decode %s: %w", pubsub.EventAttendanceValidated, err)
	}
	log.Info("Processing attendance summary", "sessionID", summary.SessionID, "present", summary.Present, "total", summary.Total)
	if err := p.notifier.SendAttendanceSummary(summary, dryRun); err != nil {
		log.Error("Failed to send attendance summary", "sessionID", summary.SessionID, "error", err)
		return err
	}
	p.metrics.IncEventsProcessed(string(pubsub.EventAttendanceValidated))
	return nil
}

func (p *Processor) NotifyResult(data []byte, dryRun bool) error {
	var result pubsub.MatchCompleted
	if err := p.pubsub.ProcessMessage(data, &result); err != nil {
		return fmt.Errorf("decode %s: %w", pubsub.EventMatchCompleted, err)
	}
	log.Info("Processing match result", "matchID", result.MatchID, "opponent", result.Opponent)
	if err := p.notifier.SendMatchResult(result, dryRun); err != nil {
		log.Error("Failed to send match result", "matchID", result.MatchID, "error", err)
		return err
	}
	p.metrics.IncEventsProcessed(string(pubsub.EventMatchCompleted))
	return nil
}
