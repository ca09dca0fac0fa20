package notifier

import (
	"context"

	"github.com/mauv0809/courtside/internal/pubsub"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// After a training call is saved
	SendAttendanceSummary(summary pubsub.AttendanceValidated, dryRun bool) error
	// After a final score is recorded
	SendMatchResult(result pubsub.MatchCompleted, dryRun bool) error
}

type contextKey string

const dryRunKey contextKey = "dryRun"

// WithDryRun marks ctx so notifications triggered under it are only logged.
func WithDryRun(ctx context.Context, dryRun bool) context.Context {
	return context.WithValue(ctx, dryRunKey, dryRun)
}

// IsDryRun reports whether ctx was marked by WithDryRun.
func IsDryRun(ctx context.Context) bool {
	dryRun, ok := ctx.Value(dryRunKey).(bool)
	return ok && dryRun
}
