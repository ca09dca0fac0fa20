package pubsub_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopbackDeliversEncodedPayload(t *testing.T) {
	l := pubsub.NewLoopback()
	var got pubsub.AttendanceValidated
	l.Subscribe(pubsub.EventAttendanceValidated, func(ctx context.Context, data []byte) error {
		return l.ProcessMessage(data, &got)
	})

	sent := pubsub.AttendanceValidated{
		SessionID: 10,
		Date:      "2025-01-10",
		Theme:     "Shooting",
		Team:      club.TeamAll,
		Entries: []pubsub.NamedEntry{
			{MemberID: 1, Name: "Lea Martin", Status: club.StatusPresent},
			{MemberID: 2, Name: "Tom Petit", Status: club.StatusAbsent},
		},
		Present: 1,
		Total:   2,
	}
	require.NoError(t, l.SendMessage(context.Background(), pubsub.EventAttendanceValidated, sent))
	assert.Equal(t, sent, got)
}

func TestLoopbackWithoutSubscriberDrops(t *testing.T) {
	l := pubsub.NewLoopback()
	assert.NoError(t, l.SendMessage(context.Background(), pubsub.EventMatchCompleted, pubsub.MatchCompleted{MatchID: 1}))
}

func TestLoopbackPropagatesHandlerError(t *testing.T) {
	l := pubsub.NewLoopback()
	boom := errors.New("boom")
	l.Subscribe(pubsub.EventMatchCompleted, func(ctx context.Context, data []byte) error { return boom })

	err := l.SendMessage(context.Background(), pubsub.EventMatchCompleted, pubsub.MatchCompleted{MatchID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestEventTypeValid(t *testing.T) {
	for _, e := range pubsub.Events {
		assert.True(t, e.Valid())
	}
	assert.False(t, pubsub.EventType("notify-booking").Valid())
}
