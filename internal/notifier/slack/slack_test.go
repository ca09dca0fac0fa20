package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_NoToken(t *testing.T) {
	metrics := metrics.NewMock()
	notifier := NewNotifier("", "C123", metrics)

	_, _, err := notifier.sendMessage(slackapi.NewBlockMessage(), false)
	require.NoError(t, err, "without a token messages are only logged")
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	err := notifier.SendMatchResult(pubsub.MatchCompleted{MatchID: 1, Opponent: "Lyon"}, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func sectionTexts(msg slackapi.Message) []string {
	var texts []string
	for _, b := range msg.Blocks.BlockSet {
		switch block := b.(type) {
		case *slackapi.HeaderBlock:
			texts = append(texts, block.Text.Text)
		case *slackapi.SectionBlock:
			texts = append(texts, block.Text.Text)
		case *slackapi.ContextBlock:
			for _, el := range block.ContextElements.Elements {
				if txt, ok := el.(*slackapi.TextBlockObject); ok {
					texts = append(texts, txt.Text)
				}
			}
		}
	}
	return texts
}

func TestFormatAttendanceSummary(t *testing.T) {
	msg := formatAttendanceSummary(pubsub.AttendanceValidated{
		SessionID: 10,
		Date:      "2025-01-10",
		Time:      "18:30",
		Theme:     "Pick and roll",
		Team:      club.TeamTwo,
		Entries: []pubsub.NamedEntry{
			{MemberID: 1, Name: "Lea Martin", Status: club.StatusPresent},
			{MemberID: 2, Name: "Tom Petit", Status: club.StatusAbsent},
			{MemberID: 3, Name: "Ana Roux", Status: club.StatusPresent},
		},
		Present: 2,
		Total:   3,
	})

	texts := sectionTexts(msg)
	require.Len(t, texts, 4)
	assert.Equal(t, "🏀 Training call saved", texts[0])
	assert.Contains(t, texts[1], "Team 2")
	assert.Contains(t, texts[1], "Pick and roll")
	assert.Equal(t, "*Present: 2 / 3*", texts[2])
	assert.Equal(t, "*Present* (2): Lea Martin, Ana Roux\n*Absent* (1): Tom Petit", texts[3])
}

func TestFormatMatchResult(t *testing.T) {
	testCases := []struct {
		name    string
		ours    int
		theirs  int
		outcome string
	}{
		{"win", 71, 64, "*71 - 64* Win 🎉"},
		{"loss", 50, 55, "*50 - 55* Loss"},
		{"draw", 40, 40, "*40 - 40* Draw"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := formatMatchResult(pubsub.MatchCompleted{
				MatchID:       7,
				Date:          "2025-03-01",
				Opponent:      "Lyon",
				Championship:  "U18",
				Team:          club.TeamAll,
				OurScore:      tc.ours,
				OpponentScore: tc.theirs,
				Players:       []string{"Lea Martin"},
			})
			texts := sectionTexts(msg)
			require.Len(t, texts, 4)
			assert.Equal(t, "All teams vs Lyon\n2025-03-01 · U18", texts[1])
			assert.Equal(t, tc.outcome, texts[2])
			assert.Equal(t, "Players: Lea Martin", texts[3])
		})
	}
}
