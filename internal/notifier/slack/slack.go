package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier. Without a token every message is only
// logged, as in a dry run.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	var api slackClient
	if token != "" {
		api = slack.New(token)
	}
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendAttendanceSummary(summary pubsub.AttendanceValidated, dryRun bool) error {
	_, _, err := s.sendMessage(formatAttendanceSummary(summary), dryRun)
	return err
}

func (s *Notifier) SendMatchResult(result pubsub.MatchCompleted, dryRun bool) error {
	_, _, err := s.sendMessage(formatMatchResult(result), dryRun)
	return err
}

var statusLabels = map[club.AttendanceStatus]string{
	club.StatusPresent:      "Present",
	club.StatusAbsent:       "Absent",
	club.StatusAbsentWarned: "Absent (warned)",
	club.StatusInjured:      "Injured",
	club.StatusExcused:      "Excused",
	club.StatusStage:        "On a course",
}

func teamLabel(team club.Team) string {
	if team == club.TeamAll || team == "" {
		return "All teams"
	}
	return "Team " + string(team)
}

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject("plain_text", text, true, false)
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject("mrkdwn", text, false, false)
}

// formatAttendanceSummary creates the Slack message for a saved training call using Block Kit.
func formatAttendanceSummary(summary pubsub.AttendanceValidated) slack.Message {
	blocks := make([]slack.Block, 0)

	header := "🏀 Training call saved"
	if summary.Edit {
		header = "🏀 Training call updated"
	}
	blocks = append(blocks, slack.NewHeaderBlock(plain(header)))

	details := fmt.Sprintf("%s · %s %s", teamLabel(summary.Team), summary.Date, summary.Time)
	if summary.Theme != "" {
		details += "\nTheme: " + summary.Theme
	}
	blocks = append(blocks, slack.NewSectionBlock(plain(strings.TrimSpace(details)), nil, nil))
	blocks = append(blocks, slack.NewSectionBlock(markdown(fmt.Sprintf("*Present: %d / %d*", summary.Present, summary.Total)), nil, nil))

	// One line per status, in the usual order, skipping empty ones.
	byStatus := make(map[club.AttendanceStatus][]string)
	for _, e := range summary.Entries {
		byStatus[e.Status] = append(byStatus[e.Status], e.Name)
	}
	var lines []string
	for _, status := range club.AttendanceStatuses {
		names := byStatus[status]
		if len(names) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("*%s* (%d): %s", statusLabels[status], len(names), strings.Join(names, ", ")))
	}
	if len(lines) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(markdown(strings.Join(lines, "\n")), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatMatchResult creates the Slack message for a finished match using Block Kit.
func formatMatchResult(result pubsub.MatchCompleted) slack.Message {
	blocks := make([]slack.Block, 0)
	blocks = append(blocks, slack.NewHeaderBlock(plain("🏀 Match finished!")))

	details := fmt.Sprintf("%s vs %s\n%s", teamLabel(result.Team), result.Opponent, result.Date)
	if result.Championship != "" {
		details += " · " + result.Championship
	}
	if result.Location != "" {
		details += " · " + result.Location
	}
	blocks = append(blocks, slack.NewSectionBlock(plain(details), nil, nil))

	outcome := "Draw"
	switch {
	case result.OurScore > result.OpponentScore:
		outcome = "Win 🎉"
	case result.OurScore < result.OpponentScore:
		outcome = "Loss"
	}
	blocks = append(blocks, slack.NewSectionBlock(markdown(fmt.Sprintf("*%d - %d* %s", result.OurScore, result.OpponentScore, outcome)), nil, nil))

	if len(result.Players) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", plain("Players: "+strings.Join(result.Players, ", "))))
	}
	return slack.NewBlockMessage(blocks...)
}
