package slack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ricardonunez-io/ranger/internal/rca"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

type Config struct {
	BotToken  string
	ChannelID string
	// APIURL overrides the Slack endpoint. Empty uses the public API.
	APIURL string
}

func (c Config) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// Notifier posts RCA findings to a Slack channel.
type Notifier struct {
	api     *slack.Client
	channel string
	now     func() time.Time
}

func NewNotifier(cfg Config) *Notifier {
	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}
	return &Notifier{
		api:     slack.New(cfg.BotToken, opts...),
		channel: cfg.ChannelID,
		now:     time.Now,
	}
}

func (n *Notifier) Notify(ctx context.Context, f rca.Finding) error {
	_, msgTimestamp, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(f.String(), false),
		slack.MsgOptionBlocks(Blocks(f, n.now())...),
	)
	if err != nil {
		log.Err(err).Str("channel", n.channel).Msg("Failed to post Slack message")
		return fmt.Errorf("slack post failed: %w", err)
	}

	log.Info().
		Str("channel", n.channel).
		Str("timestamp", msgTimestamp).
		Str("service", f.Service).
		Msg("RCA finding posted to Slack")
	return nil
}

func Blocks(f rca.Finding, at time.Time) []slack.Block {
	sev := Severity(f)
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(
			"plain_text",
			fmt.Sprintf("%s High %s on %s", severityToEmoji(sev), f.Metric, f.Service),
			false, false,
		)),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*Severity:* %s\n*Average:* %.2f (threshold %.0f)\n*Peak:* %.2f  *Latest:* %.2f\n*Window:* %s",
					sev, f.Mean, f.Threshold, f.Stats.Max, f.Stats.Latest, f.TimeRange),
				false, false),
			nil, nil,
		),
	}

	if text := logsSection(f); text != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", text, false, false),
			nil, nil,
		))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject("mrkdwn",
			fmt.Sprintf("Detected at: %s", at.UTC().Format(time.RFC1123)),
			false, false),
	))
	return blocks
}

func logsSection(f rca.Finding) string {
	if f.Logs != nil && !f.Logs.OK() {
		return fmt.Sprintf("*Error logs:* could not be fetched (%s)", f.Logs.Err.Message)
	}
	if len(f.Patterns) == 0 {
		if f.Logs != nil {
			return "*Error logs:* none found in the same window"
		}
		return ""
	}

	lines := make([]string, 0, len(f.Patterns))
	for _, p := range f.Patterns {
		sample := p.Template
		if len(p.Samples) > 0 {
			sample = p.Samples[0]
		}
		lines = append(lines, fmt.Sprintf("• %d× `%s`", p.Count, truncate(sample, 180)))
	}
	return fmt.Sprintf("*Recurring errors:*\n%s", strings.Join(lines, "\n"))
}

// Severity grades how far the mean is above its threshold.
func Severity(f rca.Finding) string {
	over := f.Mean - f.Threshold
	switch {
	case over >= 15:
		return "critical"
	case over >= 5:
		return "high"
	case over > 0:
		return "medium"
	default:
		return "low"
	}
}

func severityToEmoji(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	default:
		return "🟢"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
