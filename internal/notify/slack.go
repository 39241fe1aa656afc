package notify

import (
	"context"
	"fmt"
	"regexp"

	"github.com/slack-go/slack"
)

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)

// SlackPublisher posts digests to a Slack channel.
type SlackPublisher struct {
	api     *slack.Client
	channel string
}

// NewSlackPublisher constructs a SlackPublisher. apiURL overrides the Slack
// API root when non-empty.
func NewSlackPublisher(token, channel, apiURL string) *SlackPublisher {
	var opts []slack.Option
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &SlackPublisher{api: slack.New(token, opts...), channel: channel}
}

func (p *SlackPublisher) Name() string { return "slack" }

// Publish posts the digest as a single message.
func (p *SlackPublisher) Publish(ctx context.Context, msg Message) error {
	text := ToMrkdwn(msg.Text)
	if msg.Name != "" {
		text = "_" + msg.Name + "_\n" + text
	}
	_, _, err := p.api.PostMessageContext(ctx, p.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// ToMrkdwn rewrites Markdown links as Slack links: [text](url) → <url|text>.
func ToMrkdwn(text string) string {
	return markdownLink.ReplaceAllString(text, "<$2|$1>")
}
