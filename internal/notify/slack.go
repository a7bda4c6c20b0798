package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"diskward/internal/orchestrator"
)

// Slack posts run summaries to a Slack incoming webhook.
type Slack struct {
	client *http.Client
}

// NewSlack creates a new Slack webhook handler.
func NewSlack() *Slack {
	return &Slack{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type   string         `json:"type"`
	Text   *SlackTextObj  `json:"text,omitempty"`
	Fields []SlackTextObj `json:"fields,omitempty"`
}

// SlackTextObj represents a Slack text object.
type SlackTextObj struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// SlackAttachment represents a Slack attachment (for the colored sidebar).
type SlackAttachment struct {
	Color  string       `json:"color"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackPayload represents the webhook payload.
type SlackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SendSummary posts the run summary to Slack. The sidebar color tracks the
// worst outcome: red when scheduling failed, orange when a restart is
// pending, green otherwise.
func (s *Slack) SendSummary(webhookURL string, sum orchestrator.Summary) error {
	var color, headline string
	switch {
	case len(sum.SchedulingFailed) > 0:
		color = "#FF0000"
		headline = ":x: Disk check: repair scheduling failed"
	case sum.RebootPending():
		color = "#FFA500"
		headline = ":warning: Disk check: restart required"
	case len(sum.IdleScheduled) > 0 || len(sum.AlreadyDirty) > 0:
		color = "#FFA500"
		headline = ":hourglass: Disk check: repairs pending"
	default:
		color = "#00FF00"
		headline = ":white_check_mark: Disk check: all drives healthy"
	}

	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackTextObj{Type: "plain_text", Text: headline, Emoji: true},
		},
		{
			Type: "section",
			Fields: []SlackTextObj{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Healthy:*\n%s", driveList(sum.Healthy))},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Already pending:*\n%s", driveList(sum.AlreadyDirty))},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Repair at restart:*\n%s", driveList(sum.RebootScheduled))},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Repair when idle:*\n%s", driveList(sum.IdleScheduled))},
			},
		},
	}

	if len(sum.SchedulingFailed) > 0 {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackTextObj{
				Type: "mrkdwn",
				Text: fmt.Sprintf(":warning: *Idle task creation failed, fell back to restart:* %s",
					strings.Join(sum.SchedulingFailed, ", ")),
			},
		})
	}

	payload := SlackPayload{
		Attachments: []SlackAttachment{{Color: color, Blocks: blocks}},
	}
	return s.send(webhookURL, payload)
}

func driveList(drives []string) string {
	if len(drives) == 0 {
		return "_none_"
	}
	return strings.Join(drives, ", ")
}

func (s *Slack) send(webhookURL string, payload SlackPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
