package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"diskward/internal/orchestrator"
)

// Discord posts run summaries to a Discord webhook.
type Discord struct {
	client *http.Client
}

// NewDiscord creates a new Discord webhook handler.
func NewDiscord() *Discord {
	return &Discord{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// DiscordEmbed represents a Discord embed object.
type DiscordEmbed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField represents a field in a Discord embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter represents the footer of a Discord embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// DiscordPayload represents the webhook payload.
type DiscordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

// SendSummary posts the run summary to Discord.
func (d *Discord) SendSummary(webhookURL string, sum orchestrator.Summary) error {
	var color int
	var title string
	switch {
	case len(sum.SchedulingFailed) > 0:
		color = 0xFF0000
		title = "❌ Disk check: repair scheduling failed"
	case sum.RebootPending():
		color = 0xFFA500
		title = "⚠️ Disk check: restart required"
	case len(sum.IdleScheduled) > 0 || len(sum.AlreadyDirty) > 0:
		color = 0xFFA500
		title = "⏳ Disk check: repairs pending"
	default:
		color = 0x00FF00
		title = "✅ Disk check: all drives healthy"
	}

	embed := DiscordEmbed{
		Title: title,
		Color: color,
		Fields: []EmbedField{
			{Name: "Healthy", Value: driveList(sum.Healthy), Inline: true},
			{Name: "Already pending", Value: driveList(sum.AlreadyDirty), Inline: true},
			{Name: "Repair at restart", Value: driveList(sum.RebootScheduled), Inline: true},
			{Name: "Repair when idle", Value: driveList(sum.IdleScheduled), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer:    &EmbedFooter{Text: "diskward"},
	}

	if len(sum.SchedulingFailed) > 0 {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:   "⚠️ Fell back to restart",
			Value:  driveList(sum.SchedulingFailed),
			Inline: false,
		})
	}

	payload := DiscordPayload{Embeds: []DiscordEmbed{embed}}
	return d.send(webhookURL, payload)
}

func (d *Discord) send(webhookURL string, payload DiscordPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
