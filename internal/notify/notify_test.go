package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"diskward/internal/execx"
	"diskward/internal/orchestrator"
)

type invokerFunc func(ctx context.Context, spec execx.CommandSpec) (*execx.Result, error)

func (f invokerFunc) Run(ctx context.Context, spec execx.CommandSpec) (*execx.Result, error) {
	return f(ctx, spec)
}

func TestPopupMessage(t *testing.T) {
	sum := orchestrator.Summary{RebootScheduled: []string{"C:", "D:"}}
	msg := PopupMessage(sum)
	if !strings.Contains(msg, "C:, D:") {
		t.Errorf("message missing restart drives: %q", msg)
	}
	if strings.Contains(msg, "Idle-time") {
		t.Errorf("message mentions idle repairs with none scheduled: %q", msg)
	}

	sum.IdleScheduled = []string{"E:"}
	msg = PopupMessage(sum)
	if !strings.Contains(msg, "Idle-time repairs were scheduled for: E:") {
		t.Errorf("message missing idle note: %q", msg)
	}
}

func TestPopupInvokesMsg(t *testing.T) {
	var got execx.CommandSpec
	inv := invokerFunc(func(_ context.Context, spec execx.CommandSpec) (*execx.Result, error) {
		got = spec
		return &execx.Result{}, nil
	})

	sum := orchestrator.Summary{RebootScheduled: []string{"C:"}}
	if err := Popup(context.Background(), inv, sum); err != nil {
		t.Fatalf("Popup() error: %v", err)
	}
	if got.Name != "msg" || got.Args[0] != "*" {
		t.Errorf("unexpected command: %s", got)
	}
	if !got.Mutating {
		t.Error("popup spec not marked mutating")
	}
}

func TestSlackSendSummary(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	sum := orchestrator.Summary{
		Healthy:          []string{"C:"},
		RebootScheduled:  []string{"D:"},
		SchedulingFailed: []string{"D:"},
	}
	if err := NewSlack().SendSummary(srv.URL, sum); err != nil {
		t.Fatalf("SendSummary() error: %v", err)
	}

	var payload SlackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(payload.Attachments) != 1 || payload.Attachments[0].Color != "#FF0000" {
		t.Errorf("scheduling failure did not turn the sidebar red: %+v", payload.Attachments)
	}
	if !strings.Contains(string(body), "D:") {
		t.Errorf("payload missing drive letters: %s", body)
	}
}

func TestDiscordSendSummaryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewDiscord().SendSummary(srv.URL, orchestrator.Summary{Healthy: []string{"C:"}})
	if err == nil {
		t.Fatal("SendSummary() = nil error on HTTP 403")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error does not carry status: %v", err)
	}
}

func TestDiscordHealthySummaryIsGreen(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	if err := NewDiscord().SendSummary(srv.URL, orchestrator.Summary{Healthy: []string{"C:", "D:"}}); err != nil {
		t.Fatalf("SendSummary() error: %v", err)
	}

	var payload DiscordPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(payload.Embeds) != 1 || payload.Embeds[0].Color != 0x00FF00 {
		t.Errorf("healthy summary not green: %+v", payload.Embeds)
	}
}
