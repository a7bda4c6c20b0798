// Package notify delivers the end-of-run notifications: a desktop popup when
// a restart is required, and optional Slack/Discord webhook posts. Every
// delivery failure degrades to a console warning; none is fatal.
package notify

import (
	"context"
	"fmt"
	"strings"

	"diskward/internal/execx"
	"diskward/internal/orchestrator"
)

// PopupMessage builds the desktop notification text. Only called when the
// reboot-scheduled set is non-empty.
func PopupMessage(sum orchestrator.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Disk errors were found. The following drives will be repaired at the next restart: %s.",
		strings.Join(sum.RebootScheduled, ", "))
	if len(sum.IdleScheduled) > 0 {
		fmt.Fprintf(&b, " Idle-time repairs were scheduled for: %s.",
			strings.Join(sum.IdleScheduled, ", "))
	}
	return b.String()
}

// Popup shows a desktop notification summarizing the drives that need a
// restart, via msg.exe so the dialog outlives this process.
func Popup(ctx context.Context, inv execx.Invoker, sum orchestrator.Summary) error {
	res, err := inv.Run(ctx, execx.CommandSpec{
		Name:     "msg",
		Args:     []string{"*", "/time:120", PopupMessage(sum)},
		Mutating: true,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("msg exited %d", res.ExitCode)
	}
	return nil
}
