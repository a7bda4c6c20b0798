// Package schtasks provisions one-shot idle-time repair tasks in the OS task
// scheduler. Ownership of a task transfers to the OS at creation; the task
// deletes its own definition after running.
package schtasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"diskward/internal/execx"
)

// RepairTaskName derives the deterministic task name for a drive, e.g.
// "ChkdskRepair_E" for "E:". Re-creation with /f overwrites a leftover task
// from an aborted earlier run instead of failing on the duplicate name.
func RepairTaskName(drive string) string {
	letter := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(drive)), ":")
	return "ChkdskRepair_" + letter
}

// CreateIdleRepair registers a task that repairs the drive once the system
// has been idle for idleMinutes, then deletes itself by name. It runs as the
// SYSTEM account. Success is gated on the schtasks exit status.
func CreateIdleRepair(ctx context.Context, inv execx.Invoker, drive string, idleMinutes int) error {
	name := RepairTaskName(drive)
	action := fmt.Sprintf("cmd /c chkdsk %s /f /x & schtasks /delete /tn %s /f", drive, name)

	res, err := inv.Run(ctx, execx.CommandSpec{
		Name: "schtasks",
		Args: []string{
			"/create",
			"/tn", name,
			"/tr", action,
			"/sc", "onidle",
			"/i", strconv.Itoa(idleMinutes),
			"/ru", "SYSTEM",
			"/f",
		},
		Mutating: true,
	})
	if err != nil {
		return fmt.Errorf("creating task %s: %w", name, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("creating task %s: schtasks exited %d: %s", name, res.ExitCode, firstLine(res.Output))
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
