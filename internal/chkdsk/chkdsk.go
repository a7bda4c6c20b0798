// Package chkdsk wraps the Windows disk-check utilities (chkdsk, fsutil,
// chkntfs) behind explicit argument-list invocations.
package chkdsk

import (
	"context"
	"fmt"
	"strings"

	"diskward/internal/execx"
)

// IsDirty queries the volume dirty bit. A dirty volume already has a repair
// scheduled by the OS, so callers skip it entirely.
func IsDirty(ctx context.Context, inv execx.Invoker, drive string) (bool, error) {
	res, err := inv.Run(ctx, execx.CommandSpec{
		Name: "fsutil",
		Args: []string{"dirty", "query", drive},
	})
	if err != nil {
		return false, err
	}

	out := strings.ToLower(res.Output)
	switch {
	// "is not dirty" contains "is dirty", so the clean markers go first.
	case strings.Contains(out, "is not dirty"), strings.Contains(out, "dirty bit is not set"):
		return false, nil
	case strings.Contains(out, "is dirty"), strings.Contains(out, "dirty bit is set"):
		return true, nil
	}
	return false, fmt.Errorf("unrecognized fsutil dirty output for %s: %q", drive, firstLine(res.Output))
}

// Scan runs the read-only consistency check and returns its exit code.
// Zero means the volume is clean; any other value means errors were found.
// The code is preserved for display only, never decoded.
func Scan(ctx context.Context, inv execx.Invoker, drive string) (int, error) {
	res, err := inv.Run(ctx, execx.CommandSpec{
		Name: "chkdsk",
		Args: []string{drive},
	})
	if err != nil {
		return 0, err
	}
	return res.ExitCode, nil
}

// ScheduleBootRepair asks chkdsk to fix the volume at the next restart. The
// volume is in use, so chkdsk prompts for confirmation; "y" on stdin accepts.
func ScheduleBootRepair(ctx context.Context, inv execx.Invoker, drive string) (*execx.Result, error) {
	return inv.Run(ctx, execx.CommandSpec{
		Name:     "chkdsk",
		Args:     []string{drive, "/f"},
		Stdin:    "y\n",
		Mutating: true,
	})
}

// ForceBootCheck makes the OS honor the pending check at next boot even if
// autocheck would otherwise skip the volume.
func ForceBootCheck(ctx context.Context, inv execx.Invoker, drive string) (*execx.Result, error) {
	return inv.Run(ctx, execx.CommandSpec{
		Name:     "chkntfs",
		Args:     []string{"/c", drive},
		Mutating: true,
	})
}

// SetDirty sets the volume dirty bit, which suppresses the interactive
// "cancel disk check" countdown at boot.
func SetDirty(ctx context.Context, inv execx.Invoker, drive string) (*execx.Result, error) {
	return inv.Run(ctx, execx.CommandSpec{
		Name:     "fsutil",
		Args:     []string{"dirty", "set", drive},
		Mutating: true,
	})
}

// BootRepairChain runs the three boot-repair steps in order and stops at the
// first one that fails, returning an error that names the step. The drive
// still counts as reboot-scheduled when the first step succeeded; the caller
// surfaces the error as a warning.
func BootRepairChain(ctx context.Context, inv execx.Invoker, drive string) error {
	steps := []struct {
		name string
		run  func() (*execx.Result, error)
	}{
		{"chkdsk /f", func() (*execx.Result, error) { return ScheduleBootRepair(ctx, inv, drive) }},
		{"chkntfs /c", func() (*execx.Result, error) { return ForceBootCheck(ctx, inv, drive) }},
		{"fsutil dirty set", func() (*execx.Result, error) { return SetDirty(ctx, inv, drive) }},
	}

	for _, step := range steps {
		res, err := step.run()
		if err != nil {
			return fmt.Errorf("%s for %s: %w", step.name, drive, err)
		}
		if res.ExitCode != 0 {
			return fmt.Errorf("%s for %s exited %d: %s", step.name, drive, res.ExitCode, firstLine(res.Output))
		}
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
