// Package report renders the end-of-run summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"diskward/internal/orchestrator"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	healthyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// StyledOutput reports whether stdout is a terminal that should get color.
func StyledOutput() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Render formats the per-drive results and the reduced summary for the
// console.
func Render(results []orchestrator.DriveResult, sum orchestrator.Summary, styled bool) string {
	var b strings.Builder

	heading := "Disk check summary"
	if styled {
		heading = headingStyle.Render(heading)
	}
	b.WriteString(heading)
	b.WriteString("\n")

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Drive", "Result", "Detail"})
	for _, r := range results {
		tw.AppendRow(table.Row{r.Drive, outcomeCell(r, styled), detailCell(r)})
	}
	b.WriteString(tw.Render())
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%d healthy, %d pending, %d restart, %d idle, %d failed to schedule\n",
		len(sum.Healthy), len(sum.AlreadyDirty), len(sum.RebootScheduled),
		len(sum.IdleScheduled), len(sum.SchedulingFailed)))

	if sum.RebootPending() {
		note := fmt.Sprintf("Restart required to repair: %s", strings.Join(sum.RebootScheduled, ", "))
		if styled {
			note = warnStyle.Render(note)
		}
		b.WriteString(note)
		b.WriteString("\n")
	}
	return b.String()
}

func outcomeCell(r orchestrator.DriveResult, styled bool) string {
	s := r.Outcome.String()
	if !styled {
		return s
	}
	switch r.Outcome {
	case orchestrator.OutcomeHealthy:
		return healthyStyle.Render(s)
	case orchestrator.OutcomeRebootScheduled:
		if r.SchedulingFailed {
			return failStyle.Render(s)
		}
		return warnStyle.Render(s)
	case orchestrator.OutcomeIdleScheduled, orchestrator.OutcomeAlreadyDirty:
		return warnStyle.Render(s)
	}
	return s
}

func detailCell(r orchestrator.DriveResult) string {
	var parts []string
	if r.ScanExit != 0 {
		parts = append(parts, fmt.Sprintf("scan exit %d", r.ScanExit))
	}
	if r.SchedulingFailed {
		parts = append(parts, "idle task creation failed, fell back to restart")
	}
	if r.Warning != "" {
		parts = append(parts, r.Warning)
	}
	return strings.Join(parts, "; ")
}

// JSON encodes the summary for --json output.
func JSON(sum orchestrator.Summary) (string, error) {
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}
	return string(data), nil
}
