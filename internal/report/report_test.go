package report

import (
	"encoding/json"
	"strings"
	"testing"

	"diskward/internal/orchestrator"
)

func sampleResults() []orchestrator.DriveResult {
	return []orchestrator.DriveResult{
		{Drive: "C:", Outcome: orchestrator.OutcomeHealthy},
		{Drive: "D:", Outcome: orchestrator.OutcomeRebootScheduled, ScanExit: 1},
		{Drive: "E:", Outcome: orchestrator.OutcomeRebootScheduled, ScanExit: 2, SchedulingFailed: true},
	}
}

func TestRenderListsEveryDrive(t *testing.T) {
	results := sampleResults()
	out := Render(results, orchestrator.Summarize(results), false)

	for _, want := range []string{"C:", "D:", "E:", "healthy", "repair at next restart", "scan exit 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Restart required to repair: D:, E:") {
		t.Errorf("report missing restart note:\n%s", out)
	}
}

func TestRenderOmitsRestartNoteWhenClean(t *testing.T) {
	results := []orchestrator.DriveResult{{Drive: "C:", Outcome: orchestrator.OutcomeHealthy}}
	out := Render(results, orchestrator.Summarize(results), false)
	if strings.Contains(out, "Restart required") {
		t.Errorf("clean run printed a restart note:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	results := sampleResults()
	out, err := JSON(orchestrator.Summarize(results))
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var decoded map[string][]string
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got := decoded["reboot_scheduled"]; len(got) != 2 {
		t.Errorf("reboot_scheduled = %v, want two drives", got)
	}
	if got := decoded["scheduling_failed"]; len(got) != 1 || got[0] != "E:" {
		t.Errorf("scheduling_failed = %v, want [E:]", got)
	}
}
