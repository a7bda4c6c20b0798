// Package doctor verifies that the environment can actually run a repair
// pass: the OS utilities must be on PATH and the process must be elevated.
package doctor

import (
	"fmt"
	"os/exec"

	"diskward/internal/winsys"
)

// Severity classifies a check result.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityWarn
	SeverityFail
)

func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityWarn:
		return "warn"
	case SeverityFail:
		return "fail"
	}
	return "unknown"
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name   string
	Status Severity
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []CheckResult
	Passed  int
	Warned  int
	Failed  int
}

// Healthy reports whether no check failed outright.
func (r *Report) Healthy() bool { return r.Failed == 0 }

// binary is an external utility diskward shells out to. Optional binaries
// degrade to a warning when missing.
type binary struct {
	name     string
	purpose  string
	optional bool
}

var binaries = []binary{
	{"chkdsk", "read-only scans and repair scheduling", false},
	{"fsutil", "dirty bit query and set", false},
	{"chkntfs", "forcing the boot-time check", false},
	{"schtasks", "idle-time repair tasks", false},
	{"wmic", "pagefile enumeration", true},
	{"msg", "desktop notification", true},
}

// Hooks for tests.
var (
	lookPath   = exec.LookPath
	isElevated = winsys.IsElevated
)

// Run executes every environment check and returns the aggregated report.
func Run() *Report {
	report := &Report{}

	elevated, err := isElevated()
	switch {
	case err != nil:
		report.add(CheckResult{Name: "administrator rights", Status: SeverityFail, Detail: err.Error()})
	case !elevated:
		report.add(CheckResult{Name: "administrator rights", Status: SeverityFail, Detail: "process token is not elevated"})
	default:
		report.add(CheckResult{Name: "administrator rights", Status: SeverityPass})
	}

	for _, b := range binaries {
		res := CheckResult{Name: b.name, Detail: b.purpose}
		if _, err := lookPath(b.name); err != nil {
			res.Detail = fmt.Sprintf("binary %q not found (%s)", b.name, b.purpose)
			if b.optional {
				res.Status = SeverityWarn
			} else {
				res.Status = SeverityFail
			}
		}
		report.add(res)
	}
	return report
}

func (r *Report) add(res CheckResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case SeverityPass:
		r.Passed++
	case SeverityWarn:
		r.Warned++
	case SeverityFail:
		r.Failed++
	}
}
