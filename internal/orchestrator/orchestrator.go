// Package orchestrator drives the scan/repair pass: dirty-bit check, then a
// read-only scan, then repair scheduling for drives with errors. Drives are
// processed one at a time in enumeration order; every outcome is appended to
// an ordered result slice and reduced to a summary at the end.
package orchestrator

import (
	"context"
	"fmt"

	"diskward/internal/chkdsk"
	"diskward/internal/execx"
	"diskward/internal/schtasks"
)

// Outcome classifies what happened to a single drive.
type Outcome int

const (
	// OutcomeHealthy means the read-only scan found no errors.
	OutcomeHealthy Outcome = iota
	// OutcomeAlreadyDirty means the dirty bit was set before this run, so a
	// repair is already pending and the drive was skipped entirely.
	OutcomeAlreadyDirty
	// OutcomeRebootScheduled means a repair was scheduled for the next boot.
	OutcomeRebootScheduled
	// OutcomeIdleScheduled means a one-shot idle-time repair task was created.
	OutcomeIdleScheduled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHealthy:
		return "healthy"
	case OutcomeAlreadyDirty:
		return "repair already pending"
	case OutcomeRebootScheduled:
		return "repair at next restart"
	case OutcomeIdleScheduled:
		return "repair when idle"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// DriveResult records the outcome for one drive. SchedulingFailed is set
// alongside OutcomeRebootScheduled when the idle task could not be created
// and the run fell back to a boot-time repair.
type DriveResult struct {
	Drive            string
	Outcome          Outcome
	ScanExit         int
	SchedulingFailed bool
	Warning          string
}

// Phase tags progress events emitted while a drive is being processed.
type Phase int

const (
	PhaseDirtyCheck Phase = iota
	PhaseScan
	PhaseSchedule
	PhaseDone
)

// Event is delivered to the observer as the pass moves through its phases.
// Result is non-nil only for PhaseDone.
type Event struct {
	Drive  string
	Phase  Phase
	Result *DriveResult
}

// Pass holds the configuration for one scan/repair run.
type Pass struct {
	inv         execx.Invoker
	reboot      map[string]bool
	idleMinutes int
	observer    func(Event)
}

// New builds a pass. reboot is the set of drives that must be repaired at
// boot time (system drive and pagefile hosts).
func New(inv execx.Invoker, reboot map[string]bool, idleMinutes int) *Pass {
	return &Pass{inv: inv, reboot: reboot, idleMinutes: idleMinutes}
}

// SetObserver registers a callback for progress events. It is invoked
// synchronously from Run, in drive order.
func (p *Pass) SetObserver(fn func(Event)) {
	p.observer = fn
}

func (p *Pass) emit(e Event) {
	if p.observer != nil {
		p.observer(e)
	}
}

// Run processes the drives sequentially and returns one result per drive,
// in input order. An error from the dirty query or the scan itself aborts
// the run; scheduling failures degrade per drive instead.
func (p *Pass) Run(ctx context.Context, drives []string) ([]DriveResult, error) {
	results := make([]DriveResult, 0, len(drives))

	for _, drive := range drives {
		res, err := p.checkDrive(ctx, drive)
		if err != nil {
			return results, fmt.Errorf("checking %s: %w", drive, err)
		}
		results = append(results, *res)
		p.emit(Event{Drive: drive, Phase: PhaseDone, Result: res})
	}
	return results, nil
}

func (p *Pass) checkDrive(ctx context.Context, drive string) (*DriveResult, error) {
	res := &DriveResult{Drive: drive}

	p.emit(Event{Drive: drive, Phase: PhaseDirtyCheck})
	dirty, err := chkdsk.IsDirty(ctx, p.inv, drive)
	if err != nil {
		return nil, err
	}
	if dirty {
		// A pending repair already exists; re-scanning or re-scheduling
		// would duplicate it.
		res.Outcome = OutcomeAlreadyDirty
		return res, nil
	}

	p.emit(Event{Drive: drive, Phase: PhaseScan})
	exit, err := chkdsk.Scan(ctx, p.inv, drive)
	if err != nil {
		return nil, err
	}
	res.ScanExit = exit
	if exit == 0 {
		res.Outcome = OutcomeHealthy
		return res, nil
	}

	p.emit(Event{Drive: drive, Phase: PhaseSchedule})
	p.schedule(ctx, drive, res)
	return res, nil
}

// schedule picks the repair path for a drive that scanned with errors.
func (p *Pass) schedule(ctx context.Context, drive string, res *DriveResult) {
	if p.reboot[drive] {
		if err := chkdsk.BootRepairChain(ctx, p.inv, drive); err != nil {
			res.Warning = err.Error()
		}
		res.Outcome = OutcomeRebootScheduled
		return
	}

	if err := schtasks.CreateIdleRepair(ctx, p.inv, drive, p.idleMinutes); err != nil {
		// Fall back to a boot-time repair and report the failure.
		res.SchedulingFailed = true
		res.Warning = err.Error()
		if cerr := chkdsk.BootRepairChain(ctx, p.inv, drive); cerr != nil {
			res.Warning = res.Warning + "; " + cerr.Error()
		}
		res.Outcome = OutcomeRebootScheduled
		return
	}
	res.Outcome = OutcomeIdleScheduled
}

// Summary reduces the ordered results into the per-outcome drive sets used
// for reporting. A drive appears in exactly one outcome set; the fallback
// path additionally lists it under SchedulingFailed.
type Summary struct {
	Healthy          []string `json:"healthy"`
	AlreadyDirty     []string `json:"already_dirty"`
	RebootScheduled  []string `json:"reboot_scheduled"`
	IdleScheduled    []string `json:"idle_scheduled"`
	SchedulingFailed []string `json:"scheduling_failed"`
}

// Summarize folds results into a Summary, preserving drive order.
func Summarize(results []DriveResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome {
		case OutcomeHealthy:
			s.Healthy = append(s.Healthy, r.Drive)
		case OutcomeAlreadyDirty:
			s.AlreadyDirty = append(s.AlreadyDirty, r.Drive)
		case OutcomeRebootScheduled:
			s.RebootScheduled = append(s.RebootScheduled, r.Drive)
		case OutcomeIdleScheduled:
			s.IdleScheduled = append(s.IdleScheduled, r.Drive)
		}
		if r.SchedulingFailed {
			s.SchedulingFailed = append(s.SchedulingFailed, r.Drive)
		}
	}
	return s
}

// RebootPending reports whether any drive needs a restart to complete its
// repair.
func (s Summary) RebootPending() bool {
	return len(s.RebootScheduled) > 0
}
