package doctor

import (
	"errors"
	"testing"
)

func withHooks(t *testing.T, look func(string) (string, error), elev func() (bool, error)) {
	t.Helper()
	origLook, origElev := lookPath, isElevated
	lookPath, isElevated = look, elev
	t.Cleanup(func() { lookPath, isElevated = origLook, origElev })
}

func TestRunAllHealthy(t *testing.T) {
	withHooks(t,
		func(name string) (string, error) { return `C:\Windows\System32\` + name + ".exe", nil },
		func() (bool, error) { return true, nil },
	)

	report := Run()
	if !report.Healthy() {
		t.Errorf("Healthy() = false: %+v", report.Results)
	}
	if report.Failed != 0 || report.Warned != 0 {
		t.Errorf("counts = %d failed, %d warned; want 0, 0", report.Failed, report.Warned)
	}
}

func TestRunMissingBinaries(t *testing.T) {
	withHooks(t,
		func(name string) (string, error) {
			switch name {
			case "schtasks":
				return "", errors.New("not found")
			case "msg":
				return "", errors.New("not found")
			}
			return name, nil
		},
		func() (bool, error) { return true, nil },
	)

	report := Run()
	if report.Healthy() {
		t.Error("Healthy() = true with schtasks missing")
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1 (schtasks)", report.Failed)
	}
	if report.Warned != 1 {
		t.Errorf("Warned = %d, want 1 (msg is optional)", report.Warned)
	}
}

func TestRunNotElevated(t *testing.T) {
	withHooks(t,
		func(name string) (string, error) { return name, nil },
		func() (bool, error) { return false, nil },
	)

	report := Run()
	if report.Healthy() {
		t.Error("Healthy() = true without elevation")
	}
	if report.Results[0].Name != "administrator rights" || report.Results[0].Status != SeverityFail {
		t.Errorf("elevation check = %+v", report.Results[0])
	}
}
