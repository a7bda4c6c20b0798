package chkdsk

import (
	"context"
	"strings"
	"testing"

	"diskward/internal/execx"
)

type invokerFunc func(ctx context.Context, spec execx.CommandSpec) (*execx.Result, error)

func (f invokerFunc) Run(ctx context.Context, spec execx.CommandSpec) (*execx.Result, error) {
	return f(ctx, spec)
}

func respond(output string, exit int) invokerFunc {
	return func(_ context.Context, _ execx.CommandSpec) (*execx.Result, error) {
		return &execx.Result{Output: output, ExitCode: exit}, nil
	}
}

func TestIsDirty(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    bool
		wantErr bool
	}{
		{"dirty", "Volume - C: is Dirty", true, false},
		{"clean", "Volume - C: is NOT Dirty", false, false},
		{"dirty alt marker", "The dirty bit is set on volume C:", true, false},
		{"clean alt marker", "The dirty bit is not set on volume C:", false, false},
		{"unknown output", "The parameter is incorrect.", false, true},
		{"empty output", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsDirty(context.Background(), respond(tt.output, 0), "C:")
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsDirty() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsDirty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanReturnsExitCode(t *testing.T) {
	for _, exit := range []int{0, 1, 3} {
		got, err := Scan(context.Background(), respond("...", exit), "D:")
		if err != nil {
			t.Fatalf("Scan() error: %v", err)
		}
		if got != exit {
			t.Errorf("Scan() = %d, want %d", got, exit)
		}
	}
}

func TestScheduleBootRepairConfirmsPrompt(t *testing.T) {
	var got execx.CommandSpec
	inv := invokerFunc(func(_ context.Context, spec execx.CommandSpec) (*execx.Result, error) {
		got = spec
		return &execx.Result{}, nil
	})

	if _, err := ScheduleBootRepair(context.Background(), inv, "C:"); err != nil {
		t.Fatalf("ScheduleBootRepair() error: %v", err)
	}
	if got.Name != "chkdsk" || strings.Join(got.Args, " ") != "C: /f" {
		t.Errorf("unexpected command: %s", got)
	}
	if got.Stdin != "y\n" {
		t.Errorf("Stdin = %q, want confirmation token", got.Stdin)
	}
	if !got.Mutating {
		t.Error("ScheduleBootRepair spec not marked mutating")
	}
}

func TestBootRepairChainRunsAllSteps(t *testing.T) {
	var calls []string
	inv := invokerFunc(func(_ context.Context, spec execx.CommandSpec) (*execx.Result, error) {
		calls = append(calls, spec.String())
		return &execx.Result{}, nil
	})

	if err := BootRepairChain(context.Background(), inv, "D:"); err != nil {
		t.Fatalf("BootRepairChain() error: %v", err)
	}
	want := []string{"chkdsk D: /f", "chkntfs /c D:", "fsutil dirty set D:"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestBootRepairChainShortCircuits(t *testing.T) {
	var calls []string
	inv := invokerFunc(func(_ context.Context, spec execx.CommandSpec) (*execx.Result, error) {
		calls = append(calls, spec.Name)
		if spec.Name == "chkntfs" {
			return &execx.Result{ExitCode: 1, Output: "Access denied."}, nil
		}
		return &execx.Result{}, nil
	})

	err := BootRepairChain(context.Background(), inv, "D:")
	if err == nil {
		t.Fatal("BootRepairChain() = nil error, want step failure")
	}
	if !strings.Contains(err.Error(), "chkntfs") {
		t.Errorf("error does not name the failed step: %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("chain did not stop at failing step, calls = %v", calls)
	}
}
