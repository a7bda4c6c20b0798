package volume

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"diskward/internal/execx"
)

// SystemDrive returns the letter of the drive hosting the running Windows
// installation, falling back to C: when the environment doesn't say.
func SystemDrive() string {
	if d := strings.TrimSpace(os.Getenv("SystemDrive")); d != "" {
		return strings.ToUpper(d)
	}
	return "C:"
}

// Pagefiles queries the configured pagefile locations and returns their
// paths. Callers treat a failure here as recoverable: the run continues with
// only the boot drive classified as reboot-required.
func Pagefiles(ctx context.Context, inv execx.Invoker) ([]string, error) {
	res, err := inv.Run(ctx, execx.CommandSpec{
		Name: "wmic",
		Args: []string{"pagefile", "list", "/format:list"},
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("wmic exited %d", res.ExitCode)
	}

	// Output is key=value lines, one block per pagefile:
	//   Name=C:\pagefile.sys
	var paths []string
	for _, line := range strings.Split(res.Output, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Name="); ok && v != "" {
			paths = append(paths, v)
		}
	}
	return paths, nil
}

// DriveOf extracts the "C:" drive letter from a path. Returns false for
// UNC paths and anything else without a leading letter-colon.
func DriveOf(path string) (string, bool) {
	p := strings.TrimSpace(path)
	if len(p) < 2 || p[1] != ':' {
		return "", false
	}
	c := p[0]
	if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
		return "", false
	}
	return strings.ToUpper(p[:2]), true
}

// DrivesOf maps a list of paths to their deduplicated drive letters,
// skipping paths without one.
func DrivesOf(paths []string) []string {
	seen := make(map[string]bool)
	var drives []string
	for _, p := range paths {
		d, ok := DriveOf(p)
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		drives = append(drives, d)
	}
	return drives
}

// RebootRequired builds the set of drives that can only be repaired at boot
// time: the system drive plus every drive hosting a pagefile. Letters are
// upper-cased and deduplicated, so the result is identical regardless of
// input order or case.
func RebootRequired(systemDrive string, pagefileDrives []string) map[string]bool {
	set := make(map[string]bool)
	if d, ok := DriveOf(systemDrive); ok {
		set[d] = true
	}
	for _, pd := range pagefileDrives {
		if d, ok := DriveOf(pd); ok {
			set[d] = true
		}
	}
	return set
}

// Letters returns the members of a drive set in sorted order, for display.
func Letters(set map[string]bool) []string {
	letters := make([]string, 0, len(set))
	for d := range set {
		letters = append(letters, d)
	}
	sort.Strings(letters)
	return letters
}
