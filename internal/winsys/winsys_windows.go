//go:build windows

package winsys

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the current process token carries administrator
// rights.
func IsElevated() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}

// FixedDrives returns the letters of all local fixed disks in "C:" form,
// in drive-letter order.
func FixedDrives() ([]string, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("enumerating logical drives: %w", err)
	}

	var drives []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		letter := string(rune('A' + i))
		root, err := windows.UTF16PtrFromString(letter + `:\`)
		if err != nil {
			continue
		}
		if windows.GetDriveType(root) == windows.DRIVE_FIXED {
			drives = append(drives, letter+":")
		}
	}
	return drives, nil
}
