//go:build !windows

package winsys

import "errors"

// ErrUnsupported is returned on platforms without the Windows volume APIs.
var ErrUnsupported = errors.New("winsys: only supported on windows")

// IsElevated reports whether the current process token carries administrator
// rights.
func IsElevated() (bool, error) {
	return false, ErrUnsupported
}

// FixedDrives returns the letters of all local fixed disks in "C:" form.
func FixedDrives() ([]string, error) {
	return nil, ErrUnsupported
}
