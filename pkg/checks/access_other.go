//go:build !unix

package checks

import "os"

// systemAccess falls back to the permission bits where access(2) is not
// available.
func systemAccess(path string, mode AccessMode) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	perm := info.Mode().Perm()
	switch mode {
	case AccessRead:
		return perm&0o444 != 0, nil
	case AccessWrite:
		return perm&0o222 != 0, nil
	case AccessExecute:
		return info.IsDir() || perm&0o111 != 0, nil
	}
	return false, nil
}
