//go:build unix

package checks

import (
	"errors"

	"golang.org/x/sys/unix"
)

func systemAccess(path string, mode AccessMode) (bool, error) {
	var bits uint32
	switch mode {
	case AccessRead:
		bits = unix.R_OK
	case AccessWrite:
		bits = unix.W_OK
	case AccessExecute:
		bits = unix.X_OK
	}
	err := unix.Access(path, bits)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EROFS):
		return false, nil
	default:
		return false, err
	}
}
