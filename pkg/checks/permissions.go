package checks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

// AccessMode is one of the access kinds a permission string can request.
type AccessMode int

const (
	AccessRead AccessMode = iota
	AccessWrite
	AccessExecute
)

func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessExecute:
		return "execute"
	}
	return fmt.Sprintf("AccessMode(%d)", int(m))
}

// AccessFunc reports whether the current process may access path in mode.
type AccessFunc func(path string, mode AccessMode) (bool, error)

// SystemAccess asks the operating system.
var SystemAccess AccessFunc = systemAccess

var permissionOrder = []struct {
	letter rune
	mode   AccessMode
}{
	{'r', AccessRead},
	{'w', AccessWrite},
	{'x', AccessExecute},
}

// PermissionChecker verifies existence and access rights of a path.
type PermissionChecker struct {
	Access AccessFunc
}

// Check reports the first problem with path: not found, then the first
// missing mode in the order read, write, execute.
func (p PermissionChecker) Check(path, permissions string) (string, error) {
	for _, r := range permissions {
		if r != 'r' && r != 'w' && r != 'x' {
			return "", spec.ConfigErrorf("", "invalid permission %q in %q: use r, w and x", r, permissions)
		}
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("Path not found: %s", path), nil
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	access := p.Access
	if access == nil {
		access = SystemAccess
	}
	for _, po := range permissionOrder {
		if !strings.ContainsRune(permissions, po.letter) {
			continue
		}
		ok, err := access(path, po.mode)
		if err != nil {
			return "", fmt.Errorf("check %s access on %s: %w", po.mode, path, err)
		}
		if !ok {
			return fmt.Sprintf("You must have %s access to this file", po.mode), nil
		}
	}
	return "", nil
}
