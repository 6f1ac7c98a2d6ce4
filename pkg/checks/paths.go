package checks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

const notText = "Value could not be converted to a string"

type directoryOptions struct {
	Exists      *bool   `yaml:"exists"`
	Permissions *string `yaml:"permissions"`
}

// DirectoryChecker validates directory paths. With exists set to false, a
// path that does not exist yet is accepted when its nearest existing ancestor
// grants the requested permissions.
type DirectoryChecker struct {
	Perm PermissionChecker
}

func (d DirectoryChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	var o directoryOptions
	if err := decodeOptions(opts, &o); err != nil {
		return "", err
	}
	permissions := "rx"
	if o.Permissions != nil {
		permissions = *o.Permissions
	}
	mustExist := o.Exists == nil || *o.Exists
	path, ok := textValue(value)
	if !ok {
		return notText, nil
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Sprintf("Path must be a directory: %s", path), nil
		}
	case errors.Is(err, fs.ErrNotExist):
		if mustExist {
			return fmt.Sprintf("Directory not found: %s", path), nil
		}
		parent, err := nearestExistingAncestor(path)
		if err != nil {
			return "", err
		}
		path = parent
	default:
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return d.Perm.Check(path, permissions)
}

func nearestExistingAncestor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", dir, err)
		}
		if dir == filepath.Dir(dir) {
			return dir, nil
		}
	}
}

type fileOptions struct {
	Permissions *string `yaml:"permissions"`
}

// FileChecker validates that a file exists with the requested permissions
// (read by default).
type FileChecker struct {
	Perm PermissionChecker
}

func (f FileChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	var o fileOptions
	if err := decodeOptions(opts, &o); err != nil {
		return "", err
	}
	permissions := "r"
	if o.Permissions != nil {
		permissions = *o.Permissions
	}
	path, ok := textValue(value)
	if !ok {
		return notText, nil
	}
	return f.check(path, permissions)
}

func (f FileChecker) check(path, permissions string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("File not found: %s", path), nil
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Sprintf("Path must be a file, not a directory: %s", path), nil
	}
	return f.Perm.Check(path, permissions)
}
