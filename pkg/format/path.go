package format

import (
	"errors"
	"io/fs"
	"os"
)

// FileModeOr returns the permission bits of path, or fallback if it cannot be stat'ed.
func FileModeOr(path string, fallback fs.FileMode) fs.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return fallback
	}
	return info.Mode().Perm()
}

// Exists reports whether path exists. Errors other than "not exist" count as existing
// so callers surface them on the following read.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
