// Package fsutil holds the shared filesystem write primitive.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks the in-flight files of an atomic write. The
// random suffix CreateTemp appends never ends in .md, so a crashed
// run's leftovers are invisible to note scans.
const TempFilePrefix = "gitsidian-tmp-"

// WriteFileAtomic writes data to filename through a temp file in the
// same directory followed by a rename, so a reader observes either the
// old content or the new, never a torn write. The temp file is fsynced
// before the rename; a crash mid-write leaves the target untouched.
// The target directory must already exist.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name) // no-op once the rename has happened

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Chmod(name, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(name, filename); err != nil {
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}
