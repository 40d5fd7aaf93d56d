// Package fileutil holds small filesystem helpers shared by the stores and
// pipeline stages: streaming copies and crash-safe replacement writes.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrEmpty reports that CopyReader received no bytes. The destination is left
// untouched.
var ErrEmpty = errors.New("empty source")

// CopyReader streams r into a sibling temp file of dst and renames it into
// place once the copy is synced, returning the number of bytes written. dst
// keeps its previous content when the copy fails or r yields no bytes, so a
// reader opened on dst itself is safe.
func CopyReader(r io.Reader, dst string) (int64, error) {
	var written int64
	err := replace(dst, 0o644, func(w io.Writer) error {
		n, err := io.Copy(w, r)
		written = n
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrEmpty
		}
		return nil
	})
	return written, err
}

// AtomicWriteFile replaces path with data by writing a sibling temp file,
// syncing it, and renaming it over the target. Readers observe either the
// previous content or the new content, never a partial write.
func AtomicWriteFile(path string, data []byte, mode os.FileMode) error {
	return replace(path, mode, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func replace(path string, mode os.FileMode, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		if errors.Is(err, ErrEmpty) {
			return err
		}
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}

// NonEmpty reports whether path exists as a regular file with content.
func NonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
