// Package fsutil holds the idempotent filesystem mutations used to reset generated state.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"runapp/internal/logger"
)

// RemoveIfPresent deletes path, recursing into directories. An absent path is a
// successful no-op; every other failure (permissions, busy files) is returned.
func RemoveIfPresent(fsys afero.Fs, path string) error {
	if _, err := fsys.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := fsys.RemoveAll(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Removed %s\n", path)
	return nil
}

// RemoveAllIfPresent applies RemoveIfPresent to every path and stops at the first failure.
func RemoveAllIfPresent(fsys afero.Fs, paths ...string) error {
	for _, p := range paths {
		if err := RemoveIfPresent(fsys, p); err != nil {
			return err
		}
	}
	return nil
}

// RemoveContents empties dir but keeps dir itself. A missing dir is a no-op.
func RemoveContents(fsys afero.Fs, dir string) error {
	matches, err := afero.Glob(fsys, filepath.Join(dir, "*"))
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	return RemoveAllIfPresent(fsys, matches...)
}

// Touch creates an empty file at path, creating parent directories as needed.
// An existing file is truncated.
func Touch(fsys afero.Fs, path string) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return f.Close()
}

// CopyFile copies src to dst, creating missing parent directories and keeping the
// source permissions.
func CopyFile(fsys afero.Fs, src, dst string) (err error) {
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source failed: %w", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	return nil
}

// CopyDir copies the tree under src into dst, merging with whatever dst already holds.
func CopyDir(fsys afero.Fs, src, dst string) error {
	return afero.Walk(fsys, src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fsys.MkdirAll(target, 0o755)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return CopyFile(fsys, path, target)
	})
}
