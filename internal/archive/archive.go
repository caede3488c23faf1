// Package archive unpacks seed archives (zip, 7z and tar with optional gzip, bzip2
// or xz compression) into a directory.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/spf13/afero"
	"github.com/xi2/xz"

	"runapp/internal/logger"
)

// Extensions lists the supported suffixes, longest first so ".tar.gz" wins over ".gz".
var Extensions = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".tar", ".zip", ".7z"}

// ErrUnsupported is returned for a file whose suffix is not in Extensions.
var ErrUnsupported = errors.New("unsupported archive format")

// Supported reports whether path has a suffix Extract understands.
func Supported(path string) bool {
	return format(path) != ""
}

func format(path string) string {
	for _, ext := range Extensions {
		if strings.HasSuffix(path, ext) {
			return ext
		}
	}
	return ""
}

// Extract unpacks src into dest, creating dest if needed. Entries that would land
// outside dest are rejected.
func Extract(fsys afero.Fs, src, dest string) error {
	if err := fsys.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	var err error
	switch ext := format(src); ext {
	case ".zip":
		logger.Debug("[DEBUG] compression type is zip\n")
		err = extractZip(fsys, src, dest)
	case ".7z":
		logger.Debug("[DEBUG] compression type is 7z\n")
		err = extract7z(fsys, src, dest)
	case ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tar.xz":
		logger.Debug("[DEBUG] compression type is %s\n", ext)
		err = extractTar(fsys, src, dest, ext)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, src)
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", src, err)
	}
	return nil
}

// target resolves an archive entry name under dest.
func target(dest, name string) (string, error) {
	p := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes %s", name, dest)
	}
	return p, nil
}

func writeFile(fsys afero.Fs, path string, mode fs.FileMode, r io.Reader) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if mode.Perm() == 0 {
		mode = 0o644
	}
	out, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func extractTar(fsys afero.Fs, src, dest, ext string) error {
	f, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	switch ext {
	case ".tar.gz", ".tgz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		reader = gr
	case ".tar.bz2":
		reader = bzip2.NewReader(f)
	case ".tar.xz":
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		path, err := target(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(path, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(fsys, path, fs.FileMode(hdr.Mode), tr); err != nil {
				return err
			}
		default:
			logger.Debug("[DEBUG] Skipping %s (tar type %c)\n", hdr.Name, hdr.Typeflag)
		}
	}
}

func extractZip(fsys afero.Fs, src, dest string) error {
	f, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		return err
	}
	for _, zf := range r.File {
		path, err := target(dest, zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := fsys.MkdirAll(path, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return err
		}
		err = writeFile(fsys, path, zf.Mode(), rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extract7z(fsys afero.Fs, src, dest string) error {
	f, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	r, err := sevenzip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("failed to open 7z archive: %w", err)
	}
	for _, sf := range r.File {
		path, err := target(dest, sf.Name)
		if err != nil {
			return err
		}
		if sf.FileInfo().IsDir() {
			if err := fsys.MkdirAll(path, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := sf.Open()
		if err != nil {
			return err
		}
		err = writeFile(fsys, path, sf.Mode(), rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
