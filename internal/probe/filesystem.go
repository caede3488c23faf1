// Package probe answers read-only questions about the machine: which marker files
// exist and whether the database process is in the process table.
package probe

import (
	"github.com/spf13/afero"
)

// Filesystem checks marker files and directories.
type Filesystem struct {
	fs afero.Fs
}

// NewFilesystem wraps fs.
func NewFilesystem(fs afero.Fs) *Filesystem {
	return &Filesystem{fs: fs}
}

// Exists reports whether path can be stat'ed. It never fails: any stat error,
// including permission problems, counts as "not there".
func (p *Filesystem) Exists(path string) bool {
	_, err := p.fs.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func (p *Filesystem) IsDir(path string) bool {
	info, err := p.fs.Stat(path)
	return err == nil && info.IsDir()
}
