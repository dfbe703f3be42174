// Package journal records every destructive action of a sync pass
// alongside its inverse, and renders the inverses as a standalone
// executable rollback script. Inverses are recorded before the forward
// action executes, so a crash mid-action still leaves every preceding
// mutation reversible.
package journal

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Kind classifies a journaled operation by its inverse action
type Kind int

const (
	// Restore copies a backup over the mutated original
	Restore Kind = iota

	// RemoveSymlink deletes a symlink the pass created
	RemoveSymlink

	// RemoveFile deletes a file the pass created
	RemoveFile

	// RemoveDirectory deletes a directory the pass created
	RemoveDirectory
)

func (k Kind) String() string {
	switch k {
	case RemoveSymlink:
		return "remove-symlink"
	case RemoveFile:
		return "remove-file"
	case RemoveDirectory:
		return "remove-directory"
	default:
		return "restore"
	}
}

// Operation is one journaled mutation: what happened, and the guarded
// shell fragment that undoes it
type Operation struct {
	Kind        Kind
	Description string
	Inverse     string
}

// Journal is the ordered log of inverse actions for one sync pass.
// A nil Journal is valid and records nothing, which keeps journaling
// optional for read-only invocations.
type Journal struct {
	scriptPath string
	ops        []Operation
	now        func() time.Time
}

// New creates a journal whose rollback script will live at scriptPath
func New(scriptPath string) *Journal {
	return &Journal{scriptPath: scriptPath, now: time.Now}
}

// Record appends one operation. No-op on a nil journal.
func (j *Journal) Record(kind Kind, description, inverse string) {
	if j == nil {
		return
	}
	j.ops = append(j.ops, Operation{Kind: kind, Description: description, Inverse: inverse})

	logger := logging.GetLogger("journal")
	logger.Debug().Stringer("kind", kind).Str("description", description).Msg("Journaled operation")
}

// RecordRestore journals "restore originalPath from backupPath",
// guarded on the backup still existing
func (j *Journal) RecordRestore(backupPath, originalPath string) {
	inverse := fmt.Sprintf("if [ -f %s ]; then\n  cp -p %s %s\nfi",
		shQuote(backupPath), shQuote(backupPath), shQuote(originalPath))
	j.Record(Restore, fmt.Sprintf("restore %s", originalPath), inverse)
}

// RecordRemoveSymlink journals symlink removal, guarded on the path
// still being a symlink
func (j *Journal) RecordRemoveSymlink(linkPath string) {
	inverse := fmt.Sprintf("if [ -L %s ]; then\n  rm -f %s\nfi",
		shQuote(linkPath), shQuote(linkPath))
	j.Record(RemoveSymlink, fmt.Sprintf("remove symlink %s", linkPath), inverse)
}

// RecordRemoveFile journals file removal, guarded on the path still
// being a regular file
func (j *Journal) RecordRemoveFile(path string) {
	inverse := fmt.Sprintf("if [ -f %s ]; then\n  rm -f %s\nfi",
		shQuote(path), shQuote(path))
	j.Record(RemoveFile, fmt.Sprintf("remove file %s", path), inverse)
}

// RecordRemoveDirectory journals directory removal, guarded on the path
// still being a directory; rmdir keeps it safe for non-empty dirs
func (j *Journal) RecordRemoveDirectory(path string) {
	inverse := fmt.Sprintf("if [ -d %s ]; then\n  rmdir %s\nfi",
		shQuote(path), shQuote(path))
	j.Record(RemoveDirectory, fmt.Sprintf("remove directory %s", path), inverse)
}

// Len returns the number of recorded operations
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.ops)
}

// Operations returns the recorded operations in order
func (j *Journal) Operations() []Operation {
	if j == nil {
		return nil
	}
	return j.ops
}

// Render serializes the journal into an executable shell script.
// Every inverse is guarded by an existence check, so re-running the
// script observes targets already restored or absent and no-ops.
func (j *Journal) Render() string {
	var b strings.Builder

	b.WriteString("#!/bin/sh\n")
	b.WriteString("# dotsync rollback script - restores pre-sync state\n")
	fmt.Fprintf(&b, "# generated: %s\n", j.now().Format(time.RFC3339))
	b.WriteString("# safe to re-run: every action is guarded by an existence check\n")
	b.WriteString("set -u\n")

	for _, op := range j.ops {
		b.WriteString("\n")
		fmt.Fprintf(&b, "# undo: %s\n", op.Description)
		b.WriteString(op.Inverse)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "echo %s\n", shQuote("Rollback complete: "+j.scriptPath))
	return b.String()
}

// Write renders the journal and writes the script to its path,
// executable. Returns the script path.
func (j *Journal) Write(fs types.FS) (string, error) {
	if j == nil {
		return "", nil
	}

	if err := fs.MkdirAll(filepath.Dir(j.scriptPath), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create rollback script directory")
	}
	if err := fs.WriteFile(j.scriptPath, []byte(j.Render()), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite,
			"cannot write rollback script %s", j.scriptPath)
	}
	return j.scriptPath, nil
}

// shQuote wraps s in single quotes, escaping embedded single quotes
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
