// Package backup creates timestamped copies of repository files before
// they are overwritten. The backup tree mirrors repository-relative
// paths under a dedicated root, and a backup is always durably written
// before the corresponding overwrite is attempted.
package backup

import (
	"io/fs"
	"path/filepath"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// fileSyncer is the optional FS capability for flushing to stable
// storage. The OS filesystem implements it; memory filesystems don't
// need to.
type fileSyncer interface {
	SyncFile(name string) error
}

// Store copies files into the backup root before overwrites
type Store struct {
	fs    types.FS
	paths *paths.Paths

	// now is swappable for deterministic tests
	now func() time.Time
}

// New creates a backup store over the given filesystem and path layout
func New(filesys types.FS, p *paths.Paths) *Store {
	return &Store{fs: filesys, paths: p, now: time.Now}
}

// Backup copies the file at repoPath to a timestamped destination under
// the backup root. The source is copied, never moved, so it remains in
// place for the subsequent overwrite step. Intermediate directories are
// created as needed.
func (s *Store) Backup(repoPath string) (types.BackupRecord, error) {
	logger := logging.GetLogger("backup")

	content, err := s.fs.ReadFile(repoPath)
	if err != nil {
		return types.BackupRecord{}, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read backup source %s", repoPath)
	}

	info, err := s.fs.Stat(repoPath)
	if err != nil {
		return types.BackupRecord{}, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot stat backup source %s", repoPath)
	}

	ts := s.now()
	dest, err := s.paths.BackupPath(repoPath, ts)
	if err != nil {
		return types.BackupRecord{}, err
	}

	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return types.BackupRecord{}, errors.Wrapf(err, errors.ErrBackupCreate,
			"cannot create backup directory for %s", repoPath)
	}

	if err := s.fs.WriteFile(dest, content, sourceMode(info.Mode())); err != nil {
		return types.BackupRecord{}, errors.Wrapf(err, errors.ErrBackupCreate,
			"cannot write backup %s", dest)
	}

	// The backup must reach stable storage before the caller overwrites
	// the original
	if syncer, ok := s.fs.(fileSyncer); ok {
		if err := syncer.SyncFile(dest); err != nil {
			return types.BackupRecord{}, errors.Wrapf(err, errors.ErrBackupCreate,
				"cannot flush backup %s", dest)
		}
	}

	record := types.BackupRecord{
		OriginalPath: repoPath,
		BackupPath:   dest,
		Timestamp:    ts,
	}

	logger.Debug().
		Str("original", repoPath).
		Str("backup", dest).
		Msg("Created backup")
	return record, nil
}

func sourceMode(mode fs.FileMode) fs.FileMode {
	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	return perm
}
