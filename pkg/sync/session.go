package sync

import (
	"io"
	"time"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/classify"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/journal"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/merge"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/vcs"
)

// Options control one sync pass
type Options struct {
	// DryRun computes and reports without any mutation, backup, or
	// journal writes
	DryRun bool

	// Overwrite replaces repository files with local content without
	// attempting a merge
	Overwrite bool

	// Verbose emits per-candidate classification and comparison results
	// to Out
	Verbose bool

	// Out receives user-facing per-candidate output; nil discards it
	Out io.Writer
}

// Session owns all state for one sync pass. Create with New, release
// with Close; Close runs on every exit path including cancellation.
type Session struct {
	fs    types.FS
	paths *paths.Paths
	opts  Options

	repo       *vcs.Repository
	classifier *classify.Classifier
	backups    *backup.Store
	engine     *merge.Engine
	registry   *merge.ToolRegistry
	jrnl       *journal.Journal

	tempDir string
	start   time.Time
}

// New assembles a session: opens the repository view, resolves external
// tools once, prepares the backup root and temp dir, and initializes the
// journal (unless dry-run). A backup root that cannot be created is fatal
// for the whole run. In merge mode a missing merge tool fails here with
// ErrToolUnavailable; callers must obtain explicit operator consent
// before retrying in overwrite mode.
func New(fs types.FS, p *paths.Paths, cfg *config.Config, runner merge.CommandRunner, opts Options) (*Session, error) {
	logger := logging.GetLogger("sync.session")

	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if cfg.Backup.Dir != "" {
		p.OverrideBackupRoot(cfg.Backup.Dir)
	}

	registry := merge.ResolveTools(runner, cfg.Sync.MergeTools)
	if !opts.Overwrite && !registry.HasMergeTool() {
		return nil, errors.New(errors.ErrToolUnavailable, merge.ToolRemedy)
	}

	s := &Session{
		fs:         fs,
		paths:      p,
		opts:       opts,
		repo:       vcs.Open(p.RepoRoot()),
		classifier: classify.New(fs, cfg.Sync.BinaryExtensions),
		registry:   registry,
		start:      time.Now(),
	}

	s.tempDir = p.TempDir(s.start)
	if err := fs.MkdirAll(s.tempDir, 0700); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create session temp dir")
	}

	s.engine = merge.NewEngine(fs, runner, registry, s.tempDir)
	s.backups = backup.New(fs, p)

	if !opts.DryRun {
		if err := fs.MkdirAll(p.BackupRoot(), 0755); err != nil {
			s.Close()
			return nil, errors.Wrap(err, errors.ErrBackupCreate,
				"cannot create backup root")
		}
		s.jrnl = journal.New(p.RollbackScriptPath(s.start))
	}

	logger.Debug().
		Str("repo", p.RepoRoot()).
		Bool("dry_run", opts.DryRun).
		Bool("overwrite", opts.Overwrite).
		Str("merge_tool", registry.MergeToolName()).
		Msg("Session created")
	return s, nil
}

// Close releases session resources. Safe to call more than once; the
// journal and any written rollback script survive.
func (s *Session) Close() {
	if s.tempDir != "" {
		if err := s.fs.RemoveAll(s.tempDir); err != nil {
			logger := logging.GetLogger("sync.session")
			logger.Warn().Err(err).Str("dir", s.tempDir).Msg("Failed to remove temp dir")
		}
		s.tempDir = ""
	}
}

// RollbackScriptPath returns where this pass writes its rollback script,
// or "" for dry runs
func (s *Session) RollbackScriptPath() string {
	if s.jrnl == nil {
		return ""
	}
	return s.paths.RollbackScriptPath(s.start)
}

// Journal exposes the pass journal; nil for dry runs
func (s *Session) Journal() *journal.Journal {
	return s.jrnl
}

// Repo exposes the session's version-control view, shared with candidate
// discovery so the tracked-path set is loaded only once
func (s *Session) Repo() *vcs.Repository {
	return s.repo
}

// flushJournal rewrites the rollback script after each recorded
// mutation, so a crash mid-pass leaves the inverses on disk
func (s *Session) flushJournal() error {
	if s.jrnl == nil || s.jrnl.Len() == 0 {
		return nil
	}
	_, err := s.jrnl.Write(s.fs)
	return err
}
