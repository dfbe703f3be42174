// Package paths provides centralized path handling for dotsync.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	gitc "github.com/go-git/go-git/v5"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// Environment variable names
const (
	// EnvRepoRoot is the primary environment variable for the dotfiles
	// repository location
	EnvRepoRoot = "DOTSYNC_REPO"

	// EnvStateDir overrides the XDG state directory for dotsync
	EnvStateDir = "DOTSYNC_STATE_DIR"
)

// Default directories and files
const (
	// AppDirName is the directory name for dotsync-specific files
	AppDirName = "dotsync"

	// BackupsDir is the subdirectory for pre-overwrite backups
	BackupsDir = "backups"

	// RollbackDir is the subdirectory for generated rollback scripts
	RollbackDir = "rollback"

	// RepoConfigFile is the name of the per-repository configuration file
	RepoConfigFile = ".dotsync.toml"

	// ConflictSuffix is appended to a repository path to form the
	// merge-with-markers side file written on conflict
	ConflictSuffix = ".merge-conflict"

	// TimestampFormat is the sortable timestamp used for backup names
	// and rollback scripts
	TimestampFormat = "20060102-150405"
)

// Paths provides centralized path management for dotsync
type Paths struct {
	repoRoot   string
	stateDir   string
	backupRoot string
}

// New creates a Paths instance rooted at repoRoot. When repoRoot is empty
// the root is resolved from DOTSYNC_REPO, then the enclosing git repository,
// then the current directory.
func New(repoRoot string) (*Paths, error) {
	root, err := resolveRepoRoot(repoRoot)
	if err != nil {
		return nil, err
	}

	stateDir := os.Getenv(EnvStateDir)
	if stateDir == "" {
		stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	return &Paths{repoRoot: root, stateDir: stateDir}, nil
}

// RepoRoot returns the dotfiles repository root
func (p *Paths) RepoRoot() string {
	return p.repoRoot
}

// StateDir returns the dotsync state directory
func (p *Paths) StateDir() string {
	return p.stateDir
}

// BackupRoot returns the directory that mirrors repository-relative paths
// for timestamped backups
func (p *Paths) BackupRoot() string {
	if p.backupRoot != "" {
		return p.backupRoot
	}
	return filepath.Join(p.stateDir, BackupsDir)
}

// OverrideBackupRoot replaces the XDG-derived backup root, typically
// from repository configuration
func (p *Paths) OverrideBackupRoot(dir string) {
	p.backupRoot = dir
}

// RepoConfigPath returns the location of the optional repository config file
func (p *Paths) RepoConfigPath() string {
	return filepath.Join(p.repoRoot, RepoConfigFile)
}

// TempDir returns the working directory for a pass started at the given
// time. The session removes it on every exit path.
func (p *Paths) TempDir(start time.Time) string {
	return filepath.Join(p.stateDir, "tmp", "pass-"+start.Format(TimestampFormat))
}

// RollbackScriptPath returns the path for the rollback script of a pass
// started at the given time
func (p *Paths) RollbackScriptPath(start time.Time) string {
	name := "rollback-" + start.Format(TimestampFormat) + ".sh"
	return filepath.Join(p.stateDir, RollbackDir, name)
}

// BackupPath maps a repository file to its timestamped backup destination.
// The backup tree mirrors the file's position relative to the repo root.
func (p *Paths) BackupPath(repoPath string, ts time.Time) (string, error) {
	rel, err := p.RelToRepo(repoPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(p.BackupRoot(), rel) + "." + ts.Format(TimestampFormat), nil
}

// ConflictSidePath returns where merge-with-markers content is written
// when a merge conflicts
func (p *Paths) ConflictSidePath(repoPath string) string {
	return repoPath + ConflictSuffix
}

// RelToRepo converts an absolute repository path to a repo-relative one
func (p *Paths) RelToRepo(path string) (string, error) {
	rel, err := filepath.Rel(p.repoRoot, path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput,
			"path %s is not under repository root %s", path, p.repoRoot)
	}
	if strings.HasPrefix(rel, "..") {
		return "", errors.Newf(errors.ErrInvalidInput,
			"path %s is not under repository root %s", path, p.repoRoot)
	}
	return rel, nil
}

func resolveRepoRoot(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}

	if env := os.Getenv(EnvRepoRoot); env != "" {
		return filepath.Abs(expandHome(env))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot determine working directory")
	}

	// Prefer the enclosing git repository root when there is one
	if root := findGitRoot(cwd); root != "" {
		return root, nil
	}

	return cwd, nil
}

// findGitRoot walks up from dir looking for the enclosing git work tree.
// Returns "" when dir is not inside a repository.
func findGitRoot(dir string) string {
	_, err := gitc.PlainOpenWithOptions(dir, &gitc.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	// PlainOpenWithOptions found a repo; locate its top level by walking
	// up to the directory containing .git
	for d := dir; ; {
		if info, statErr := os.Stat(filepath.Join(d, ".git")); statErr == nil && info.IsDir() {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return ""
		}
		d = parent
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}
