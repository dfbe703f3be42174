// Package discover enumerates sync candidates by walking the repository
// tree and mapping each file to its deployed location under the user's
// home directory. The mapping follows the linker's naming convention:
// a "dot-" prefix on any path segment becomes a leading dot, so
// repo "dot-config/nvim/init.vim" pairs with "~/.config/nvim/init.vim".
//
// Deployment itself (creating the symlinks) is the linker's job; this
// package only pairs paths for the sync pass.
package discover

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/vcs"
)

// DotPrefix marks repository path segments that deploy as dotfiles
const DotPrefix = "dot-"

// Walker discovers candidates for one sync pass
type Walker struct {
	fs      types.FS
	paths   *paths.Paths
	repo    *vcs.Repository
	homeDir string
}

// NewWalker creates a Walker. homeDir is where deployed files live.
func NewWalker(fs types.FS, p *paths.Paths, repo *vcs.Repository, homeDir string) *Walker {
	return &Walker{fs: fs, paths: p, repo: repo, homeDir: homeDir}
}

// MapRepoToLocal translates a repo-relative path to its deployed
// location under the home directory
func (w *Walker) MapRepoToLocal(relPath string) string {
	segments := strings.Split(filepath.ToSlash(relPath), "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, DotPrefix) {
			segments[i] = "." + strings.TrimPrefix(seg, DotPrefix)
		}
	}
	return filepath.Join(append([]string{w.homeDir}, segments...)...)
}

// Candidates walks the repository and returns the pairs eligible for
// synchronization. Pairs whose deployed path is missing or is a symlink
// (already linked by the linker, nothing to sync) are skipped.
func (w *Walker) Candidates() ([]types.SyncCandidate, error) {
	logger := logging.GetLogger("discover")

	var candidates []types.SyncCandidate
	root := w.paths.RepoRoot()

	err := w.walk(root, func(repoPath string) {
		rel, relErr := w.paths.RelToRepo(repoPath)
		if relErr != nil {
			return
		}
		if skipRepoFile(rel) {
			return
		}

		local := w.MapRepoToLocal(rel)
		info, lstatErr := w.fs.Lstat(local)
		if lstatErr != nil {
			logger.Trace().Str("local", local).Msg("No deployed counterpart")
			return
		}
		if info.Mode()&os.ModeSymlink != 0 {
			logger.Trace().Str("local", local).Msg("Deployed as symlink; skipping")
			return
		}
		if !info.Mode().IsRegular() {
			return
		}

		candidates = append(candidates, types.SyncCandidate{
			LocalPath: local,
			RepoPath:  repoPath,
			IsTracked: w.repo.Tracked(rel),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("count", len(candidates)).Msg("Discovered sync candidates")
	return candidates, nil
}

// walk visits every regular file under dir, skipping version-control
// internals
func (w *Walker) walk(dir string, visit func(path string)) error {
	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read directory %s", dir)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if entry.Name() == ".git" {
				continue
			}
			if err := w.walk(path, visit); err != nil {
				return err
			}
			continue
		}
		visit(path)
	}
	return nil
}

// skipRepoFile filters repository files that are never sync candidates
func skipRepoFile(rel string) bool {
	base := filepath.Base(rel)
	if base == paths.RepoConfigFile {
		return true
	}
	if strings.HasSuffix(base, paths.ConflictSuffix) {
		return true
	}
	return false
}
