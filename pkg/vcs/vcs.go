// Package vcs answers two questions about the dotfiles repository: is a
// path tracked at HEAD, and what content did it have there. Both degrade
// gracefully - a missing repository, an unborn HEAD, or an untracked path
// all resolve to "no history", never to a failed sync.
package vcs

import (
	"io"
	"path/filepath"

	gitc "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/arthur-debert/dotsync/pkg/logging"
)

// Repository wraps the version-control view of the dotfiles repo.
// The tracked-path set is loaded once at construction; lookups after
// that are pure map reads.
type Repository struct {
	repo    *gitc.Repository
	tree    *object.Tree
	tracked map[string]bool
}

// Open attempts to open the repository enclosing dir. A directory that is
// not under version control yields a usable Repository that reports every
// path as untracked.
func Open(dir string) *Repository {
	logger := logging.GetLogger("vcs")

	r := &Repository{tracked: make(map[string]bool)}

	repo, err := gitc.PlainOpenWithOptions(dir, &gitc.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		logger.Debug().Err(err).Str("dir", dir).Msg("No version control; all paths untracked")
		return r
	}
	r.repo = repo

	head, err := repo.Head()
	if err != nil {
		// Unborn HEAD: a fresh repository with no commits yet
		logger.Debug().Err(err).Msg("No HEAD revision; all paths untracked")
		return r
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot read HEAD commit; all paths untracked")
		return r
	}

	tree, err := commit.Tree()
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot read HEAD tree; all paths untracked")
		return r
	}
	r.tree = tree

	// One batch scan instead of per-path queries during the pass
	files := tree.Files()
	defer files.Close()
	for {
		f, err := files.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn().Err(err).Msg("HEAD tree scan aborted")
			break
		}
		r.tracked[filepath.ToSlash(f.Name)] = true
	}

	logger.Debug().Int("tracked", len(r.tracked)).Msg("Loaded tracked paths at HEAD")
	return r
}

// Available reports whether a version-control repository was found
func (r *Repository) Available() bool {
	return r.repo != nil
}

// Tracked reports whether the repo-relative path has history at HEAD
func (r *Repository) Tracked(relPath string) bool {
	return r.tracked[filepath.ToSlash(relPath)]
}

// ResolveAncestor returns the content of relPath as of HEAD for use as a
// three-way merge base. Untracked paths, renamed paths, and retrieval
// failures all yield an empty ancestor: the local version then merges as
// if it introduces all content as a fresh addition.
func (r *Repository) ResolveAncestor(relPath string) []byte {
	logger := logging.GetLogger("vcs")

	rel := filepath.ToSlash(relPath)
	if r.tree == nil || !r.tracked[rel] {
		return []byte{}
	}

	f, err := r.tree.File(rel)
	if err != nil {
		logger.Debug().Err(err).Str("path", rel).Msg("Path absent from HEAD tree; empty ancestor")
		return []byte{}
	}

	content, err := f.Contents()
	if err != nil {
		logger.Warn().Err(err).Str("path", rel).Msg("Cannot read blob at HEAD; empty ancestor")
		return []byte{}
	}
	return []byte(content)
}
