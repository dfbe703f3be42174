package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/arthur-debert/dotsync/pkg/compare"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Run executes one sync pass over the candidates from source.
// Candidates are processed sequentially; per-candidate failures are
// isolated and collected into the summary. Cancellation stops before the
// next candidate, preserving every journal entry recorded so far.
func (s *Session) Run(ctx context.Context, source types.CandidateSource) (*types.Summary, error) {
	logger := logging.GetLogger("sync.pass")

	candidates, err := source.Candidates()
	if err != nil {
		return nil, err
	}

	summary := &types.Summary{}
	for _, cand := range candidates {
		select {
		case <-ctx.Done():
			logger.Warn().
				Int("remaining", len(candidates)-len(summary.Results)).
				Msg("Pass interrupted; rollback script preserved")
			return summary, ctx.Err()
		default:
		}

		result := s.processCandidate(cand)
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case types.StatusMerged, types.StatusOverwritten:
			summary.Touched++
		case types.StatusConflicted:
			summary.Conflicts++
		case types.StatusFailed:
			summary.Failures++
		case types.StatusSkippedBinary, types.StatusSkippedMissing:
			summary.Skipped++
		}
	}

	if err := s.flushJournal(); err != nil {
		return summary, err
	}

	logger.Info().
		Int("candidates", len(candidates)).
		Int("touched", summary.Touched).
		Int("conflicts", summary.Conflicts).
		Int("failures", summary.Failures).
		Msg("Pass completed")
	return summary, nil
}

// processCandidate walks one candidate through the state machine:
// classified, compared, then (in merge mode) merged, and finally backed
// up and overwritten. The repository copy is only ever replaced after a
// durable backup exists and its restore is journaled.
func (s *Session) processCandidate(cand types.SyncCandidate) types.CandidateResult {
	logger := logging.GetLogger("sync.pass")
	result := types.CandidateResult{Candidate: cand}

	class, err := s.classifier.Classify(cand.LocalPath)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			logger.Warn().Str("path", cand.LocalPath).Msg("Candidate vanished; skipping")
			result.Status = types.StatusSkippedMissing
			return result
		}
		result.Status = types.StatusFailed
		result.Err = err
		return result
	}

	// Both sides must be text: a binary repository blob paired with a
	// text-classified local file is just as unmergeable
	repoClass, err := s.classifier.Classify(cand.RepoPath)
	if err != nil {
		result.Status = types.StatusFailed
		result.Err = err
		return result
	}

	if s.opts.Verbose {
		fmt.Fprintf(s.opts.Out, "%s: %s", cand.LocalPath, class)
	}

	if class == types.ClassBinary || repoClass == types.ClassBinary {
		if s.opts.Verbose {
			fmt.Fprintln(s.opts.Out, ", skipped")
		}
		result.Status = types.StatusSkippedBinary
		return result
	}

	comparison, err := compare.Compare(s.fs, cand.LocalPath, cand.RepoPath)
	if err != nil {
		if s.opts.Verbose {
			fmt.Fprintln(s.opts.Out)
		}
		result.Status = types.StatusFailed
		result.Err = err
		return result
	}

	if s.opts.Verbose {
		fmt.Fprintf(s.opts.Out, ", %s\n", comparison)
		if comparison == types.Diverged {
			diff := compare.Diff(s.fs, cand.RepoPath, cand.LocalPath, "repository", "local")
			fmt.Fprint(s.opts.Out, diff)
		}
	}

	if comparison == types.Identical {
		result.Status = types.StatusIdentical
		return result
	}

	if s.opts.Overwrite {
		return s.overwriteCandidate(cand)
	}
	return s.mergeCandidate(cand)
}

// overwriteCandidate replaces the repository copy with local content
func (s *Session) overwriteCandidate(cand types.SyncCandidate) types.CandidateResult {
	result := types.CandidateResult{Candidate: cand}

	content, err := s.fs.ReadFile(cand.LocalPath)
	if err != nil {
		result.Status = types.StatusFailed
		result.Err = errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", cand.LocalPath)
		return result
	}

	if err := s.commitContent(cand, content); err != nil {
		result.Status = types.StatusFailed
		result.Err = err
		return result
	}

	result.Status = types.StatusOverwritten
	return result
}

// mergeCandidate three-way merges local content onto the repository copy
func (s *Session) mergeCandidate(cand types.SyncCandidate) types.CandidateResult {
	logger := logging.GetLogger("sync.pass")
	result := types.CandidateResult{Candidate: cand}

	rel, err := s.paths.RelToRepo(cand.RepoPath)
	if err != nil {
		result.Status = types.StatusFailed
		result.Err = err
		return result
	}

	ancestor := s.repo.ResolveAncestor(rel)
	outcome, err := s.engine.Merge(cand.LocalPath, ancestor, cand.RepoPath)
	if err != nil {
		result.Status = types.StatusFailed
		result.Err = err
		return result
	}

	if outcome.Status == types.MergeConflict {
		result.Status = types.StatusConflicted
		result.SideFile = s.paths.ConflictSidePath(cand.RepoPath)
		if !s.opts.DryRun {
			if werr := s.fs.WriteFile(result.SideFile, outcome.Content, 0644); werr != nil {
				logger.Warn().Err(werr).Str("path", result.SideFile).
					Msg("Failed to write conflict side file")
			}
		}
		logger.Info().Str("repo", cand.RepoPath).Str("side_file", result.SideFile).
			Msg("Merge conflict; repository untouched")
		return result
	}

	// A clean merge that reproduces the current repository content means
	// every local change is already present; re-running a pass after a
	// clean merge lands here. No backup, journal entry, or write.
	if current, rerr := s.fs.ReadFile(cand.RepoPath); rerr == nil && bytes.Equal(current, outcome.Content) {
		logger.Debug().Str("repo", cand.RepoPath).Msg("Merge result already in repository")
		result.Status = types.StatusIdentical
		return result
	}

	if err := s.commitContent(cand, outcome.Content); err != nil {
		result.Status = types.StatusFailed
		result.Err = err
		return result
	}

	result.Status = types.StatusMerged
	return result
}

// commitContent performs the guarded overwrite of the repository copy:
// durable backup first, journaled restore second, write last. Dry runs
// stop before any of the three.
func (s *Session) commitContent(cand types.SyncCandidate, content []byte) error {
	if s.opts.DryRun {
		return nil
	}

	record, err := s.backups.Backup(cand.RepoPath)
	if err != nil {
		return err
	}

	s.jrnl.RecordRestore(record.BackupPath, cand.RepoPath)
	if err := s.flushJournal(); err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, statErr := s.fs.Stat(cand.RepoPath); statErr == nil {
		mode = info.Mode().Perm()
	}

	if err := s.fs.WriteFile(cand.RepoPath, content, mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", cand.RepoPath)
	}
	return nil
}
