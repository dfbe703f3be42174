// Package merge performs three-way merges between a deployed file, its
// version-control ancestor, and the repository copy, by driving an
// external diff3-semantics tool. Conflict detection is textual: any
// whole line beginning with the start-of-conflict marker means the
// result is not authoritative.
package merge

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// ConflictMarker is the start-of-conflict line prefix produced by
// diff3-compatible tools.
const ConflictMarker = "<<<<<<<"

// Engine runs three-way merges for one sync pass
type Engine struct {
	fs       types.FS
	runner   CommandRunner
	registry *ToolRegistry
	tempDir  string
	seq      int
}

// NewEngine creates a merge engine. tempDir must exist and is owned by
// the session; ancestor content is materialized there for the external
// tool to read.
func NewEngine(fs types.FS, runner CommandRunner, registry *ToolRegistry, tempDir string) *Engine {
	return &Engine{
		fs:       fs,
		runner:   runner,
		registry: registry,
		tempDir:  tempDir,
	}
}

// Merge performs a three-way merge of localPath (ours), the ancestor
// bytes (base), and repoPath (theirs). Returns ErrToolUnavailable when no
// merge tool was resolved; callers must not fall back to blind overwrite
// without explicit operator consent.
func (e *Engine) Merge(localPath string, ancestor []byte, repoPath string) (types.MergeOutcome, error) {
	logger := logging.GetLogger("merge")

	if !e.registry.HasMergeTool() {
		return types.MergeOutcome{}, errors.New(errors.ErrToolUnavailable, ToolRemedy)
	}

	ancestorPath, err := e.writeAncestor(ancestor, repoPath)
	if err != nil {
		return types.MergeOutcome{}, err
	}

	tool, args := e.registry.MergeCommand(localPath, ancestorPath, repoPath)
	stdout, exitCode, err := e.runner.Output(tool, args...)
	if err != nil {
		return types.MergeOutcome{}, errors.Wrapf(err, errors.ErrMergeExecute,
			"merge tool %s failed to run", tool)
	}
	if exitCode != 0 && len(stdout) == 0 {
		return types.MergeOutcome{}, errors.Newf(errors.ErrMergeExecute,
			"merge tool %s exited %d with no output", tool, exitCode)
	}

	outcome := types.MergeOutcome{
		Status:  detectStatus(stdout),
		Content: stdout,
	}

	logger.Debug().
		Str("local", localPath).
		Str("repo", repoPath).
		Stringer("status", outcome.Status).
		Msg("Merge completed")
	return outcome, nil
}

// writeAncestor materializes the ancestor bytes under the session temp
// dir so the external tool can read them
func (e *Engine) writeAncestor(content []byte, repoPath string) (string, error) {
	e.seq++
	name := fmt.Sprintf("%s.%d.base", filepath.Base(repoPath), e.seq)
	path := filepath.Join(e.tempDir, name)

	if err := e.fs.WriteFile(path, content, 0600); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite,
			"cannot write merge ancestor for %s", repoPath)
	}
	return path, nil
}

// detectStatus scans merged output for the start-of-conflict marker as a
// whole-line prefix. A substring occurrence elsewhere in a line does not
// count.
func detectStatus(merged []byte) types.MergeStatus {
	for _, line := range strings.Split(string(merged), "\n") {
		if strings.HasPrefix(line, ConflictMarker) {
			return types.MergeConflict
		}
	}
	return types.MergeClean
}
