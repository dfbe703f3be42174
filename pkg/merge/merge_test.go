package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/merge"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// fakeRunner simulates the merge tool without one being installed
type fakeRunner struct {
	available map[string]bool
	stdout    []byte
	exitCode  int
	runErr    error

	lastName string
	lastArgs []string
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.available[name] {
		return "/usr/bin/" + name, nil
	}
	return "", assert.AnError
}

func (f *fakeRunner) Output(name string, args ...string) ([]byte, int, error) {
	f.lastName = name
	f.lastArgs = args
	return f.stdout, f.exitCode, f.runErr
}

func newEngine(t *testing.T, runner *fakeRunner, preference []string) *merge.Engine {
	t.Helper()
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/tmp/session", 0755))
	registry := merge.ResolveTools(runner, preference)
	return merge.NewEngine(fs, runner, registry, "/tmp/session")
}

func TestResolveToolsPreference(t *testing.T) {
	runner := &fakeRunner{available: map[string]bool{"diff3": true, "git": true}}

	reg := merge.ResolveTools(runner, nil)
	assert.True(t, reg.HasMergeTool())
	assert.Equal(t, "git", reg.MergeToolName())

	reg = merge.ResolveTools(runner, []string{"diff3", "git"})
	assert.Equal(t, "diff3", reg.MergeToolName())
}

func TestResolveToolsNoneAvailable(t *testing.T) {
	runner := &fakeRunner{available: map[string]bool{}}
	reg := merge.ResolveTools(runner, nil)
	assert.False(t, reg.HasMergeTool())
}

func TestResolveToolsSkipsUnknownNames(t *testing.T) {
	runner := &fakeRunner{available: map[string]bool{"git": true}}
	reg := merge.ResolveTools(runner, []string{"meld", "git"})
	assert.Equal(t, "git", reg.MergeToolName())
}

func TestMergeToolUnavailable(t *testing.T) {
	runner := &fakeRunner{available: map[string]bool{}}
	engine := newEngine(t, runner, nil)

	_, err := engine.Merge("/home/u/.bashrc", []byte("base\n"), "/repo/dot-bashrc")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrToolUnavailable))
}

func TestMergeClean(t *testing.T) {
	runner := &fakeRunner{
		available: map[string]bool{"diff3": true},
		stdout:    []byte("line one\nline two\nline three\n"),
	}
	engine := newEngine(t, runner, nil)

	outcome, err := engine.Merge("/home/u/.bashrc", []byte("line one\n"), "/repo/dot-bashrc")
	require.NoError(t, err)

	assert.Equal(t, types.MergeClean, outcome.Status)
	assert.Equal(t, runner.stdout, outcome.Content)

	// local, ancestor, repo in that order
	assert.Equal(t, "diff3", runner.lastName)
	require.Len(t, runner.lastArgs, 4)
	assert.Equal(t, "-m", runner.lastArgs[0])
	assert.Equal(t, "/home/u/.bashrc", runner.lastArgs[1])
	assert.Equal(t, "/repo/dot-bashrc", runner.lastArgs[3])
}

func TestMergeConflict(t *testing.T) {
	conflicted := "line one\n<<<<<<< /home/u/.bashrc\nlocal\n=======\nrepo\n>>>>>>> /repo/dot-bashrc\n"
	runner := &fakeRunner{
		available: map[string]bool{"diff3": true},
		stdout:    []byte(conflicted),
		exitCode:  1,
	}
	engine := newEngine(t, runner, nil)

	outcome, err := engine.Merge("/home/u/.bashrc", []byte("base\n"), "/repo/dot-bashrc")
	require.NoError(t, err)
	assert.Equal(t, types.MergeConflict, outcome.Status)
	assert.Equal(t, []byte(conflicted), outcome.Content)
}

func TestMergeMarkerMidLineIsNotConflict(t *testing.T) {
	runner := &fakeRunner{
		available: map[string]bool{"diff3": true},
		stdout:    []byte("documenting the <<<<<<< marker convention\n"),
	}
	engine := newEngine(t, runner, nil)

	outcome, err := engine.Merge("/a", []byte{}, "/b")
	require.NoError(t, err)
	assert.Equal(t, types.MergeClean, outcome.Status)
}

func TestMergeToolFailure(t *testing.T) {
	runner := &fakeRunner{
		available: map[string]bool{"diff3": true},
		exitCode:  2,
	}
	engine := newEngine(t, runner, nil)

	_, err := engine.Merge("/a", []byte{}, "/b")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMergeExecute))
}

func TestMergeEmptyOutputCleanExit(t *testing.T) {
	// Merging empty files legitimately yields empty output
	runner := &fakeRunner{
		available: map[string]bool{"git": true},
		stdout:    []byte{},
	}
	engine := newEngine(t, runner, []string{"git"})

	outcome, err := engine.Merge("/a", []byte{}, "/b")
	require.NoError(t, err)
	assert.Equal(t, types.MergeClean, outcome.Status)
	assert.Empty(t, outcome.Content)
}
