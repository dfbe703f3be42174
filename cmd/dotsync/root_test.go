package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/paths"
)

func TestVersionCmd(t *testing.T) {
	rootCmd := NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, out.String(), "dotsync")
}

func TestGenConfigCmd(t *testing.T) {
	repoRoot := t.TempDir()
	t.Setenv(paths.EnvStateDir, t.TempDir())

	rootCmd := NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"genconfig", "--repo", repoRoot})

	err := rootCmd.Execute()

	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(repoRoot, paths.RepoConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[sync]")
	assert.Contains(t, string(content), "merge_tools")
}

func TestGenConfigCmdRefusesToOverwrite(t *testing.T) {
	repoRoot := t.TempDir()
	t.Setenv(paths.EnvStateDir, t.TempDir())

	existing := filepath.Join(repoRoot, paths.RepoConfigFile)
	require.NoError(t, os.WriteFile(existing, []byte("# mine\n"), 0644))

	rootCmd := NewRootCmd()
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"genconfig", "--repo", repoRoot})

	err := rootCmd.Execute()

	require.Error(t, err)
	content, readErr := os.ReadFile(existing)
	require.NoError(t, readErr)
	assert.Equal(t, "# mine\n", string(content), "existing config must not be touched")
}

func TestSyncCmdDryRunOnEmptyRepo(t *testing.T) {
	repoRoot := t.TempDir()
	t.Setenv(paths.EnvStateDir, t.TempDir())
	t.Setenv(paths.EnvRepoRoot, repoRoot)

	rootCmd := NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"sync", "--dry-run", "--overwrite"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, out.String(), "nothing to do")
}
