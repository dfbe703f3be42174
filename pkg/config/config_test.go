package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Sync.BinaryExtensions)
	assert.Equal(t, []string{"git", "diff3"}, cfg.Sync.MergeTools)
	assert.Empty(t, cfg.Backup.Dir)
}

func TestLoadMissingRepoConfigUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), ".dotsync.toml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "diff3"}, cfg.Sync.MergeTools)
}

func TestLoadRepoOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".dotsync.toml")
	content := `
[sync]
binary_extensions = ["dat", "gpg"]
merge_tools = ["git"]

[backup]
dir = "/var/backups/dotsync"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"dat", "gpg"}, cfg.Sync.BinaryExtensions)
	assert.Equal(t, []string{"git"}, cfg.Sync.MergeTools)
	assert.Equal(t, "/var/backups/dotsync", cfg.Backup.Dir)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".dotsync.toml")
	require.NoError(t, os.WriteFile(path, []byte("[sync\nbroken"), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	out, err := config.Generate()
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "# dotsync repository configuration")
	assert.Contains(t, content, "[sync]")
	assert.Contains(t, content, "merge_tools")
	assert.Contains(t, content, "[backup]")
}
