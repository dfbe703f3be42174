package discover_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/discover"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/vcs"
)

func newWalker(t *testing.T) (*discover.Walker, string, string) {
	t.Helper()

	repo := t.TempDir()
	home := t.TempDir()
	t.Setenv(paths.EnvStateDir, t.TempDir())

	p, err := paths.New(repo)
	require.NoError(t, err)

	w := discover.NewWalker(filesystem.NewOS(), p, vcs.Open(repo), home)
	return w, repo, home
}

func TestMapRepoToLocal(t *testing.T) {
	w, _, home := newWalker(t)

	tests := []struct {
		rel  string
		want string
	}{
		{"dot-bashrc", filepath.Join(home, ".bashrc")},
		{"dot-config/nvim/init.vim", filepath.Join(home, ".config", "nvim", "init.vim")},
		{"bin/tidy", filepath.Join(home, "bin", "tidy")},
		{"shell/dot-profile", filepath.Join(home, "shell", ".profile")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, w.MapRepoToLocal(tt.rel), tt.rel)
	}
}

func TestCandidatesPairsDeployedFiles(t *testing.T) {
	w, repo, home := newWalker(t)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "dot-bashrc"), []byte("repo\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bashrc"), []byte("local\n"), 0644))

	// Repo file with no deployed counterpart: not a candidate
	require.NoError(t, os.WriteFile(filepath.Join(repo, "dot-zshrc"), []byte("repo\n"), 0644))

	candidates, err := w.Candidates()
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, filepath.Join(home, ".bashrc"), candidates[0].LocalPath)
	assert.Equal(t, filepath.Join(repo, "dot-bashrc"), candidates[0].RepoPath)
	assert.False(t, candidates[0].IsTracked)
}

func TestCandidatesSkipsSymlinkedDeployment(t *testing.T) {
	w, repo, home := newWalker(t)

	repoFile := filepath.Join(repo, "dot-vimrc")
	require.NoError(t, os.WriteFile(repoFile, []byte("set nu\n"), 0644))
	require.NoError(t, os.Symlink(repoFile, filepath.Join(home, ".vimrc")))

	candidates, err := w.Candidates()
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestCandidatesSkipsInternalFiles(t *testing.T) {
	w, repo, home := newWalker(t)

	require.NoError(t, os.WriteFile(filepath.Join(repo, ".dotsync.toml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "dot-bashrc.merge-conflict"), []byte(""), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git", "objects"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".git", "HEAD"), []byte("ref\n"), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(home, ".dotsync.toml"), []byte(""), 0644))

	candidates, err := w.Candidates()
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestCandidatesNestedDirectories(t *testing.T) {
	w, repo, home := newWalker(t)

	repoFile := filepath.Join(repo, "dot-config", "git", "config")
	require.NoError(t, os.MkdirAll(filepath.Dir(repoFile), 0755))
	require.NoError(t, os.WriteFile(repoFile, []byte("[user]\n"), 0644))

	localFile := filepath.Join(home, ".config", "git", "config")
	require.NoError(t, os.MkdirAll(filepath.Dir(localFile), 0755))
	require.NoError(t, os.WriteFile(localFile, []byte("[user]\n"), 0644))

	candidates, err := w.Candidates()
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, localFile, candidates[0].LocalPath)
}

func TestCandidatesUsesMemoryFS(t *testing.T) {
	repo := "/repo"
	home := "/home/u"
	t.Setenv(paths.EnvStateDir, "/state")

	p, err := paths.New(repo)
	require.NoError(t, err)

	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll(repo, 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(repo, "dot-bashrc"), []byte("a\n"), 0644))
	require.NoError(t, fs.WriteFile(filepath.Join(home, ".bashrc"), []byte("b\n"), 0644))

	w := discover.NewWalker(fs, p, vcs.Open(t.TempDir()), home)
	candidates, err := w.Candidates()
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}
