package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/classify"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/types"
)

func writeFile(t *testing.T, fs types.FS, path string) {
	t.Helper()
	require.NoError(t, fs.WriteFile(path, []byte("content"), 0644))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		path string
		want types.Classification
	}{
		{"plain_text", "/repo/notes.txt", types.ClassText},
		{"json_is_text", "/repo/settings.json", types.ClassText},
		{"xml_is_text", "/repo/layout.xml", types.ClassText},
		{"no_extension_defaults_to_text", "/repo/dot-bashrc", types.ClassText},
		{"unknown_extension_defaults_to_text", "/repo/app.conf", types.ClassText},
		{"png_is_binary", "/repo/wallpaper.png", types.ClassBinary},
		{"archive_is_binary", "/repo/fonts.zip", types.ClassBinary},
		{"shared_object_is_binary", "/repo/plugin.so", types.ClassBinary},
		{"pdf_is_binary", "/repo/manual.pdf", types.ClassBinary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMemory()
			writeFile(t, fs, tt.path)

			c := classify.New(fs, nil)
			got, err := c.Classify(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifySniffsExtensionlessContent(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile("/repo/dot-gpgcache",
		[]byte{0x7f, 'E', 'L', 'F', 0x00, 0x01, 0x02}, 0644))

	c := classify.New(fs, nil)
	got, err := c.Classify("/repo/dot-gpgcache")
	require.NoError(t, err)
	assert.Equal(t, types.ClassBinary, got)
}

func TestClassifyMissingFile(t *testing.T) {
	fs := filesystem.NewMemory()
	c := classify.New(fs, nil)

	_, err := c.Classify("/repo/vanished")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestClassifyExtraBinaryExtensions(t *testing.T) {
	fs := filesystem.NewMemory()
	writeFile(t, fs, "/repo/state.dat")

	// Configured without and with the leading dot
	for _, ext := range []string{".dat", "dat"} {
		c := classify.New(fs, []string{ext})
		got, err := c.Classify("/repo/state.dat")
		require.NoError(t, err)
		assert.Equal(t, types.ClassBinary, got)
	}
}

func TestClassifyCaches(t *testing.T) {
	fs := filesystem.NewMemory()
	writeFile(t, fs, "/repo/notes.txt")

	c := classify.New(fs, nil)
	first, err := c.Classify("/repo/notes.txt")
	require.NoError(t, err)

	// Removing the file must not change the cached answer
	require.NoError(t, fs.Remove("/repo/notes.txt"))
	second, err := c.Classify("/repo/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
