// Package compare provides content comparison between a deployed file and
// its repository source: a byte-exact equality check that drives control
// flow, and a unified-diff renderer used for display only.
package compare

import (
	"bytes"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Equal performs a byte-exact comparison of two files. Line-based
// normalization is deliberately absent: trailing whitespace or encoding
// differences must never be silently ignored.
func Equal(fs types.FS, pathA, pathB string) (bool, error) {
	a, err := fs.ReadFile(pathA)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", pathA)
	}
	b, err := fs.ReadFile(pathB)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", pathB)
	}
	return bytes.Equal(a, b), nil
}

// Compare reports the relationship between two files
func Compare(fs types.FS, pathA, pathB string) (types.ComparisonResult, error) {
	same, err := Equal(fs, pathA, pathB)
	if err != nil {
		return types.Diverged, err
	}
	if same {
		return types.Identical, nil
	}
	return types.Diverged, nil
}

// Diff renders a unified diff between two files with the supplied labels.
// Display only: it never affects control flow and never fails the sync.
// Any internal error yields an empty string.
func Diff(fs types.FS, pathA, pathB, labelA, labelB string) string {
	logger := logging.GetLogger("compare")

	a, err := fs.ReadFile(pathA)
	if err != nil {
		logger.Debug().Err(err).Str("path", pathA).Msg("Diff source unreadable")
		return ""
	}
	b, err := fs.ReadFile(pathB)
	if err != nil {
		logger.Debug().Err(err).Str("path", pathB).Msg("Diff source unreadable")
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: labelA,
		ToFile:   labelB,
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		logger.Debug().Err(err).Msg("Diff rendering failed")
		return ""
	}
	return text
}
