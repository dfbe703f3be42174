// Package classify decides whether a sync candidate is text or binary.
//
// Classification drives the whole pass: binary files are never diffed or
// merged. The decision uses the platform MIME tables first and a fixed
// extension table as fallback; unknown types default to text so that
// unrecognized configuration formats still get a merge attempt rather
// than being silently skipped.
package classify

import (
	"bytes"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// application/* subtypes that are structured text despite the prefix
var textApplicationTypes = map[string]bool{
	"application/json":         true,
	"application/xml":          true,
	"application/javascript":   true,
	"application/x-sh":         true,
	"application/x-shellscript": true,
	"application/toml":         true,
	"application/yaml":         true,
	"application/x-yaml":       true,
}

// Fallback suffix table used when the MIME tables have no answer.
// Image, archive, executable and compiled-object formats.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".o": true, ".a": true, ".pyc": true, ".class": true, ".wasm": true,
	".pdf": true, ".db": true, ".sqlite": true,
}

// sniffLen bounds how much of a file content sniffing inspects
const sniffLen = 8000

// Classifier computes and caches per-path classifications for one pass
type Classifier struct {
	fs    types.FS
	extra map[string]bool
	cache map[string]types.Classification
}

// New creates a Classifier. extraBinary adds repository-configured
// extensions (with leading dot) to the fallback table.
func New(fs types.FS, extraBinary []string) *Classifier {
	extra := make(map[string]bool, len(extraBinary))
	for _, ext := range extraBinary {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extra[strings.ToLower(ext)] = true
	}
	return &Classifier{
		fs:    fs,
		extra: extra,
		cache: make(map[string]types.Classification),
	}
}

// Classify determines whether the file at path is text or binary.
// Returns ErrNotFound when the path does not exist. Results are cached
// for the lifetime of the Classifier.
func (c *Classifier) Classify(path string) (types.Classification, error) {
	if cached, ok := c.cache[path]; ok {
		return cached, nil
	}

	if _, err := c.fs.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return types.ClassText, errors.Wrapf(err, errors.ErrNotFound,
				"cannot classify %s", path)
		}
		return types.ClassText, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot classify %s", path)
	}

	result := c.classifyByType(path)
	c.cache[path] = result

	logger := logging.GetLogger("classify")
	logger.Trace().Str("path", path).Stringer("class", result).Msg("Classified file")
	return result, nil
}

func (c *Classifier) classifyByType(path string) types.Classification {
	ext := strings.ToLower(filepath.Ext(path))
	if c.extra[ext] {
		return types.ClassBinary
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		// MIME tables have no answer; fall back to the suffix table,
		// then to content sniffing (dotfiles rarely carry extensions)
		if binaryExtensions[ext] {
			return types.ClassBinary
		}
		return c.classifyByContent(path)
	}

	// Strip parameters like "; charset=utf-8"
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return types.ClassText
	case textApplicationTypes[mimeType]:
		return types.ClassText
	case strings.HasPrefix(mimeType, "image/"),
		strings.HasPrefix(mimeType, "video/"),
		strings.HasPrefix(mimeType, "audio/"),
		mimeType == "application/octet-stream",
		strings.HasPrefix(mimeType, "application/"):
		return types.ClassBinary
	default:
		// Unknown types default to text: attempting a merge beats
		// silently skipping an unrecognized configuration format
		return types.ClassText
	}
}

// classifyByContent sniffs the leading bytes. A NUL byte in the first
// 8000 bytes marks the file binary, the same heuristic git uses.
// Unreadable files classify as text; the read error resurfaces with
// context during comparison.
func (c *Classifier) classifyByContent(path string) types.Classification {
	content, err := c.fs.ReadFile(path)
	if err != nil {
		return types.ClassText
	}
	if len(content) > sniffLen {
		content = content[:sniffLen]
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return types.ClassBinary
	}
	return types.ClassText
}
