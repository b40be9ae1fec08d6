// Package mark locates and rewrites the version string inside a project's
// mark file. Every format-specific scanner recovers a byte offset into the
// original file rather than re-serializing it, so a rewrite touches only the
// bytes the old value occupied and leaves comments, formatting, and
// unrelated content untouched.
package mark

import (
	"fmt"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/errs"
)

// Mark is a located version string: its byte offset into the file that
// held it, and its current decoded value.
type Mark struct {
	ByteOffset int
	Value      string
}

// Scan dispatches to the format-specific scanner named by locator.Format.
func Scan(data []byte, locator config.MarkLocator) (Mark, error) {
	switch locator.Format {
	case "json":
		return scanJSON(data, locator.Path)
	case "yaml":
		return scanYAML(data, locator.Path)
	case "toml":
		return scanTOML(data, locator.Path)
	case "xml":
		return scanXML(data, locator.Path)
	case "pattern":
		return scanPattern(data, locator.Path)
	default:
		return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("unrecognized mark format %q", locator.Format))
	}
}

// Rewrite returns a copy of data with the byte range [m.ByteOffset,
// m.ByteOffset+len(m.Value)) replaced by newValue. The old value's length
// determines the size of the cut, not the new value's, so the caller's Mark
// must describe the bytes actually present before the rewrite.
func Rewrite(data []byte, m Mark, newValue string) ([]byte, error) {
	end := m.ByteOffset + len(m.Value)
	if m.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("mark byte range [%d,%d) out of bounds for a %d-byte file", m.ByteOffset, end, len(data))
	}

	out := make([]byte, 0, len(data)-len(m.Value)+len(newValue))
	out = append(out, data[:m.ByteOffset]...)
	out = append(out, []byte(newValue)...)
	out = append(out, data[end:]...)
	return out, nil
}
