package mark

import (
	"fmt"
	"regexp"

	"github.com/versio-release/versio/internal/errs"
)

// scanPattern locates a version string in an arbitrary text file (a
// Dockerfile, a Makefile, a plain VERSION file) using a regular expression
// supplied by the project's config with exactly one capturing group around
// the value to track.
func scanPattern(data []byte, pattern string) (Mark, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Mark{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() < 1 {
		return Mark{}, fmt.Errorf("pattern %q has no capturing group around the version", pattern)
	}

	loc := re.FindSubmatchIndex(data)
	if loc == nil || loc[2] < 0 {
		return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("pattern %q matched nothing", pattern))
	}
	return Mark{ByteOffset: loc[2], Value: string(data[loc[2]:loc[3]])}, nil
}
