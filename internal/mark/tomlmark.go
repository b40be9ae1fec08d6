package mark

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/versio-release/versio/internal/errs"
)

// scanTOML locates a dotted key chain's terminal string value. go-toml/v2
// decodes the document first, purely to confirm the path resolves to a
// string before any text is touched; the byte offset itself comes from a
// surgical regex search scoped to the owning table's text block, since
// go-toml/v2's public API does not expose per-value source positions.
func scanTOML(data []byte, path string) (Mark, error) {
	segments := strings.Split(path, ".")

	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Mark{}, fmt.Errorf("parsing toml: %w", err)
	}
	if _, err := lookupTOMLString(doc, segments); err != nil {
		return Mark{}, err
	}

	base := 0
	region := data
	if len(segments) > 1 {
		table := strings.Join(segments[:len(segments)-1], ".")
		start, err := findTOMLTableHeader(data, table)
		if err != nil {
			return Mark{}, err
		}
		end := findNextTableHeader(data, start)
		base, region = start, data[start:end]
	} else {
		region = data[:findNextTableHeader(data, 0)]
	}

	key := segments[len(segments)-1]
	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(key) + `\s*=\s*"([^"]*)"`)
	loc := re.FindSubmatchIndex(region)
	if loc == nil {
		return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("toml path %q not found", path))
	}
	return Mark{ByteOffset: base + loc[2], Value: string(region[loc[2]:loc[3]])}, nil
}

func lookupTOMLString(doc map[string]interface{}, segments []string) (string, error) {
	var cur interface{} = doc
	for i, seg := range segments {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return "", errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("toml path %q: %q is not a table", strings.Join(segments, "."), strings.Join(segments[:i], ".")))
		}
		v, ok := m[seg]
		if !ok {
			return "", errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("toml path %q: no key %q", strings.Join(segments, "."), seg))
		}
		cur = v
	}
	s, ok := cur.(string)
	if !ok {
		return "", fmt.Errorf("toml path %q does not resolve to a string", strings.Join(segments, "."))
	}
	return s, nil
}

func findTOMLTableHeader(data []byte, table string) (int, error) {
	re := regexp.MustCompile(`(?m)^\[` + regexp.QuoteMeta(table) + `\]\s*\n`)
	loc := re.FindIndex(data)
	if loc == nil {
		return 0, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("toml table %q not found", table))
	}
	return loc[1], nil
}

func findNextTableHeader(data []byte, from int) int {
	re := regexp.MustCompile(`(?m)^\[`)
	loc := re.FindIndex(data[from:])
	if loc == nil {
		return len(data)
	}
	return from + loc[0]
}
