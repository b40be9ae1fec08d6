package mark

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/versio-release/versio/internal/errs"
)

// scanYAML locates a dotted key chain's terminal scalar value by decoding
// into a yaml.Node tree and converting the matched node's 1-based Line/
// Column back into a byte offset, rather than re-serializing the document.
func scanYAML(data []byte, path string) (Mark, error) {
	segments := strings.Split(path, ".")

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Mark{}, fmt.Errorf("parsing yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("empty yaml document"))
	}

	node := root.Content[0]
	for _, seg := range segments {
		if node.Kind != yaml.MappingNode {
			return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("yaml path %q: %q is not a mapping", path, seg))
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == seg {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("yaml path %q: no key %q", path, seg))
		}
		node = next
	}

	if node.Kind != yaml.ScalarNode {
		return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("yaml path %q does not resolve to a scalar", path))
	}

	offset, err := lineColToOffset(data, node.Line, node.Column)
	if err != nil {
		return Mark{}, err
	}
	if node.Style == yaml.DoubleQuotedStyle || node.Style == yaml.SingleQuotedStyle {
		offset++
	}

	return Mark{ByteOffset: offset, Value: node.Value}, nil
}

// lineColToOffset converts yaml.Node's 1-based line/column into a byte
// offset into data.
func lineColToOffset(data []byte, line, col int) (int, error) {
	if line < 1 || col < 1 {
		return 0, fmt.Errorf("invalid yaml node position %d:%d", line, col)
	}
	offset := 0
	for cur := 1; cur < line; cur++ {
		idx := bytes.IndexByte(data[offset:], '\n')
		if idx < 0 {
			return 0, fmt.Errorf("yaml node position %d:%d out of range", line, col)
		}
		offset += idx + 1
	}
	return offset + col - 1, nil
}
