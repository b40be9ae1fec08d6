package mark

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/versio-release/versio/internal/errs"
)

// scanXML locates a dotted element chain's terminal text node, recovering
// its byte offset from xml.Decoder's InputOffset around the CharData token.
// The pack's only XML-adjacent dependency is an xpath library over an
// already-parsed tree; it has no notion of raw byte offsets into the
// source, which is the only thing this scanner actually needs, so the
// standard decoder's token stream is used instead.
func scanXML(data []byte, path string) (Mark, error) {
	segments := strings.Split(path, ".")
	dec := xml.NewDecoder(bytes.NewReader(data))

	var stack []string
	for {
		before := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Mark{}, fmt.Errorf("parsing xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if !pathMatches(stack, segments) {
				continue
			}
			after := int(dec.InputOffset())
			raw := data[before:after]
			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) == 0 {
				continue
			}
			leading := bytes.Index(raw, trimmed)
			return Mark{ByteOffset: before + leading, Value: string(trimmed)}, nil
		}
	}

	return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("xml path %q not found", strings.Join(segments, ".")))
}

func pathMatches(stack, segments []string) bool {
	if len(stack) != len(segments) {
		return false
	}
	for i := range segments {
		if stack[i] != segments[i] {
			return false
		}
	}
	return true
}
