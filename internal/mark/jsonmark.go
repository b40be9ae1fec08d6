package mark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/versio-release/versio/internal/errs"
)

// scanJSON locates a dotted key chain's terminal string value, recovering
// its byte offset via json.Decoder's token-stream InputOffset rather than
// re-encoding the document: no third-party JSON library in the retrieval
// pack exposes raw byte positions for a decoded token any better than the
// standard decoder already does.
func scanJSON(data []byte, path string) (Mark, error) {
	segments := strings.Split(path, ".")
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return Mark{}, fmt.Errorf("parsing json: %w", err)
	}
	if tok != json.Delim('{') {
		return Mark{}, fmt.Errorf("json mark file does not start with an object")
	}

	return scanJSONObject(dec, data, segments, 0)
}

func scanJSONObject(dec *json.Decoder, data []byte, segments []string, depth int) (Mark, error) {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Mark{}, fmt.Errorf("parsing json: %w", err)
		}
		key, _ := keyTok.(string)

		beforeVal := int(dec.InputOffset())
		valTok, err := dec.Token()
		if err != nil {
			return Mark{}, fmt.Errorf("parsing json: %w", err)
		}

		if key != segments[depth] {
			if err := skipJSONValue(dec, valTok); err != nil {
				return Mark{}, fmt.Errorf("parsing json: %w", err)
			}
			continue
		}

		if depth == len(segments)-1 {
			s, ok := valTok.(string)
			if !ok {
				return Mark{}, fmt.Errorf("json path %q does not resolve to a string", strings.Join(segments, "."))
			}
			afterVal := int(dec.InputOffset())
			start, end, ok := findQuotedSpan(data[beforeVal:afterVal])
			if !ok {
				return Mark{}, fmt.Errorf("json path %q: could not locate raw string span", strings.Join(segments, "."))
			}
			raw := string(data[beforeVal+start+1 : beforeVal+end])
			if raw != s {
				return Mark{}, fmt.Errorf("json value at %q contains escape sequences; byte-exact rewrite unsupported", strings.Join(segments, "."))
			}
			return Mark{ByteOffset: beforeVal + start + 1, Value: raw}, nil
		}

		if valTok != json.Delim('{') {
			return Mark{}, fmt.Errorf("json path %q: %q is not an object", strings.Join(segments, "."), segments[depth])
		}
		return scanJSONObject(dec, data, segments, depth+1)
	}

	// Consume the matching closing delimiter before returning to the caller.
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return Mark{}, fmt.Errorf("parsing json: %w", err)
	}
	return Mark{}, errs.Wrap(errs.ErrScannerNotFound, fmt.Errorf("json path %q not found", strings.Join(segments, ".")))
}

func skipJSONValue(dec *json.Decoder, start json.Token) error {
	depth := 0
	switch start {
	case json.Delim('{'), json.Delim('['):
		depth = 1
	default:
		return nil
	}
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
	return nil
}

// findQuotedSpan returns the indices of the first quoted string in b: start
// is the index of the opening quote, end the index of the closing quote.
func findQuotedSpan(b []byte) (start, end int, ok bool) {
	start = bytes.IndexByte(b, '"')
	if start < 0 {
		return 0, 0, false
	}
	i := start + 1
	for i < len(b) {
		switch b[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return start, i, true
		}
		i++
	}
	return 0, 0, false
}
