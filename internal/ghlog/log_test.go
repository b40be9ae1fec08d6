package ghlog

import (
	"bytes"
	"testing"
)

func capture(l *Logger) *bytes.Buffer {
	var buf bytes.Buffer
	l.out = &buf
	return &buf
}

func TestErrorfEscapesNewlinesIntoOneCommand(t *testing.T) {
	l := New()
	buf := capture(l)

	l.Errorf("first line\nsecond line")

	want := "::error::first line%0Asecond line\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestNamedLoggerTitlesItsAnnotations(t *testing.T) {
	l := For("PR Kind")
	buf := capture(l)

	l.Warningf("something looks off")

	want := "::warning title=PR Kind::something looks off\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestNamedLoggerEscapesPropertyDelimitersInItsTitle(t *testing.T) {
	l := For("a:b,c")
	buf := capture(l)

	l.Errorf("boom")

	want := "::error title=a%3Ab%2Cc::boom\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestDebugfCarriesTheNameInTheMessage(t *testing.T) {
	l := For("PR Kind")
	buf := capture(l)

	l.Debugf("probing %d things", 3)

	want := "::debug::PR Kind: probing 3 things\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestGroupBracketsItsSection(t *testing.T) {
	l := New()
	buf := capture(l)

	end := l.Group("checks")
	l.Infof("inside")
	end()

	want := "::group::checks\ninside\n::endgroup::\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
