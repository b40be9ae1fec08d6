// Package ghlog emits GitHub Actions workflow commands: leveled annotations
// (::debug::, ::notice::, ::warning::, ::error::) with the data escaping and
// title property the Actions runner expects, plus collapsible ::group::
// sections for fanning several checks into one job log.
package ghlog

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger writes workflow-command log lines, optionally carrying the name of
// the check producing them as the annotation title.
type Logger struct {
	name string
	out  io.Writer
}

// New returns an untitled logger writing to stdout, where the Actions
// runner scans for workflow commands.
func New() *Logger {
	return &Logger{out: os.Stdout}
}

// For returns a logger whose notice/warning/error annotations carry name as
// their title, so several checks sharing one job log stay apart in the
// annotations panel.
func For(name string) *Logger {
	return &Logger{name: name, out: os.Stdout}
}

// escape applies the workflow-command data encoding: %, CR and LF must be
// percent-coded or the runner truncates the message at the first newline.
var escape = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace

// escapeProperty additionally codes the property delimiters.
var escapeProperty = strings.NewReplacer(
	"%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C",
).Replace

func (l *Logger) annotate(cmd, msg string) {
	if l.name != "" {
		fmt.Fprintf(l.out, "::%s title=%s::%s\n", cmd, escapeProperty(l.name), escape(msg))
		return
	}
	fmt.Fprintf(l.out, "::%s::%s\n", cmd, escape(msg))
}

func (l *Logger) named(msg string) string {
	if l.name != "" {
		return l.name + ": " + msg
	}
	return msg
}

// Debugf logs a line visible only when the workflow runs with step
// debugging enabled. ::debug:: takes no properties, so the check name goes
// into the message itself.
func (l *Logger) Debugf(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "::debug::%s\n", escape(l.named(fmt.Sprintf(format, args...))))
}

// Infof logs a plain line with no workflow command attached.
func (l *Logger) Infof(format string, args ...interface{}) {
	fmt.Fprintln(l.out, l.named(fmt.Sprintf(format, args...)))
}

// Noticef raises a notice annotation on the run.
func (l *Logger) Noticef(format string, args ...interface{}) {
	l.annotate("notice", fmt.Sprintf(format, args...))
}

// Warningf raises a warning annotation on the run.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.annotate("warning", fmt.Sprintf(format, args...))
}

// Errorf raises an error annotation on the run.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.annotate("error", fmt.Sprintf(format, args...))
}

// Fatalf raises an error annotation and exits the job with code.
func (l *Logger) Fatalf(code int, format string, args ...interface{}) {
	l.Errorf(format, args...)
	os.Exit(code)
}

// Group opens a collapsible section in the job log and returns the closer
// that ends it.
func (l *Logger) Group(title string) func() {
	fmt.Fprintf(l.out, "::group::%s\n", escape(l.named(title)))
	return func() { fmt.Fprintln(l.out, "::endgroup::") }
}
