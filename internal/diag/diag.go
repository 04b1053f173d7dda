// Package diag carries the soft diagnostics the rewriter and codec report:
// UnknownToken, UnmatchedContext, ProbabilityWarning, FlatRecordError.
// Neither reports directly by printing; they call into a Sink.
package diag

import "fmt"

// Level is the severity of a diagnostic.
type Level int

const (
	Info Level = iota
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Code names the soft-error kind a diagnostic reports.
type Code string

const (
	CodeUnknownToken     Code = "UNKNOWN_TOKEN"
	CodeUnmatchedContext Code = "UNMATCHED_CONTEXT"
	CodeProbabilityWarn  Code = "PROBABILITY_WARNING"
	CodeFlatRecordError  Code = "FLAT_RECORD_ERROR"
)

// Entry is one diagnostic event.
type Entry struct {
	Level Level
	Code  Code
	Msg   string
}

// Sink receives diagnostics. Core packages are pure otherwise; all
// observability goes through this interface so tests can assert on exactly
// which diagnostics fired without scraping stderr.
type Sink interface {
	Emit(Entry)
}

// Noop discards every diagnostic. It is the default when a caller passes a
// nil Sink to a core package.
type Noop struct{}

func (Noop) Emit(Entry) {}

// Or returns s if non-nil, else Noop{}. Core packages should call
// diag.Or(s) once at construction rather than nil-checking on every Emit.
func Or(s Sink) Sink {
	if s == nil {
		return Noop{}
	}
	return s
}

// Collector accumulates every diagnostic it receives, in order, for test
// assertions (used with require/assert in place of scraping log output).
type Collector struct {
	Entries []Entry
}

func (c *Collector) Emit(e Entry) {
	c.Entries = append(c.Entries, e)
}

// Has reports whether any collected entry has the given code.
func (c *Collector) Has(code Code) bool {
	for _, e := range c.Entries {
		if e.Code == code {
			return true
		}
	}
	return false
}

// StderrSink writes each diagnostic to the given writer (typically
// os.Stderr), formatted as "LEVEL CODE: message".
type StderrSink struct {
	Write func(string)
}

func (s StderrSink) Emit(e Entry) {
	if s.Write == nil {
		return
	}
	s.Write(fmt.Sprintf("%s %s: %s\n", e.Level, e.Code, e.Msg))
}
