package syntax

import "fmt"

// Severity orders diagnostics from most to least serious.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Code identifies the class of a diagnostic.
type Code string

const (
	// LexError marks an unterminated literal, comment or fenced block.
	LexError Code = "LexError"
	// UnexpectedToken marks input no production accepts.
	UnexpectedToken Code = "UnexpectedToken"
	// UnbalancedBlock marks a brace or directive nesting mismatch.
	UnbalancedBlock Code = "UnbalancedBlock"
	// AmbiguousReference marks an oref segment resolved by tie-break. Advisory.
	AmbiguousReference Code = "AmbiguousReference"
	// UnknownName marks a $-prefixed name missing from the builtin tables.
	UnknownName Code = "UnknownName"
)

// Diagnostic is a problem found while parsing.
type Diagnostic struct {
	Span     Span
	Severity Severity
	Code     Code
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Span, d.Severity, d.Code, d.Message)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
