package dsl

import "fmt"

// SyntaxError reports a line that is not a well-formed bracket record.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("syntax error on line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("syntax error on line %d: %q", e.Line, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// StructuralError reports unbalanced or nested group markers.
type StructuralError struct {
	Line   int
	Text   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error on line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// DuplicateIDError is reported by Document.Validate.
type DuplicateIDError struct {
	ID    string
	Line  int
	First int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("line %d: id %q already used on line %d", e.Line, e.ID, e.First)
}

// UnclosedGroupError is reported by Document.Validate when a hand-built
// document ends inside a group. Parse rejects such input outright.
type UnclosedGroupError struct {
	ID   string
	Line int
}

func (e *UnclosedGroupError) Error() string {
	return fmt.Sprintf("line %d: group %q is never closed", e.Line, e.ID)
}
