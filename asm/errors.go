package asm

import "fmt"

// Kind classifies an assembly error, matching the categories
// original_source/src/source/err.rs distinguishes (IoError,
// UnknownDirective, InvalidOperand, DoubleEntry, UndefinedLabel,
// DuplicateLabel) plus Other for anything that doesn't fit.
type Kind int

const (
	Other Kind = iota
	IoError
	UnknownDirective
	InvalidOperand
	DoubleEntry
	UndefinedLabel
	DuplicateLabel
)

func (k Kind) String() string {
	switch k {
	case IoError:
		return "io-error"
	case UnknownDirective:
		return "unknown-directive"
	case InvalidOperand:
		return "invalid-operand"
	case DoubleEntry:
		return "double-entry"
	case UndefinedLabel:
		return "undefined-label"
	case DuplicateLabel:
		return "duplicate-label"
	default:
		return "other"
	}
}

// Error is one assembly failure, anchored to the source file and line it
// came from (spec.md §6: "every assembly error is line-anchored").
type Error struct {
	Source string
	Line   int
	Kind   Kind
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", e.Source, e.Line, e.Kind, e.Msg)
}

// UndefinedLabelError chains every use site of a label that was never
// defined, mirroring source.rs's process() building a linked chain of
// "label was never defined, but used here" errors across all reference
// sites before reporting failure.
type UndefinedLabelError struct {
	Label string
	Uses  []*Error
}

func (e *UndefinedLabelError) Error() string {
	msg := fmt.Sprintf("label %q was never defined, used at:", e.Label)
	for _, u := range e.Uses {
		msg += "\n  " + u.Error()
	}
	return msg
}

func (e *UndefinedLabelError) Unwrap() []error {
	errs := make([]error, len(e.Uses))
	for i, u := range e.Uses {
		errs[i] = u
	}
	return errs
}
