package unildd

import (
	"github.com/simonhull/unildd/internal/types"
)

// Code classifies a parse failure. See the Code* constants.
type Code = types.Code

// Error codes carried by ParsingError. Positive codes are the raw magic
// of an unrecognized buffer.
const (
	CodeOK            = types.CodeOK
	CodeCorrupt       = types.CodeCorrupt
	CodeBadMagic      = types.CodeBadMagic
	CodeDecode        = types.CodeDecode
	CodeIO            = types.CodeIO
	CodeTooShort      = types.CodeTooShort
	CodeOther         = types.CodeOther
	CodeUnimplemented = types.CodeUnimplemented
)

// ParsingError is the structured error attached to a failed Outcome.
type ParsingError = types.ParsingError

// Typed errors produced while parsing. They are reported through
// ParsingError and can be classified with CodeOf.
type (
	OutOfBoundsError       = types.OutOfBoundsError
	UnknownMagicError      = types.UnknownMagicError
	UnsupportedFormatError = types.UnsupportedFormatError
	BadMagicError          = types.BadMagicError
	CorruptedFileError     = types.CorruptedFileError
	DecodeError            = types.DecodeError
	ExtractError           = types.ExtractError
	PanicError             = types.PanicError
)

// Errors returned by Read when its preconditions fail.
var (
	ErrInvalidName = types.ErrInvalidName
	ErrEmptyBuffer = types.ErrEmptyBuffer
)

// ErrDepthExceeded is reported for objects nested deeper than the limit
// set with WithMaxDepth.
var ErrDepthExceeded = types.ErrDepthExceeded

// CodeOf maps err to the error taxonomy. Unrecognized errors map to
// CodeOther.
func CodeOf(err error) Code {
	return types.CodeOf(err)
}
