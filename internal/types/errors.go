package types

import (
	"errors"
	"fmt"
	"io"

	"github.com/simonhull/unildd/internal/binary"
)

// Code classifies a parse failure.
//
// Positive codes carry the raw magic number of an unrecognized container.
type Code int64

const (
	// CodeOK means no error.
	CodeOK Code = 0
	// CodeCorrupt means offsets or counts are inconsistent with the buffer.
	CodeCorrupt Code = -1
	// CodeBadMagic means the format family is unknown or unsupported.
	CodeBadMagic Code = -2
	// CodeDecode means a field could not be decoded.
	CodeDecode Code = -3
	// CodeIO means a sub-slice could not be read out of its container.
	CodeIO Code = -4
	// CodeTooShort means the buffer is too short for a claimed structure.
	CodeTooShort Code = -5
	// CodeOther is the catch-all.
	CodeOther Code = -6
	// CodeUnimplemented means the format is recognized but not supported.
	CodeUnimplemented Code = -7
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeCorrupt:
		return "corrupt"
	case CodeBadMagic:
		return "bad magic"
	case CodeDecode:
		return "decode failure"
	case CodeIO:
		return "read failure"
	case CodeTooShort:
		return "buffer too short"
	case CodeOther:
		return "other"
	case CodeUnimplemented:
		return "unimplemented format"
	}
	if c > 0 {
		return fmt.Sprintf("unknown magic 0x%08x", uint32(c))
	}
	return fmt.Sprintf("Code(%d)", int64(c))
}

// ParsingError is the structured error attached to an Outcome.
type ParsingError struct {
	Code    Code   `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (e *ParsingError) Error() string {
	return e.Message
}

// NewParsingError converts err into a ParsingError with its taxonomy code.
func NewParsingError(err error) *ParsingError {
	return &ParsingError{Code: CodeOf(err), Message: err.Error()}
}

// Errors that fail a whole read rather than a single object.
var (
	ErrInvalidName   = errors.New("unildd: name must be a non-empty UTF-8 string")
	ErrEmptyBuffer   = errors.New("unildd: buffer is empty")
	ErrDepthExceeded = errors.New("container nesting too deep")
)

// OutOfBoundsError is returned when attempting to read beyond the buffer.
type OutOfBoundsError = binary.OutOfBoundsError

// UnknownMagicError is returned for buffers no classifier recognizes.
type UnknownMagicError struct {
	Path  string
	Magic uint32
}

func (e *UnknownMagicError) Error() string {
	return fmt.Sprintf("%s: unknown magic number (big-endian): %02X %02X %02X %02X", e.Path,
		byte(e.Magic>>24), byte(e.Magic>>16), byte(e.Magic>>8), byte(e.Magic))
}

// UnsupportedFormatError is returned for recognized formats without a parser.
type UnsupportedFormatError struct {
	Path   string
	Format Format
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Path, e.Format, e.Reason)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Path, e.Format)
}

// BadMagicError is returned when a leaf parser rejects the buffer's magic.
type BadMagicError struct {
	Path   string
	Reason string
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("%s: bad magic: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when file structure is invalid.
// A negative Offset means the position is unknown.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%s: corrupted file: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// DecodeError is returned when a field's bytes cannot be interpreted.
type DecodeError struct {
	Path string
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: cannot decode %s: %v", e.Path, e.What, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ExtractError is returned when a member cannot be sliced out of its container.
type ExtractError struct {
	Path   string
	Member string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: cannot extract member %q: %v", e.Path, e.Member, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from a format parser.
type PanicError struct {
	Path  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: parser panic: %v", e.Path, e.Value)
}

// CodeOf maps err to the error taxonomy. Unrecognized errors map to CodeOther.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}

	var (
		pe      *ParsingError
		extract *ExtractError
		magic   *UnknownMagicError
		bad     *BadMagicError
		unsup   *UnsupportedFormatError
		corrupt *CorruptedFileError
		decode  *DecodeError
		panicky *PanicError
		oob     *OutOfBoundsError
	)
	switch {
	case errors.As(err, &pe):
		return pe.Code
	case errors.As(err, &extract):
		return CodeIO
	case errors.As(err, &magic):
		if magic.Magic == 0 {
			return CodeBadMagic
		}
		return Code(magic.Magic)
	case errors.As(err, &bad):
		return CodeBadMagic
	case errors.As(err, &unsup):
		return CodeUnimplemented
	case errors.As(err, &corrupt), errors.As(err, &panicky), errors.Is(err, ErrDepthExceeded):
		return CodeCorrupt
	case errors.As(err, &decode):
		return CodeDecode
	case errors.As(err, &oob), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return CodeTooShort
	}
	return CodeOther
}
