package types

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeOK},
		{"corrupt", &CorruptedFileError{Path: "a", Reason: "bad"}, CodeCorrupt},
		{"wrapped corrupt", fmt.Errorf("parse: %w", &CorruptedFileError{Path: "a"}), CodeCorrupt},
		{"bad magic", &BadMagicError{Path: "a", Reason: "x"}, CodeBadMagic},
		{"unknown magic", &UnknownMagicError{Path: "a", Magic: 0x47494638}, Code(0x47494638)},
		{"unknown zero magic", &UnknownMagicError{Path: "a"}, CodeBadMagic},
		{"decode", &DecodeError{Path: "a", What: "size", Err: errors.New("x")}, CodeDecode},
		{"extract", &ExtractError{Path: "a", Member: "m", Err: io.ErrUnexpectedEOF}, CodeIO},
		{"out of bounds", &OutOfBoundsError{Path: "a", Offset: 10, Size: 4}, CodeTooShort},
		{"unexpected eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), CodeTooShort},
		{"eof", io.EOF, CodeTooShort},
		{"unsupported", &UnsupportedFormatError{Path: "a", Format: FormatDOS}, CodeUnimplemented},
		{"panic", &PanicError{Path: "a", Value: "boom"}, CodeCorrupt},
		{"depth", fmt.Errorf("a: %w", ErrDepthExceeded), CodeCorrupt},
		{"parsing error", &ParsingError{Code: CodeDecode, Message: "x"}, CodeDecode},
		{"other", errors.New("something else"), CodeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %d (%v), want %d (%v)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestCodeOf_ExtractWinsOverCause(t *testing.T) {
	// An extraction failure caused by truncation is still an extraction failure.
	err := &ExtractError{Path: "lib.a", Member: "x.o", Err: &OutOfBoundsError{Offset: 8, Size: 4}}
	if got := CodeOf(err); got != CodeIO {
		t.Errorf("CodeOf() = %v, want %v", got, CodeIO)
	}
}

func TestNewParsingError(t *testing.T) {
	err := &CorruptedFileError{Path: "bin", Reason: "slice past end", Offset: 32}
	pe := NewParsingError(err)

	if pe.Code != CodeCorrupt {
		t.Errorf("Code = %v, want %v", pe.Code, CodeCorrupt)
	}
	if pe.Message != err.Error() {
		t.Errorf("Message = %q, want %q", pe.Message, err.Error())
	}
	if pe.Error() != pe.Message {
		t.Error("Error() should return the message")
	}

	// Each conversion allocates its own error.
	if NewParsingError(err) == pe {
		t.Error("NewParsingError must not share values")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"unknown magic", &UnknownMagicError{Path: "f", Magic: 0xdeadbeef}, []string{"f", "DE AD BE EF"}},
		{"unsupported", &UnsupportedFormatError{Path: "f", Format: FormatThinArchive, Reason: "external members"}, []string{"Thin archive", "external members"}},
		{"corrupt", &CorruptedFileError{Path: "f", Reason: "zero arches", Offset: 4}, []string{"offset 4", "zero arches"}},
		{"extract", &ExtractError{Path: "lib.a", Member: "a.o", Err: errors.New("boom")}, []string{"lib.a", `"a.o"`, "boom"}},
		{"panic", &PanicError{Path: "f", Value: "index out of range"}, []string{"panic", "index out of range"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("message %q should contain %q", msg, want)
				}
			}
		})
	}
}

func TestCode_String(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeCorrupt, "corrupt"},
		{CodeUnimplemented, "unimplemented format"},
		{Code(0x7f454c46), "unknown magic 0x7f454c46"},
		{Code(-42), "Code(-42)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", int64(tt.code), got, tt.want)
		}
	}
}
