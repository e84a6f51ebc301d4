// Package binary provides bounds-checked binary reading primitives for object file parsing.
package binary

import (
	"bytes"
	"fmt"
	"io"
)

// OutOfBoundsError is returned when a read would cross the end of the input.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// Unwrap lets callers match truncation with errors.Is(err, io.ErrUnexpectedEOF).
func (e *OutOfBoundsError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
type SafeReader struct {
	r    io.ReaderAt
	data []byte // non-nil when backed by an in-memory buffer
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// NewBytesReader creates a SafeReader over an in-memory buffer.
// Slices returned by Slice alias data instead of copying it.
func NewBytesReader(data []byte, path string) *SafeReader {
	return &SafeReader{
		r:    bytes.NewReader(data),
		data: data,
		size: int64(len(data)),
		path: path,
	}
}

// Path returns the name associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the number of readable bytes.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// InBounds reports whether n bytes starting at off lie inside the input.
func (sr *SafeReader) InBounds(off, n int64) bool {
	return off >= 0 && n >= 0 && off <= sr.size && n <= sr.size-off
}

func (sr *SafeReader) check(off int64, n int, what string) error {
	if off < 0 || off >= sr.size || !sr.InBounds(off, int64(n)) {
		return &OutOfBoundsError{
			Path:   sr.path,
			What:   what,
			Offset: off,
			Length: n,
			Size:   sr.size,
		}
	}
	return nil
}

// ReadAt reads bytes at the given offset with context for error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if err := sr.check(off, len(b), what); err != nil {
		return err
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.path, what, off, err)
	}

	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d: %w",
			sr.path, what, off, n, len(b), io.ErrUnexpectedEOF)
	}

	return nil
}

// Slice returns n bytes starting at off.
// For buffer-backed readers the result shares memory with the input.
func (sr *SafeReader) Slice(off, n int64, what string) ([]byte, error) {
	if n == 0 && off >= 0 && off <= sr.size {
		return []byte{}, nil
	}
	if !sr.InBounds(off, n) {
		return nil, &OutOfBoundsError{
			Path:   sr.path,
			What:   what,
			Offset: off,
			Length: int(n),
			Size:   sr.size,
		}
	}
	if sr.data != nil {
		return sr.data[off : off+n : off+n], nil
	}
	buf := make([]byte, n)
	if err := sr.ReadAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// CString reads a NUL-terminated string starting at off.
// A string running to the end of the input without a terminator is returned as is.
func (sr *SafeReader) CString(off int64, what string) (string, error) {
	if off < 0 || off >= sr.size {
		return "", sr.check(off, 1, what)
	}
	var out []byte
	chunk := make([]byte, 64)
	for pos := off; pos < sr.size; pos += int64(len(chunk)) {
		n := int64(len(chunk))
		if pos+n > sr.size {
			n = sr.size - pos
		}
		if err := sr.ReadAt(chunk[:n], pos, what); err != nil {
			return "", err
		}
		if i := bytes.IndexByte(chunk[:n], 0); i >= 0 {
			return string(append(out, chunk[:i]...)), nil
		}
		out = append(out, chunk[:n]...)
	}
	return string(out), nil
}

// Read reads a big-endian value of type T from the given offset.
// T must be uint8, uint16, uint32, or uint64.
func Read[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// Reader provides sequential reading with automatic offset tracking.
type Reader struct {
	*SafeReader
	offset int64
	endian Endianness
}

// NewReader creates a new big-endian Reader starting at the given offset.
func NewReader(sr *SafeReader, offset int64) *Reader {
	return &Reader{
		SafeReader: sr,
		offset:     offset,
	}
}

// NewReaderEndian creates a new Reader with an explicit byte order.
func NewReaderEndian(sr *SafeReader, offset int64, endian Endianness) *Reader {
	return &Reader{
		SafeReader: sr,
		offset:     offset,
		endian:     endian,
	}
}

// ReadValue reads a numeric value and advances the offset.
func ReadValue[T uint8 | uint16 | uint32 | uint64](r *Reader, what string) (T, error) {
	val, err := ReadEndian[T](r.SafeReader, r.offset, what, r.endian)
	if err != nil {
		var zero T
		return zero, err
	}

	r.offset += int64(sizeOf[T]())
	return val, nil
}

// ReadString reads a string of the given length and advances the offset.
func (r *Reader) ReadString(length int, what string) (string, error) {
	buf := make([]byte, length)
	if err := r.SafeReader.ReadAt(buf, r.offset, what); err != nil {
		return "", err
	}

	r.offset += int64(length)
	return string(buf), nil
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int64) {
	r.offset += n
}

// Offset returns the current offset.
func (r *Reader) Offset() int64 {
	return r.offset
}

// ChainReader allows chaining multiple reads with deferred error checking.
// This avoids repetitive "if err != nil" checks.
type ChainReader struct {
	*Reader
	err error
}

// NewChainReader creates a new ChainReader.
func NewChainReader(r *Reader) *ChainReader {
	return &ChainReader{Reader: r}
}

// ReadChained reads a value with deferred error checking.
// If a previous read failed, returns zero value without attempting read.
func ReadChained[T uint8 | uint16 | uint32 | uint64](cr *ChainReader, what string) T {
	if cr.err != nil {
		var zero T
		return zero
	}

	val, err := ReadValue[T](cr.Reader, what)
	if err != nil {
		cr.err = err
		var zero T
		return zero
	}

	return val
}

// String reads a string, accumulating any error.
func (cr *ChainReader) String(length int, what string) string {
	if cr.err != nil {
		return ""
	}

	val, err := cr.Reader.ReadString(length, what)
	if err != nil {
		cr.err = err
		return ""
	}

	return val
}

// Error returns the accumulated error, if any.
func (cr *ChainReader) Error() error {
	return cr.err
}
