package binary

import "encoding/binary"

// Builder assembles a binary image in memory with offset tracking.
//
// It backs the synthetic object fixtures used by tests, where headers are
// written first and patched once later offsets are known.
type Builder struct {
	buf    []byte
	endian Endianness
}

// NewBuilder creates a Builder that encodes multi-byte values with endian.
func NewBuilder(endian Endianness) *Builder {
	return &Builder{endian: endian}
}

// Bytes returns the assembled image.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Offset returns the current position (number of bytes written).
func (b *Builder) Offset() int64 {
	return int64(len(b.buf))
}

// WriteBytes appends raw bytes.
func (b *Builder) WriteBytes(p []byte) {
	b.buf = append(b.buf, p...)
}

// WriteString appends s without a terminator.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteCString appends s followed by a NUL byte.
func (b *Builder) WriteCString(s string) {
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, 0)
}

// Zero appends n zero bytes.
func (b *Builder) Zero(n int) {
	b.buf = append(b.buf, make([]byte, n)...)
}

// Align pads with zero bytes until the offset is a multiple of n.
func (b *Builder) Align(n int) {
	if rem := len(b.buf) % n; rem != 0 {
		b.Zero(n - rem)
	}
}

// PadTo pads with zero bytes until the image is size bytes long.
func (b *Builder) PadTo(size int) {
	if len(b.buf) < size {
		b.Zero(size - len(b.buf))
	}
}

// Write appends a value of type T in the builder's byte order.
// T must be uint8, uint16, uint32, or uint64.
func Write[T uint8 | uint16 | uint32 | uint64](b *Builder, val T) {
	buf := make([]byte, sizeOf[T]())
	put(buf, val, b.endian.ByteOrder())
	b.buf = append(b.buf, buf...)
}

// PutAt overwrites a value of type T at off, growing the image if needed.
func PutAt[T uint8 | uint16 | uint32 | uint64](b *Builder, off int64, val T) {
	end := int(off) + sizeOf[T]()
	b.PadTo(end)
	put(b.buf[off:end], val, b.endian.ByteOrder())
}

func put[T uint8 | uint16 | uint32 | uint64](buf []byte, val T, order binary.ByteOrder) {
	switch v := any(val).(type) {
	case uint8:
		buf[0] = v
	case uint16:
		order.PutUint16(buf, v)
	case uint32:
		order.PutUint32(buf, v)
	case uint64:
		order.PutUint64(buf, v)
	}
}
