package binary

import "encoding/binary"

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian uses big-endian byte order.
	// Used by: fat Mach-O headers, big-endian ELF and Mach-O targets.
	BigEndian Endianness = iota

	// LittleEndian uses little-endian byte order.
	// Used by: PE/COFF, x86/x64 and most ARM objects.
	LittleEndian
)

// ByteOrder returns the encoding/binary byte order for e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func sizeOf[T uint8 | uint16 | uint32 | uint64]() int {
	var zero T
	switch any(zero).(type) {
	case uint16:
		return 2
	case uint32:
		return 4
	case uint64:
		return 8
	}
	return 1
}

// ReadLE reads a numeric value of type T at the given offset using little-endian byte order.
//
// Example:
//
//	lfanew, err := binary.ReadLE[uint32](sr, 0x3c, "e_lfanew")
func ReadLE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, LittleEndian)
}

// ReadBE reads a numeric value of type T at the given offset using big-endian byte order.
//
// Example:
//
//	nfat, err := binary.ReadBE[uint32](sr, 4, "fat arch count")
func ReadBE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// ReadEndian reads a numeric value of type T at the given offset with specified byte order.
//
// This is the low-level function used by Read, ReadLE, and ReadBE.
// Most code should use the convenience wrappers instead.
func ReadEndian[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string, endian Endianness) (T, error) {
	var zero T

	buf := make([]byte, sizeOf[T]())
	if err := sr.ReadAt(buf, off, what); err != nil {
		return zero, err
	}

	order := endian.ByteOrder()
	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(order.Uint16(buf))
	case uint32:
		val = T(order.Uint32(buf))
	case uint64:
		val = T(order.Uint64(buf))
	}

	return val, nil
}
