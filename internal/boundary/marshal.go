// Package boundary lays a Collection out in caller-owned memory using the
// C structures declared in include/unildd.h, and frees it again.
package boundary

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/simonhull/unildd/internal/types"
)

// Record layout, in 8-byte slots. Mirrors ULDDObjResult on LP64.
const (
	slotCode = iota
	slotMessage
	slotName
	slotMemberPath // capacity, length, vec
	_
	_
	slotFormat
	slotIs64
	slotOS
	slotFileType
	slotStripped
	slotCPU
	slotSubtype
	slotInterpreter
	slotLibraries // capacity, length, vec
	_
	_
	recordSlots
)

const (
	wordSize   = 8
	recordSize = recordSlots * wordSize
)

var native = binary.NativeEndian

// Handle is the caller-visible vector of outcome records
// (ULDDObjResultVec).
type Handle struct {
	Capacity uint64
	Length   uint64
	Vec      Ptr
}

// Status is the result of Release.
type Status uint8

const (
	// StatusOK means every allocation reachable from the handle was freed.
	StatusOK Status = 0
	// StatusNullVector means the handle's vec pointer was NULL. Nothing
	// was freed.
	StatusNullVector Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNullVector:
		return "null vector"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Marshaller converts collections to and from the C layout.
type Marshaller struct {
	alloc Allocator
	log   zerolog.Logger
}

// NewMarshaller returns a Marshaller that allocates from a and logs to log.
func NewMarshaller(a Allocator, log zerolog.Logger) *Marshaller {
	return &Marshaller{alloc: a, log: log}
}

// Marshal copies c into memory from the Marshaller's allocator. The
// result must be freed with Release. An empty collection yields the zero
// Handle.
//
// On allocation failure everything allocated so far is freed and the
// zero Handle is returned.
func (m *Marshaller) Marshal(c types.Collection) (Handle, error) {
	if len(c) == 0 {
		return Handle{}, nil
	}

	vec, err := m.alloc.Alloc(len(c) * recordSize)
	if err != nil {
		return Handle{}, fmt.Errorf("allocating %d records: %w", len(c), err)
	}
	h := Handle{Capacity: uint64(len(c)), Length: uint64(len(c)), Vec: vec}

	for i, o := range c {
		if err := m.writeRecord(vec+Ptr(i*recordSize), o); err != nil {
			// Unwritten slots are still zero, so Release stops at them.
			m.Release(&h)
			return Handle{}, fmt.Errorf("record %d (%s): %w", i, o.Object.Name, err)
		}
	}

	m.log.Debug().Int("records", len(c)).Msg("marshalled collection")
	return h, nil
}

func (m *Marshaller) writeRecord(rec Ptr, o types.Outcome) error {
	// Each field is stored as soon as it is allocated, so a failure part
	// way through leaves nothing unreachable.
	put := func(slot int, v uint64) {
		native.PutUint64(m.alloc.Bytes(rec+Ptr(slot*wordSize), wordSize), v)
	}
	str := func(slot int, s string) error {
		p, err := m.cstring(s)
		if err != nil {
			return err
		}
		put(slot, uint64(p))
		return nil
	}

	obj := o.Object
	if o.Err != nil {
		put(slotCode, uint64(o.Err.Code))
		if err := str(slotMessage, o.Err.Message); err != nil {
			return err
		}
	}

	for _, f := range []struct {
		slot int
		s    string
	}{
		{slotName, obj.Name},
		{slotFormat, obj.ExecutableFormat},
		{slotOS, obj.OSType},
		{slotFileType, obj.FileType},
		{slotCPU, obj.CPUType},
		{slotSubtype, obj.CPUSubtype},
		{slotInterpreter, obj.Interpreter},
	} {
		if err := str(f.slot, f.s); err != nil {
			return err
		}
	}

	// C bools are one byte at the start of their padded slot.
	m.alloc.Bytes(rec+slotIs64*wordSize, 1)[0] = boolByte(obj.Is64)
	m.alloc.Bytes(rec+slotStripped*wordSize, 1)[0] = boolByte(obj.IsStripped)

	if err := m.writeStrings(rec+slotMemberPath*wordSize, obj.MemberPath); err != nil {
		return err
	}
	return m.writeStrings(rec+slotLibraries*wordSize, obj.Libraries)
}

// writeStrings stores a {capacity, length, vec} triple of C strings at at.
func (m *Marshaller) writeStrings(at Ptr, ss []string) error {
	if len(ss) == 0 {
		return nil
	}

	vec, err := m.alloc.Alloc(len(ss) * wordSize)
	if err != nil {
		return err
	}
	triple := m.alloc.Bytes(at, 3*wordSize)
	native.PutUint64(triple[0:], uint64(len(ss)))
	native.PutUint64(triple[8:], uint64(len(ss)))
	native.PutUint64(triple[16:], uint64(vec))

	for i, s := range ss {
		p, err := m.cstring(s)
		if err != nil {
			return err
		}
		native.PutUint64(m.alloc.Bytes(vec+Ptr(i*wordSize), wordSize), uint64(p))
	}
	return nil
}

// cstring copies s into a NUL-terminated allocation. The empty string is
// absent and becomes NULL.
func (m *Marshaller) cstring(s string) (Ptr, error) {
	if s == "" {
		return 0, nil
	}
	p, err := m.alloc.Alloc(len(s) + 1)
	if err != nil {
		return 0, err
	}
	copy(m.alloc.Bytes(p, len(s)), s)
	return p, nil
}

// Release frees everything reachable from h, innermost allocations first,
// and zeroes h. A handle whose vec is NULL (including one already
// released) returns StatusNullVector and frees nothing.
//
// Release may run on a different goroutine than Marshal, but a handle
// must not be released concurrently with any other use of it.
func (m *Marshaller) Release(h *Handle) Status {
	if h == nil || h.Vec == 0 {
		m.log.Debug().Msg("release of null vector")
		return StatusNullVector
	}

	freed := 0
	for i := uint64(0); i < h.Length; i++ {
		freed += m.freeRecord(h.Vec + Ptr(i*recordSize))
	}
	m.alloc.Free(h.Vec)
	freed++

	m.log.Debug().Uint64("records", h.Length).Int("allocations", freed).Msg("released collection")
	*h = Handle{}
	return StatusOK
}

func (m *Marshaller) freeRecord(rec Ptr) int {
	words := m.words(rec, recordSlots)

	freed := 0
	for _, slot := range []int{slotMessage, slotName, slotFormat, slotOS, slotFileType, slotCPU, slotSubtype, slotInterpreter} {
		if p := Ptr(words[slot]); p != 0 {
			m.alloc.Free(p)
			freed++
		}
	}
	for _, slot := range []int{slotMemberPath, slotLibraries} {
		length, vec := words[slot+1], Ptr(words[slot+2])
		if vec == 0 {
			continue
		}
		for _, p := range m.words(vec, int(length)) {
			if p != 0 {
				m.alloc.Free(Ptr(p))
				freed++
			}
		}
		m.alloc.Free(vec)
		freed++
	}
	return freed
}

// Decode reads a handle produced by Marshal back into a Collection
// without taking ownership of it.
func (m *Marshaller) Decode(h Handle) types.Collection {
	if h.Vec == 0 {
		return types.Collection{}
	}

	out := make(types.Collection, 0, h.Length)
	for i := uint64(0); i < h.Length; i++ {
		words := m.words(h.Vec+Ptr(i*recordSize), recordSlots)

		obj := types.Object{
			Name:             m.readString(words[slotName]),
			MemberPath:       m.readStrings(words[slotMemberPath+1], words[slotMemberPath+2]),
			ExecutableFormat: m.readString(words[slotFormat]),
			Is64:             words[slotIs64] != 0,
			OSType:           m.readString(words[slotOS]),
			FileType:         m.readString(words[slotFileType]),
			IsStripped:       words[slotStripped] != 0,
			CPUType:          m.readString(words[slotCPU]),
			CPUSubtype:       m.readString(words[slotSubtype]),
			Interpreter:      m.readString(words[slotInterpreter]),
			Libraries:        m.readStrings(words[slotLibraries+1], words[slotLibraries+2]),
		}

		var perr *types.ParsingError
		if code := types.Code(int64(words[slotCode])); code != types.CodeOK {
			perr = &types.ParsingError{Code: code, Message: m.readString(words[slotMessage])}
		}
		out = append(out, types.Outcome{Object: obj, Err: perr})
	}
	return out
}

func (m *Marshaller) words(p Ptr, n int) []uint64 {
	if n == 0 {
		return nil
	}
	b := m.alloc.Bytes(p, n*wordSize)
	out := make([]uint64, n)
	for i := range out {
		out[i] = native.Uint64(b[i*wordSize:])
	}
	return out
}

func (m *Marshaller) readString(p uint64) string {
	if p == 0 {
		return ""
	}
	var buf []byte
	for at := Ptr(p); ; at++ {
		c := m.alloc.Bytes(at, 1)[0]
		if c == 0 {
			return string(buf)
		}
		buf = append(buf, c)
	}
}

func (m *Marshaller) readStrings(length, vec uint64) []string {
	out := make([]string, 0, length)
	if vec == 0 {
		return out
	}
	for _, p := range m.words(Ptr(vec), int(length)) {
		out = append(out, m.readString(p))
	}
	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
