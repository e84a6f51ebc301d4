// Package testutil builds small, well-formed object files in memory for tests.
//
// The fixtures are valid enough for the standard library's debug/elf,
// debug/macho and debug/pe readers, and deliberately tiny.
package testutil

import (
	"github.com/simonhull/unildd/internal/binary"
)

// ELF section and segment constants used by the builder.
const (
	shtProgbits = 1
	shtSymtab   = 2
	shtStrtab   = 3
	shtDynamic  = 6
	shtNote     = 7

	ptInterp  = 3
	ptDynamic = 2

	dtNull   = 0
	dtNeeded = 1
)

// ELF e_type values.
const (
	ETRel  uint16 = 1
	ETExec uint16 = 2
	ETDyn  uint16 = 3
	ETCore uint16 = 4
)

// Note is one ELF note record.
type Note struct {
	Name string
	Type uint32
	Desc []byte
}

// ELFOptions describes the ELF image to build. The zero value is a
// little-endian 32-bit x86-64 executable with no sections besides the
// section name table; set Class64 for a 64-bit image.
type ELFOptions struct {
	Class64   bool
	BigEndian bool
	OSABI     byte
	Machine   uint16 // defaults to x86-64
	Type      uint16 // defaults to ETExec

	Interp  string
	Needed  []string
	Symbols bool

	// Strings are extra entries placed in the .strtab section.
	Strings []string
	Notes   []Note
}

type elfSection struct {
	name    string
	typ     uint32
	data    []byte
	link    uint32
	entsize uint64
	off     uint64
	nameOff uint32
}

func (o ELFOptions) endian() binary.Endianness {
	if o.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ELF builds an ELF image.
func ELF(o ELFOptions) []byte {
	if o.Machine == 0 {
		o.Machine = 0x3e
	}
	if o.Type == 0 {
		o.Type = ETExec
	}
	wordSize := 4
	if o.Class64 {
		wordSize = 8
	}

	// index 0 is the reserved null section
	secs := []*elfSection{{}}
	add := func(s *elfSection) uint32 {
		secs = append(secs, s)
		return uint32(len(secs) - 1)
	}

	interpIdx := uint32(0)
	if o.Interp != "" {
		interpIdx = add(&elfSection{name: ".interp", typ: shtProgbits, data: append([]byte(o.Interp), 0)})
	}

	dynIdx := uint32(0)
	if len(o.Needed) > 0 {
		dynstr := []byte{0}
		dyn := binary.NewBuilder(o.endian())
		for _, lib := range o.Needed {
			off := uint64(len(dynstr))
			dynstr = append(append(dynstr, lib...), 0)
			writeWord(dyn, wordSize, dtNeeded)
			writeWord(dyn, wordSize, off)
		}
		writeWord(dyn, wordSize, dtNull)
		writeWord(dyn, wordSize, 0)

		strIdx := add(&elfSection{name: ".dynstr", typ: shtStrtab, data: dynstr})
		dynIdx = add(&elfSection{name: ".dynamic", typ: shtDynamic, data: dyn.Bytes(), link: strIdx, entsize: uint64(2 * wordSize)})
	}

	if o.Symbols || len(o.Strings) > 0 {
		strtab := []byte{0}
		mainOff := uint32(len(strtab))
		strtab = append(strtab, "main\x00"...)
		for _, s := range o.Strings {
			strtab = append(append(strtab, s...), 0)
		}
		strIdx := add(&elfSection{name: ".strtab", typ: shtStrtab, data: strtab})

		if o.Symbols {
			sym := binary.NewBuilder(o.endian())
			writeSym(sym, o.Class64, 0)
			writeSym(sym, o.Class64, mainOff)
			symSize := uint64(16)
			if o.Class64 {
				symSize = 24
			}
			add(&elfSection{name: ".symtab", typ: shtSymtab, data: sym.Bytes(), link: strIdx, entsize: symSize})
		}
	}

	for i, n := range o.Notes {
		name := ".note." + string(rune('a'+i))
		add(&elfSection{name: name, typ: shtNote, data: encodeNote(n, o.endian())})
	}

	shstrtab := []byte{0}
	shstrIdx := add(&elfSection{name: ".shstrtab", typ: shtStrtab})
	for _, s := range secs[1:] {
		s.nameOff = uint32(len(shstrtab))
		shstrtab = append(append(shstrtab, s.name...), 0)
	}
	secs[shstrIdx].data = shstrtab

	ehsize, phentsize, shentsize := 52, 32, 40
	if o.Class64 {
		ehsize, phentsize, shentsize = 64, 56, 64
	}

	phnum := 0
	if interpIdx != 0 {
		phnum++
	}
	if dynIdx != 0 {
		phnum++
	}

	off := uint64(ehsize + phnum*phentsize)
	for _, s := range secs[1:] {
		off = alignUp(off, 8)
		s.off = off
		off += uint64(len(s.data))
	}
	shoff := alignUp(off, 8)

	b := binary.NewBuilder(o.endian())
	b.WriteString("\x7fELF")
	class := byte(1)
	if o.Class64 {
		class = 2
	}
	data := byte(1)
	if o.BigEndian {
		data = 2
	}
	b.WriteBytes([]byte{class, data, 1, o.OSABI})
	b.Zero(8)
	binary.Write(b, o.Type)
	binary.Write(b, o.Machine)
	binary.Write(b, uint32(1))
	writeWord(b, wordSize, 0) // entry
	if phnum > 0 {
		writeWord(b, wordSize, uint64(ehsize))
	} else {
		writeWord(b, wordSize, 0)
	}
	writeWord(b, wordSize, shoff)
	binary.Write(b, uint32(0)) // flags
	binary.Write(b, uint16(ehsize))
	binary.Write(b, uint16(phentsize))
	binary.Write(b, uint16(phnum))
	binary.Write(b, uint16(shentsize))
	binary.Write(b, uint16(len(secs)))
	binary.Write(b, uint16(shstrIdx))

	if interpIdx != 0 {
		s := secs[interpIdx]
		writeProg(b, o.Class64, ptInterp, s.off, uint64(len(s.data)))
	}
	if dynIdx != 0 {
		s := secs[dynIdx]
		writeProg(b, o.Class64, ptDynamic, s.off, uint64(len(s.data)))
	}

	for _, s := range secs[1:] {
		b.PadTo(int(s.off))
		b.WriteBytes(s.data)
	}
	b.PadTo(int(shoff))

	for _, s := range secs {
		binary.Write(b, s.nameOff)
		binary.Write(b, s.typ)
		writeWord(b, wordSize, 0) // flags
		writeWord(b, wordSize, 0) // addr
		writeWord(b, wordSize, s.off)
		writeWord(b, wordSize, uint64(len(s.data)))
		binary.Write(b, s.link)
		binary.Write(b, uint32(0)) // info
		writeWord(b, wordSize, 1)  // addralign
		writeWord(b, wordSize, s.entsize)
	}

	return b.Bytes()
}

// ABITag returns the .note.ABI-tag note for the given GNU OS word
// (0 Linux, 1 Hurd, 2 Solaris, 3 FreeBSD).
func ABITag(os uint32, bigEndian bool) Note {
	e := binary.LittleEndian
	if bigEndian {
		e = binary.BigEndian
	}
	d := binary.NewBuilder(e)
	binary.Write(d, os)
	binary.Write(d, uint32(3))
	binary.Write(d, uint32(2))
	binary.Write(d, uint32(0))
	return Note{Name: "GNU", Type: 1, Desc: d.Bytes()}
}

func encodeNote(n Note, e binary.Endianness) []byte {
	b := binary.NewBuilder(e)
	binary.Write(b, uint32(len(n.Name)+1))
	binary.Write(b, uint32(len(n.Desc)))
	binary.Write(b, n.Type)
	b.WriteCString(n.Name)
	b.Align(4)
	b.WriteBytes(n.Desc)
	b.Align(4)
	return b.Bytes()
}

func writeWord(b *binary.Builder, size int, v uint64) {
	if size == 8 {
		binary.Write(b, v)
		return
	}
	binary.Write(b, uint32(v))
}

func writeSym(b *binary.Builder, class64 bool, name uint32) {
	if class64 {
		binary.Write(b, name)
		binary.Write(b, uint8(0))  // info
		binary.Write(b, uint8(0))  // other
		binary.Write(b, uint16(0)) // shndx
		binary.Write(b, uint64(0)) // value
		binary.Write(b, uint64(0)) // size
		return
	}
	binary.Write(b, name)
	binary.Write(b, uint32(0)) // value
	binary.Write(b, uint32(0)) // size
	binary.Write(b, uint8(0))  // info
	binary.Write(b, uint8(0))  // other
	binary.Write(b, uint16(0)) // shndx
}

func writeProg(b *binary.Builder, class64 bool, typ uint32, off, size uint64) {
	if class64 {
		binary.Write(b, typ)
		binary.Write(b, uint32(4)) // flags
		binary.Write(b, off)
		binary.Write(b, off) // vaddr
		binary.Write(b, off) // paddr
		binary.Write(b, size)
		binary.Write(b, size)
		binary.Write(b, uint64(1))
		return
	}
	binary.Write(b, typ)
	binary.Write(b, uint32(off))
	binary.Write(b, uint32(off))
	binary.Write(b, uint32(off))
	binary.Write(b, uint32(size))
	binary.Write(b, uint32(size))
	binary.Write(b, uint32(4)) // flags
	binary.Write(b, uint32(1))
}

func alignUp(v, n uint64) uint64 {
	return (v + n - 1) &^ (n - 1)
}
