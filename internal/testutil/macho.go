package testutil

import (
	"github.com/simonhull/unildd/internal/binary"
)

// Mach-O constants used by the builder.
const (
	CPUX86    uint32 = 7
	CPUX86_64 uint32 = 0x01000007
	CPUARM    uint32 = 12
	CPUARM64  uint32 = 0x0100000c
	CPUPPC    uint32 = 18

	MHObject  uint32 = 1
	MHExecute uint32 = 2
	MHDylib   uint32 = 6
	MHBundle  uint32 = 8

	lcSymtab        = 0x2
	lcLoadDylib     = 0xc
	lcLoadWeakDylib = 0x80000018
	lcReexportDylib = 0x8000001f
	lcBuildVersion  = 0x32

	// LCVersionMinIPhoneOS and friends select the legacy platform command.
	LCVersionMinMacOS    uint32 = 0x24
	LCVersionMinIPhoneOS uint32 = 0x25
	LCVersionMinTvOS     uint32 = 0x2f
	LCVersionMinWatchOS  uint32 = 0x30
)

// Symbol is one nlist entry.
type Symbol struct {
	Name string
	Type uint8
	Sect uint8
}

// MachOOptions describes a thin Mach-O image.
type MachOOptions struct {
	Is64      bool
	BigEndian bool
	CPU       uint32
	SubCPU    uint32
	FileType  uint32 // defaults to MHExecute

	Dylibs         []string
	WeakDylibs     []string
	ReexportDylibs []string

	// Platform, when non-zero, emits LC_BUILD_VERSION.
	Platform uint32
	// VersionMin, when non-zero, emits that LC_VERSION_MIN_* command.
	VersionMin uint32

	// Symbols, when non-nil, emits LC_SYMTAB.
	Symbols []Symbol
}

// MachO builds a thin Mach-O image.
func MachO(o MachOOptions) []byte {
	if o.FileType == 0 {
		o.FileType = MHExecute
	}
	e := binary.LittleEndian
	if o.BigEndian {
		e = binary.BigEndian
	}

	hdrSize := 28
	nlistSize := 12
	if o.Is64 {
		hdrSize = 32
		nlistSize = 16
	}

	cmds := binary.NewBuilder(e)
	ncmds := uint32(0)

	dylib := func(cmd uint32, name string) {
		size := alignUp(uint64(24+len(name)+1), 8)
		binary.Write(cmds, cmd)
		binary.Write(cmds, uint32(size))
		binary.Write(cmds, uint32(24)) // name offset
		binary.Write(cmds, uint32(2))  // timestamp
		binary.Write(cmds, uint32(0x10000))
		binary.Write(cmds, uint32(0x10000))
		start := cmds.Offset() - 24
		cmds.WriteCString(name)
		cmds.PadTo(int(start) + int(size))
		ncmds++
	}
	for _, d := range o.Dylibs {
		dylib(lcLoadDylib, d)
	}
	for _, d := range o.WeakDylibs {
		dylib(lcLoadWeakDylib, d)
	}
	for _, d := range o.ReexportDylibs {
		dylib(lcReexportDylib, d)
	}

	if o.Platform != 0 {
		binary.Write(cmds, uint32(lcBuildVersion))
		binary.Write(cmds, uint32(24))
		binary.Write(cmds, o.Platform)
		binary.Write(cmds, uint32(0x000e0000)) // minos 14.0
		binary.Write(cmds, uint32(0x000e0000)) // sdk
		binary.Write(cmds, uint32(0))          // ntools
		ncmds++
	}
	if o.VersionMin != 0 {
		binary.Write(cmds, o.VersionMin)
		binary.Write(cmds, uint32(16))
		binary.Write(cmds, uint32(0x000a0d00))
		binary.Write(cmds, uint32(0x000a0d00))
		ncmds++
	}

	var symtabPatch int64 = -1
	if o.Symbols != nil {
		binary.Write(cmds, uint32(lcSymtab))
		binary.Write(cmds, uint32(24))
		symtabPatch = cmds.Offset()
		cmds.Zero(16) // symoff, nsyms, stroff, strsize
		ncmds++
	}

	// symbol and string tables follow the load commands
	tables := binary.NewBuilder(e)
	symoff := uint64(hdrSize) + uint64(len(cmds.Bytes()))
	var strtab []byte
	if o.Symbols != nil {
		strtab = []byte{' ', 0}
		for _, s := range o.Symbols {
			strx := uint32(len(strtab))
			strtab = append(append(strtab, s.Name...), 0)
			binary.Write(tables, strx)
			binary.Write(tables, s.Type)
			binary.Write(tables, s.Sect)
			binary.Write(tables, uint16(0))
			if o.Is64 {
				binary.Write(tables, uint64(0))
			} else {
				binary.Write(tables, uint32(0))
			}
		}
		stroff := symoff + uint64(len(o.Symbols)*nlistSize)
		binary.PutAt(cmds, symtabPatch, uint32(symoff))
		binary.PutAt(cmds, symtabPatch+4, uint32(len(o.Symbols)))
		binary.PutAt(cmds, symtabPatch+8, uint32(stroff))
		binary.PutAt(cmds, symtabPatch+12, uint32(len(strtab)))
		tables.WriteBytes(strtab)
	}

	b := binary.NewBuilder(e)
	if o.Is64 {
		binary.Write(b, uint32(0xfeedfacf))
	} else {
		binary.Write(b, uint32(0xfeedface))
	}
	binary.Write(b, o.CPU)
	binary.Write(b, o.SubCPU)
	binary.Write(b, o.FileType)
	binary.Write(b, ncmds)
	binary.Write(b, uint32(len(cmds.Bytes())))
	binary.Write(b, uint32(0)) // flags
	if o.Is64 {
		binary.Write(b, uint32(0))
	}
	b.WriteBytes(cmds.Bytes())
	b.WriteBytes(tables.Bytes())
	// a little body so slices are never empty
	b.Zero(16)
	return b.Bytes()
}

// FatArch is one slice of a universal binary.
type FatArch struct {
	CPU    uint32
	SubCPU uint32
	Data   []byte

	// Size, when non-zero, overrides the recorded slice size.
	Size uint64
}

// Fat builds a universal binary holding arches in order. Fat64 selects
// the 64-bit descriptor layout.
func Fat(arches []FatArch, fat64 bool) []byte {
	const align = 16

	entrySize := 20
	magic := uint32(0xcafebabe)
	if fat64 {
		entrySize = 32
		magic = 0xcafebabf
	}

	off := alignUp(uint64(8+entrySize*len(arches)), align)
	offsets := make([]uint64, len(arches))
	for i, a := range arches {
		offsets[i] = off
		off = alignUp(off+uint64(len(a.Data)), align)
	}

	b := binary.NewBuilder(binary.BigEndian)
	binary.Write(b, magic)
	binary.Write(b, uint32(len(arches)))
	for i, a := range arches {
		size := uint64(len(a.Data))
		if a.Size != 0 {
			size = a.Size
		}
		binary.Write(b, a.CPU)
		binary.Write(b, a.SubCPU)
		if fat64 {
			binary.Write(b, offsets[i])
			binary.Write(b, size)
			binary.Write(b, uint32(4))
			binary.Write(b, uint32(0))
		} else {
			binary.Write(b, uint32(offsets[i]))
			binary.Write(b, uint32(size))
			binary.Write(b, uint32(4))
		}
	}
	for i, a := range arches {
		b.PadTo(int(offsets[i]))
		b.WriteBytes(a.Data)
	}
	return b.Bytes()
}
