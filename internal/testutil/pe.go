package testutil

import (
	"github.com/simonhull/unildd/internal/binary"
)

// PE/COFF constants used by the builder.
const (
	MachineI386  uint16 = 0x14c
	MachineAMD64 uint16 = 0x8664
	MachineARM64 uint16 = 0xaa64

	FileExecutableImage uint16 = 0x0002
	FileDebugStripped   uint16 = 0x0200
	FileDLL             uint16 = 0x2000

	SubsystemNative  uint16 = 1
	SubsystemGUI     uint16 = 2
	SubsystemCUI     uint16 = 3
	SubsystemEFIApp  uint16 = 10
	SubsystemXbox    uint16 = 14
	SubsystemUnknown uint16 = 0

	peLfanew      = 0x40
	peFileAlign   = 0x200
	peSectionVA   = 0x1000
	importDescLen = 20
)

// PEOptions describes a PE image with one section.
type PEOptions struct {
	Is64            bool
	Machine         uint16 // defaults to i386 or AMD64 by Is64
	Subsystem       uint16
	Characteristics uint16 // FileExecutableImage is always set
	LinkerMajor     uint8
	LinkerMinor     uint8

	Imports  []string
	DebugDir bool
	Symbols  int
}

// PE builds a PE32 or PE32+ image.
func PE(o PEOptions) []byte {
	if o.Machine == 0 {
		o.Machine = MachineI386
		if o.Is64 {
			o.Machine = MachineAMD64
		}
	}

	// section contents: import descriptors, then names, then a debug stub
	sec := binary.NewBuilder(binary.LittleEndian)
	var importDir, debugDir [2]uint32
	if len(o.Imports) > 0 {
		descLen := (len(o.Imports) + 1) * importDescLen
		sec.Zero(descLen)
		for i, name := range o.Imports {
			nameRVA := uint32(peSectionVA + sec.Offset())
			sec.WriteCString(name)
			binary.PutAt(sec, int64(i*importDescLen+12), nameRVA)
		}
		importDir = [2]uint32{peSectionVA, uint32(descLen)}
	}
	sec.Align(4)
	if o.DebugDir {
		debugDir = [2]uint32{uint32(peSectionVA + sec.Offset()), 28}
		sec.Zero(28)
	}
	sec.Zero(16)
	raw := sec.Bytes()
	rawSize := alignUp(uint64(len(raw)), peFileAlign)

	optSize := 96 + 16*8
	if o.Is64 {
		optSize = 112 + 16*8
	}

	symPtr := uint32(0)
	if o.Symbols > 0 {
		symPtr = uint32(peFileAlign + rawSize)
	}

	b := binary.NewBuilder(binary.LittleEndian)
	b.WriteString("MZ")
	b.PadTo(0x3c)
	binary.Write(b, uint32(peLfanew))
	b.WriteString("PE\x00\x00")

	binary.Write(b, o.Machine)
	binary.Write(b, uint16(1)) // sections
	binary.Write(b, uint32(0)) // timestamp
	binary.Write(b, symPtr)
	binary.Write(b, uint32(o.Symbols))
	binary.Write(b, uint16(optSize))
	binary.Write(b, o.Characteristics|FileExecutableImage)

	optStart := b.Offset()
	if o.Is64 {
		binary.Write(b, uint16(0x20b))
	} else {
		binary.Write(b, uint16(0x10b))
	}
	binary.Write(b, o.LinkerMajor)
	binary.Write(b, o.LinkerMinor)
	binary.Write(b, uint32(0))           // SizeOfCode
	binary.Write(b, uint32(rawSize))     // SizeOfInitializedData
	binary.Write(b, uint32(0))           // SizeOfUninitializedData
	binary.Write(b, uint32(peSectionVA)) // AddressOfEntryPoint
	binary.Write(b, uint32(peSectionVA)) // BaseOfCode
	if o.Is64 {
		binary.Write(b, uint64(0x140000000))
	} else {
		binary.Write(b, uint32(0)) // BaseOfData
		binary.Write(b, uint32(0x400000))
	}
	binary.Write(b, uint32(0x1000))      // SectionAlignment
	binary.Write(b, uint32(peFileAlign)) // FileAlignment
	for range 6 {
		binary.Write(b, uint16(0)) // OS, image and subsystem versions
	}
	binary.Write(b, uint32(0))           // Win32VersionValue
	binary.Write(b, uint32(0x2000))      // SizeOfImage
	binary.Write(b, uint32(peFileAlign)) // SizeOfHeaders
	binary.Write(b, uint32(0))           // CheckSum
	binary.Write(b, o.Subsystem)
	binary.Write(b, uint16(0)) // DllCharacteristics
	for range 4 {
		if o.Is64 {
			binary.Write(b, uint64(0x100000))
		} else {
			binary.Write(b, uint32(0x100000))
		}
	}
	binary.Write(b, uint32(0))  // LoaderFlags
	binary.Write(b, uint32(16)) // NumberOfRvaAndSizes
	for i := range 16 {
		var dir [2]uint32
		switch i {
		case 1:
			dir = importDir
		case 6:
			dir = debugDir
		}
		binary.Write(b, dir[0])
		binary.Write(b, dir[1])
	}
	b.PadTo(int(optStart) + optSize)

	b.WriteBytes([]byte(".idata\x00\x00"))
	binary.Write(b, uint32(len(raw)))    // VirtualSize
	binary.Write(b, uint32(peSectionVA)) // VirtualAddress
	binary.Write(b, uint32(rawSize))
	binary.Write(b, uint32(peFileAlign))
	b.Zero(12)                          // relocations, line numbers, counts
	binary.Write(b, uint32(0xc0000040)) // initialized data, read, write

	b.PadTo(peFileAlign)
	b.WriteBytes(raw)
	b.PadTo(peFileAlign + int(rawSize))

	writeCOFFSymbols(b, o.Symbols)
	return b.Bytes()
}

// COFFOptions describes a relocatable COFF object with one section.
type COFFOptions struct {
	Machine         uint16 // defaults to AMD64
	Characteristics uint16
	Symbols         int
}

// COFF builds a bare COFF object file.
func COFF(o COFFOptions) []byte {
	if o.Machine == 0 {
		o.Machine = MachineAMD64
	}
	const (
		hdrSize = 20
		secSize = 40
		rawLen  = 16
	)
	rawOff := uint32(hdrSize + secSize)
	symPtr := uint32(0)
	if o.Symbols > 0 {
		symPtr = rawOff + rawLen
	}

	b := binary.NewBuilder(binary.LittleEndian)
	binary.Write(b, o.Machine)
	binary.Write(b, uint16(1))
	binary.Write(b, uint32(0))
	binary.Write(b, symPtr)
	binary.Write(b, uint32(o.Symbols))
	binary.Write(b, uint16(0)) // no optional header
	binary.Write(b, o.Characteristics)

	b.WriteBytes([]byte(".text\x00\x00\x00"))
	binary.Write(b, uint32(0))
	binary.Write(b, uint32(0))
	binary.Write(b, uint32(rawLen))
	binary.Write(b, rawOff)
	b.Zero(12)
	binary.Write(b, uint32(0x60000020)) // code, execute, read

	b.Zero(rawLen)
	writeCOFFSymbols(b, o.Symbols)
	return b.Bytes()
}

func writeCOFFSymbols(b *binary.Builder, n int) {
	if n == 0 {
		return
	}
	for i := range n {
		name := []byte("sym\x00\x00\x00\x00\x00")
		name[3] = byte('0' + i%10)
		b.WriteBytes(name)
		binary.Write(b, uint32(0)) // value
		binary.Write(b, uint16(1)) // section
		binary.Write(b, uint16(0)) // type
		binary.Write(b, uint8(2))  // external
		binary.Write(b, uint8(0))  // aux count
	}
	binary.Write(b, uint32(4)) // empty string table
}
