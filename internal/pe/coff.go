package pe

import (
	"github.com/simonhull/unildd/internal/binary"
	"github.com/simonhull/unildd/internal/types"
)

const (
	coffHeaderSize  = 20
	coffSectionSize = 40
	coffSymbolSize  = 18
)

// fileHeader is the COFF file header shared by PE images and objects.
type fileHeader struct {
	offset   int64
	machine  uint16
	sections uint16
	symPtr   uint32
	symbols  uint32
	optSize  uint16
	chars    uint16
}

func (fh fileHeader) optOffset() int64 {
	return fh.offset + coffHeaderSize
}

func (fh fileHeader) sectionsOffset() int64 {
	return fh.optOffset() + int64(fh.optSize)
}

func readFileHeader(sr *binary.SafeReader, off int64) (fileHeader, error) {
	r := binary.NewChainReader(binary.NewReaderEndian(sr, off, binary.LittleEndian))
	fh := fileHeader{offset: off}
	fh.machine = binary.ReadChained[uint16](r, "machine")
	fh.sections = binary.ReadChained[uint16](r, "section count")
	r.Skip(4) // timestamp
	fh.symPtr = binary.ReadChained[uint32](r, "symbol table offset")
	fh.symbols = binary.ReadChained[uint32](r, "symbol count")
	fh.optSize = binary.ReadChained[uint16](r, "optional header size")
	fh.chars = binary.ReadChained[uint16](r, "characteristics")
	return fh, r.Error()
}

type section struct {
	va      uint32
	vsize   uint32
	rawSize uint32
	rawPtr  uint32
}

// readSections decodes the section table, which must lie inside the file.
func readSections(sr *binary.SafeReader, fh fileHeader) ([]section, error) {
	if _, err := sr.Slice(fh.sectionsOffset(), int64(fh.sections)*coffSectionSize, "section table"); err != nil {
		return nil, err
	}
	sections := make([]section, fh.sections)
	for i := range sections {
		r := binary.NewChainReader(binary.NewReaderEndian(sr, fh.sectionsOffset()+int64(i)*coffSectionSize+8, binary.LittleEndian))
		sections[i].vsize = binary.ReadChained[uint32](r, "VirtualSize")
		sections[i].va = binary.ReadChained[uint32](r, "VirtualAddress")
		sections[i].rawSize = binary.ReadChained[uint32](r, "SizeOfRawData")
		sections[i].rawPtr = binary.ReadChained[uint32](r, "PointerToRawData")
		if err := r.Error(); err != nil {
			return nil, err
		}
	}
	return sections, nil
}

// COFFParser implements registry.LeafParser for relocatable COFF objects
// as produced by MSVC and clang-cl.
type COFFParser struct{}

// Parse extracts the metadata record for a COFF object. Objects have no
// imports, interpreter or target subsystem.
func (p *COFFParser) Parse(data []byte, name string) (types.Object, error) {
	obj := types.Object{
		ExecutableFormat: "COFF",
		OSType:           "Windows",
		FileType:         "Windows object file",
		Libraries:        []string{},
	}

	sr := binary.NewBytesReader(data, name)
	fh, err := readFileHeader(sr, 0)
	if err != nil {
		return obj, err
	}
	if _, err := readSections(sr, fh); err != nil {
		return obj, err
	}
	if fh.symPtr != 0 && fh.symbols != 0 && !sr.InBounds(int64(fh.symPtr), int64(fh.symbols)*coffSymbolSize) {
		return obj, &types.CorruptedFileError{Path: name, Reason: "symbol table lies outside the file", Offset: 8}
	}

	obj.Is64 = types.COFF64BitMachines[fh.machine]
	obj.CPUType = types.COFFMachines[fh.machine]
	obj.IsStripped = fh.chars&imageFileDebugStripped != 0 || fh.symbols == 0
	return obj, nil
}
