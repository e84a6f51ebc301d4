// Package pe extracts object metadata from PE images and bare COFF objects.
//
// Headers are decoded directly rather than through debug/pe, which refuses
// images for machines outside a short allow-list.
package pe

import (
	"fmt"

	"github.com/simonhull/unildd/internal/binary"
	"github.com/simonhull/unildd/internal/registry"
	"github.com/simonhull/unildd/internal/types"
)

func init() {
	registry.Register(types.FormatPE, &Parser{})
	registry.Register(types.FormatCOFF, &COFFParser{})
}

const (
	dosLfanewOffset = 0x3c
	peSignature     = "PE\x00\x00"

	optMagicPE32     = 0x10b
	optMagicPE32Plus = 0x20b

	// offsets inside the optional header
	optSubsystem      = 68
	optDirsPE32       = 96
	optDirsPE32Plus   = 112
	maxDataDirs       = 16
	dataDirectorySize = 8
)

// Parser implements registry.LeafParser for PE32 and PE32+ images.
type Parser struct{}

// Parse extracts the metadata record for a PE image. The interpreter
// field carries the linker version, the closest PE has to a loader tag.
func (p *Parser) Parse(data []byte, name string) (types.Object, error) {
	obj := types.Object{Libraries: []string{}}
	sr := binary.NewBytesReader(data, name)

	lfanew, err := binary.ReadLE[uint32](sr, dosLfanewOffset, "e_lfanew")
	if err != nil {
		return obj, err
	}
	sig, err := sr.Slice(int64(lfanew), 4, "PE signature")
	if err != nil {
		return obj, err
	}
	if string(sig) != peSignature {
		return obj, &types.BadMagicError{Path: name, Reason: fmt.Sprintf("invalid PE signature % x", sig)}
	}

	fh, err := readFileHeader(sr, int64(lfanew)+4)
	if err != nil {
		return obj, err
	}
	if fh.optSize == 0 {
		return obj, &types.CorruptedFileError{Path: name, Reason: "image has no optional header", Offset: fh.offset + 16}
	}

	opt := binary.NewChainReader(binary.NewReaderEndian(sr, fh.optOffset(), binary.LittleEndian))
	magic := binary.ReadChained[uint16](opt, "optional header magic")
	major := binary.ReadChained[uint8](opt, "major linker version")
	minor := binary.ReadChained[uint8](opt, "minor linker version")
	if err := opt.Error(); err != nil {
		return obj, err
	}

	var dirsAt int64
	switch magic {
	case optMagicPE32:
		obj.ExecutableFormat = "PE32"
		dirsAt = optDirsPE32
	case optMagicPE32Plus:
		obj.ExecutableFormat = "PE32+"
		obj.Is64 = true
		dirsAt = optDirsPE32Plus
	default:
		return obj, &types.CorruptedFileError{Path: name, Reason: fmt.Sprintf("unknown optional header magic 0x%x", magic), Offset: fh.optOffset()}
	}
	if int64(fh.optSize) < dirsAt {
		return obj, &types.CorruptedFileError{Path: name, Reason: fmt.Sprintf("optional header of %d bytes is too small", fh.optSize), Offset: fh.offset + 16}
	}
	obj.Interpreter = fmt.Sprintf("%d.%d", major, minor)

	subsystem, err := binary.ReadLE[uint16](sr, fh.optOffset()+optSubsystem, "subsystem")
	if err != nil {
		return obj, err
	}
	dirs, err := readDataDirectories(sr, fh, dirsAt)
	if err != nil {
		return obj, err
	}
	sections, err := readSections(sr, fh)
	if err != nil {
		return obj, err
	}

	obj.CPUType = types.COFFMachines[fh.machine]
	obj.OSType = subsystemOS(subsystem)
	if fh.chars&imageFileDLL != 0 {
		obj.FileType = "Dynamic-link library"
	} else {
		obj.FileType = subsystemNames[subsystem]
	}
	obj.IsStripped = fh.chars&imageFileDebugStripped != 0 ||
		(fh.symbols == 0 && directory(dirs, imageDirectoryEntryDebug).size == 0)

	img := &image{sr: sr, sections: sections}
	obj.Libraries = append(obj.Libraries, img.imports(directory(dirs, imageDirectoryEntryImport))...)

	return obj, nil
}

type dataDirectory struct {
	rva  uint32
	size uint32
}

func directory(dirs []dataDirectory, i int) dataDirectory {
	if i < len(dirs) {
		return dirs[i]
	}
	return dataDirectory{}
}

// readDataDirectories reads as many directories as both the declared count
// and the optional header size allow.
func readDataDirectories(sr *binary.SafeReader, fh fileHeader, dirsAt int64) ([]dataDirectory, error) {
	count, err := binary.ReadLE[uint32](sr, fh.optOffset()+dirsAt-4, "NumberOfRvaAndSizes")
	if err != nil {
		return nil, err
	}
	n := min(int64(count), maxDataDirs, (int64(fh.optSize)-dirsAt)/dataDirectorySize)

	r := binary.NewChainReader(binary.NewReaderEndian(sr, fh.optOffset()+dirsAt, binary.LittleEndian))
	dirs := make([]dataDirectory, n)
	for i := range dirs {
		dirs[i].rva = binary.ReadChained[uint32](r, "data directory")
		dirs[i].size = binary.ReadChained[uint32](r, "data directory")
	}
	return dirs, r.Error()
}

// image resolves RVAs against the section table.
type image struct {
	sr       *binary.SafeReader
	sections []section
}

// resolve maps rva to a file offset. RVAs outside every section's raw
// data do not resolve.
func (img *image) resolve(rva uint32) (int64, bool) {
	for _, s := range img.sections {
		if rva < s.va || rva-s.va >= max(s.vsize, s.rawSize) {
			continue
		}
		delta := rva - s.va
		if delta >= s.rawSize {
			return 0, false
		}
		return int64(s.rawPtr) + int64(delta), true
	}
	return 0, false
}

// imports walks the import descriptor table. An unreadable descriptor ends
// the walk; what was read so far is kept.
func (img *image) imports(dir dataDirectory) []string {
	if dir.rva == 0 {
		return nil
	}
	off, ok := img.resolve(dir.rva)
	if !ok {
		return nil
	}

	// Descriptors past the declared directory size are not scanned.
	end := img.sr.Size()
	if dir.size != 0 {
		end = min(end, off+int64(dir.size))
	}

	var libs []string
	for pos := off; pos+importDescriptorSize <= end; pos += importDescriptorSize {
		nameRVA, err := binary.ReadLE[uint32](img.sr, pos+importDescriptorNameRVAField, "import descriptor")
		if err != nil || nameRVA == 0 {
			break
		}
		nameOff, ok := img.resolve(nameRVA)
		if !ok {
			break
		}
		name, err := img.sr.CString(nameOff, "import name")
		if err != nil || name == "" {
			break
		}
		libs = append(libs, name)
	}
	return libs
}
