package macho

import (
	"fmt"

	"github.com/simonhull/unildd/internal/binary"
	"github.com/simonhull/unildd/internal/types"
)

const (
	fatMagic   = 0xcafebabe
	fatMagic64 = 0xcafebabf

	fatHeaderSize = 8
	fatArchSize   = 20
	fatArch64Size = 32
	maxFatArches  = 1 << 16
)

// FatParser implements registry.ContainerParser for universal binaries.
type FatParser struct{}

// Stub returns the record reported when the arch table is unusable.
func (p *FatParser) Stub() types.Object {
	return types.Object{ExecutableFormat: "Mach-O", Libraries: []string{}}
}

// Members reads the big-endian fat header and returns one member per
// architecture slice, named "<index>. <name>" with a 1-based index.
// Slices that fall outside the buffer or overlap the header are returned
// with Err set; the others alias data.
func (p *FatParser) Members(data []byte, name string) ([]types.Member, error) {
	sr := binary.NewBytesReader(data, name)

	magic, err := binary.Read[uint32](sr, 0, "fat magic")
	if err != nil {
		return nil, err
	}
	if magic != fatMagic && magic != fatMagic64 {
		return nil, &types.BadMagicError{Path: name, Reason: fmt.Sprintf("0x%08x is not a fat magic", magic)}
	}
	nfat, err := binary.Read[uint32](sr, 4, "fat architecture count")
	if err != nil {
		return nil, err
	}
	if nfat == 0 {
		return nil, &types.CorruptedFileError{Path: name, Reason: "fat header lists no architectures", Offset: 4}
	}
	if nfat > maxFatArches {
		return nil, &types.CorruptedFileError{Path: name, Reason: fmt.Sprintf("implausible architecture count %d", nfat), Offset: 4}
	}

	entrySize := int64(fatArchSize)
	if magic == fatMagic64 {
		entrySize = fatArch64Size
	}
	tableEnd := fatHeaderSize + int64(nfat)*entrySize
	if _, err := sr.Slice(fatHeaderSize, tableEnd-fatHeaderSize, "fat architecture table"); err != nil {
		return nil, err
	}

	members := make([]types.Member, 0, nfat)
	for i := range int64(nfat) {
		r := binary.NewChainReader(binary.NewReader(sr, fatHeaderSize+i*entrySize))
		cpu := binary.ReadChained[uint32](r, "cputype")
		sub := binary.ReadChained[uint32](r, "cpusubtype")
		var off, size uint64
		if magic == fatMagic64 {
			off = binary.ReadChained[uint64](r, "offset")
			size = binary.ReadChained[uint64](r, "size")
		} else {
			off = uint64(binary.ReadChained[uint32](r, "offset"))
			size = uint64(binary.ReadChained[uint32](r, "size"))
		}
		if err := r.Error(); err != nil {
			return nil, err
		}

		m := types.Member{
			Name:       fmt.Sprintf("%d. %s", i+1, name),
			Offset:     int64(off),
			Size:       int64(size),
			CPUType:    cpuNames[cpu],
			CPUSubtype: subtypeName(cpu, sub),
		}

		switch {
		case off > uint64(sr.Size()) || size > uint64(sr.Size()):
			m.Err = &types.CorruptedFileError{Path: m.Name, Reason: fmt.Sprintf("slice [%d, +%d) exceeds file size %d", off, size, sr.Size()), Offset: int64(off)}
		case int64(off) < tableEnd:
			m.Err = &types.CorruptedFileError{Path: m.Name, Reason: "slice overlaps the fat header", Offset: int64(off)}
		default:
			slice, err := sr.Slice(int64(off), int64(size), "fat slice")
			if err != nil {
				m.Err = &types.CorruptedFileError{Path: m.Name, Reason: err.Error(), Offset: int64(off)}
			} else {
				m.Data = slice
			}
		}
		members = append(members, m)
	}

	return members, nil
}
