// Package macho extracts object metadata from Mach-O files and enumerates
// the slices of fat (universal) binaries.
package macho

import (
	"bytes"
	gomacho "debug/macho"
	"errors"
	"fmt"
	"strings"

	"github.com/simonhull/unildd/internal/registry"
	"github.com/simonhull/unildd/internal/types"
)

func init() {
	registry.Register(types.FormatMachO, &Parser{})
	registry.RegisterContainer(types.FormatFat, &FatParser{})
}

// Parser implements registry.LeafParser for thin Mach-O files.
type Parser struct{}

// Parse extracts the metadata record for a single-architecture Mach-O.
// Mach-O has no interpreter field; dyld is implied.
func (p *Parser) Parse(data []byte, name string) (types.Object, error) {
	obj := types.Object{ExecutableFormat: "Mach-O", Libraries: []string{}}

	f, err := gomacho.NewFile(bytes.NewReader(data))
	if err != nil {
		return obj, mapError(err, name)
	}

	cpu := uint32(f.Cpu)
	obj.Is64 = f.Magic == gomacho.Magic64
	obj.CPUType = cpuNames[cpu]
	obj.CPUSubtype = subtypeName(cpu, f.SubCpu)
	obj.FileType = fileTypeNames[uint32(f.Type)]
	obj.OSType = platform(f)
	obj.IsStripped = stripped(f)
	obj.Libraries = append(obj.Libraries, libraries(f)...)

	return obj, nil
}

func mapError(err error, name string) error {
	var fe *gomacho.FormatError
	if errors.As(err, &fe) {
		msg := fe.Error()
		if strings.Contains(msg, "magic") {
			return &types.BadMagicError{Path: name, Reason: msg}
		}
		return &types.CorruptedFileError{Path: name, Reason: msg, Offset: -1}
	}
	return fmt.Errorf("%s: reading Mach-O header: %w", name, err)
}

// platform reports the target OS. LC_BUILD_VERSION wins over the legacy
// LC_VERSION_MIN_* commands.
func platform(f *gomacho.File) string {
	legacy := ""
	for _, l := range f.Loads {
		raw := l.Raw()
		if len(raw) < 8 {
			continue
		}
		cmd := f.ByteOrder.Uint32(raw)
		switch {
		case cmd == lcBuildVersion && len(raw) >= 12:
			return platformNames[f.ByteOrder.Uint32(raw[8:])]
		case legacy == "":
			legacy = versionMinPlatforms[cmd]
		}
	}
	return legacy
}

// Symbol type bits from mach-o/nlist.h.
const (
	nStab = 0xe0
	nType = 0x0e
	nExt  = 0x01
	nSect = 0x0e
)

// stripped reports whether the symbol table lacks debugging stabs and
// local definitions, which is what strip(1) removes.
func stripped(f *gomacho.File) bool {
	if f.Symtab == nil {
		return true
	}
	for _, s := range f.Symtab.Syms {
		if s.Type&nStab != 0 {
			return false
		}
		if s.Type&nExt == 0 && s.Type&nType == nSect {
			return false
		}
	}
	return true
}

// libraries lists every dylib load command in command order, including
// weak, lazy, re-exported and upward links.
func libraries(f *gomacho.File) []string {
	var libs []string
	for _, l := range f.Loads {
		if d, ok := l.(*gomacho.Dylib); ok {
			libs = append(libs, d.Name)
			continue
		}
		raw := l.Raw()
		if len(raw) < 12 {
			continue
		}
		switch f.ByteOrder.Uint32(raw) {
		case lcLoadWeakDylib, lcReexportDylib, lcLazyLoadDylib, lcLoadUpwardDylib:
		default:
			continue
		}
		off := f.ByteOrder.Uint32(raw[8:])
		if off >= uint32(len(raw)) {
			continue
		}
		name := raw[off:]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		if len(name) > 0 {
			libs = append(libs, string(name))
		}
	}
	return libs
}
