// Package elf extracts object metadata from ELF files.
package elf

import (
	"bytes"
	goelf "debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/simonhull/unildd/internal/registry"
	"github.com/simonhull/unildd/internal/types"
)

func init() {
	registry.Register(types.FormatELF, &Parser{})
}

// Parser implements registry.LeafParser for ELF files.
type Parser struct{}

// Parse extracts the metadata record for a single ELF object.
func (p *Parser) Parse(data []byte, name string) (types.Object, error) {
	obj := types.Object{ExecutableFormat: "ELF", Libraries: []string{}}

	f, err := goelf.NewFile(bytes.NewReader(data))
	if err != nil {
		return obj, mapError(err, name)
	}

	machine := uint16(f.Machine)
	obj.Is64 = f.Class == goelf.ELFCLASS64
	obj.CPUType = machineNames[machine]
	obj.Interpreter = interpreter(f)
	obj.FileType = fileType(f, obj.Interpreter)
	obj.IsStripped = f.SectionByType(goelf.SHT_SYMTAB) == nil
	obj.OSType = detectOS(f, obj.Interpreter)

	// A broken dynamic section degrades to no libraries.
	if libs, err := f.ImportedLibraries(); err == nil {
		obj.Libraries = append(obj.Libraries, libs...)
	}
	if obj.OSType == osLinux {
		if vdso := vdsoName(machine, obj.Is64); vdso != "" {
			obj.Libraries = append(obj.Libraries, vdso)
		}
	}

	return obj, nil
}

func mapError(err error, name string) error {
	var fe *goelf.FormatError
	if errors.As(err, &fe) {
		msg := fe.Error()
		if strings.Contains(msg, "bad magic") {
			return &types.BadMagicError{Path: name, Reason: msg}
		}
		return &types.CorruptedFileError{Path: name, Reason: msg, Offset: -1}
	}
	return fmt.Errorf("%s: reading ELF header: %w", name, err)
}

// interpreter returns the PT_INTERP path, or "" if there is none or it
// cannot be read.
func interpreter(f *goelf.File) string {
	for _, prog := range f.Progs {
		if prog.Type != goelf.PT_INTERP {
			continue
		}
		buf, err := io.ReadAll(prog.Open())
		if err != nil {
			return ""
		}
		if i := bytes.IndexByte(buf, 0); i >= 0 {
			buf = buf[:i]
		}
		return string(buf)
	}
	return ""
}

// fileType names e_type. Position-independent executables are ET_DYN
// with an interpreter and are reported as executables.
func fileType(f *goelf.File, interp string) string {
	if f.Type == goelf.ET_DYN && interp != "" {
		return fileTypeNames[uint16(goelf.ET_EXEC)]
	}
	if name, ok := fileTypeNames[uint16(f.Type)]; ok {
		return name
	}
	switch t := uint16(f.Type); {
	case t >= 0xfe00 && t <= 0xfeff:
		return "OS-specific"
	case t >= 0xff00:
		return "CPU-specific"
	}
	return ""
}

func detectOS(f *goelf.File, interp string) string {
	switch abi := byte(f.OSABI); abi {
	case 0x00:
		if os := noteOS(f); os != "" {
			return os
		}
		return stringTableOS(f, interp)
	case 0x06:
		for _, tab := range stringTables(f) {
			if bytes.Contains(tab, []byte("illumos")) {
				return osIllumos
			}
		}
		return osSolaris
	default:
		return osABINames[abi]
	}
}

const ntGNUABITag = 1

// noteOS looks for an ABI tag in the SHT_NOTE sections.
func noteOS(f *goelf.File) string {
	for _, s := range f.Sections {
		if s.Type != goelf.SHT_NOTE {
			continue
		}
		data, err := s.Data()
		if err != nil {
			continue
		}
		if os := parseNotes(data, f.ByteOrder); os != "" {
			return os
		}
	}
	return ""
}

func parseNotes(data []byte, order binary.ByteOrder) string {
	for len(data) >= 12 {
		namesz := uint64(order.Uint32(data[0:4]))
		descsz := uint64(order.Uint32(data[4:8]))
		typ := order.Uint32(data[8:12])
		data = data[12:]

		nameEnd := align4(namesz)
		descEnd := nameEnd + align4(descsz)
		if descEnd > uint64(len(data)) {
			return ""
		}
		name := string(bytes.TrimRight(data[:namesz], "\x00"))
		desc := data[nameEnd : nameEnd+descsz]
		data = data[descEnd:]

		switch name {
		case "GNU":
			if typ != ntGNUABITag || len(desc) < 4 {
				continue
			}
			switch order.Uint32(desc) {
			case 0:
				return osLinux
			case 1:
				return osHurd
			case 2:
				return osSolaris
			case 3:
				return osFreeBSD
			}
		case "Android":
			return osAndroid
		case "OpenBSD":
			return osOpenBSD
		case "NetBSD":
			if typ == 1 {
				return osNetBSD
			}
		case "FreeBSD":
			if typ == 1 {
				return osFreeBSD
			}
		}
	}
	return ""
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// stringHints are tried in order against the lowercased string tables.
var stringHints = []struct {
	os      string
	needles []string
}{
	{osFreeBSD, []string{"fbsd"}},
	{osOpenBSD, []string{"openbsd"}},
	{osLinux, []string{"musl", "glibc", "linux"}},
	{osAndroid, []string{"android"}},
	{osNetBSD, []string{"netbsd"}},
	{osSolaris, []string{"solaris"}},
	{osIllumos, []string{"illumos"}},
}

// stringTableOS guesses the OS from toolchain strings left in the binary.
func stringTableOS(f *goelf.File, interp string) string {
	tables := stringTables(f)
	for _, hint := range stringHints {
		for _, needle := range hint.needles {
			for _, tab := range tables {
				if bytes.Contains(tab, []byte(needle)) {
					return hint.os
				}
			}
		}
	}
	if strings.Contains(interp, "Loader.so") {
		return osSerenity
	}
	return ""
}

// stringTables returns the lowercased contents of every readable
// SHT_STRTAB section.
func stringTables(f *goelf.File) [][]byte {
	var tables [][]byte
	for _, s := range f.Sections {
		if s.Type != goelf.SHT_STRTAB {
			continue
		}
		data, err := s.Data()
		if err != nil {
			continue
		}
		tables = append(tables, bytes.ToLower(data))
	}
	return tables
}
