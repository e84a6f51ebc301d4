package types

import (
	"strconv"

	"github.com/simonhull/unildd/internal/binary"
)

// Format identifies an object or container format.
type Format int

const (
	// FormatUnknown represents an unrecognized format.
	FormatUnknown Format = iota
	// FormatELF represents ELF executables, shared objects and relocatables.
	FormatELF
	// FormatMachO represents single-architecture Mach-O files.
	FormatMachO
	// FormatFat represents fat (universal) Mach-O containers.
	FormatFat
	// FormatArchive represents ar archives (static libraries).
	FormatArchive
	// FormatThinArchive represents GNU thin archives, whose members live in other files.
	FormatThinArchive
	// FormatPE represents PE32 and PE32+ images.
	FormatPE
	// FormatCOFF represents bare COFF object files.
	FormatCOFF
	// FormatDOS represents MZ executables without a PE header.
	FormatDOS
	// FormatCOFFImport represents short-form COFF import library members.
	FormatCOFFImport
	// FormatCOFFBigObj represents /bigobj COFF objects.
	FormatCOFFBigObj
)

var formatNames = [...]string{
	FormatUnknown:     "Unknown",
	FormatELF:         "ELF",
	FormatMachO:       "Mach-O",
	FormatFat:         "Fat Mach-O",
	FormatArchive:     "Archive",
	FormatThinArchive: "Thin archive",
	FormatPE:          "PE",
	FormatCOFF:        "COFF",
	FormatDOS:         "MS-DOS",
	FormatCOFFImport:  "COFF import library",
	FormatCOFFBigObj:  "COFF bigobj",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// Kind is the shape of a classified buffer.
type Kind int

const (
	// KindUnknown means no known magic matched.
	KindUnknown Kind = iota
	// KindFlat is a single object handled by a leaf parser.
	KindFlat
	// KindFat is a multi-architecture container.
	KindFat
	// KindArchive is a container of named members.
	KindArchive
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindFat:
		return "fat"
	case KindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// Container reports whether k holds nested objects.
func (k Kind) Container() bool {
	return k == KindFat || k == KindArchive
}

// Classification is the result of inspecting a buffer's leading bytes.
type Classification struct {
	Kind   Kind
	Format Format
	// Magic holds the first four bytes read big-endian, or zero when the
	// buffer is shorter than that.
	Magic uint32
}

const (
	elfMagic = "\x7fELF"

	archMagic = "!<arch>\n"
	thinMagic = "!<thin>\n"

	machoMagic32   = 0xfeedface
	machoMagic64   = 0xfeedfacf
	machoCigam32   = 0xcefaedfe
	machoCigam64   = 0xcffaedfe
	fatMagic       = 0xcafebabe
	fatMagic64     = 0xcafebabf
	fatMaxArchs    = 45 // Java class files share 0xcafebabe and start their version at 45
	coffMaxSection = 96
)

// Classify inspects the leading bytes of data and decides which kind of
// object it holds.
//
// Classification never fails and never reads past len(data). Unrecognized
// input yields KindUnknown; reporting that as an error is the caller's job.
func Classify(data []byte) Classification {
	sr := binary.NewBytesReader(data, "")
	size := sr.Size()

	var c Classification
	if magic, err := binary.ReadBE[uint32](sr, 0, "magic"); err == nil {
		c.Magic = magic
	}

	if size >= 8 {
		switch string(data[:8]) {
		case archMagic:
			c.Kind, c.Format = KindArchive, FormatArchive
			return c
		case thinMagic:
			c.Kind, c.Format = KindArchive, FormatThinArchive
			return c
		}
	}

	if size >= 4 {
		if string(data[:4]) == elfMagic {
			c.Kind, c.Format = KindFlat, FormatELF
			return c
		}

		switch c.Magic {
		case machoMagic32, machoMagic64, machoCigam32, machoCigam64:
			c.Kind, c.Format = KindFlat, FormatMachO
			return c
		case fatMagic, fatMagic64:
			nfat, err := binary.ReadBE[uint32](sr, 4, "fat arch count")
			if err != nil || nfat < fatMaxArchs {
				c.Kind, c.Format = KindFat, FormatFat
				return c
			}
		}
	}

	if size >= 2 && data[0] == 'M' && data[1] == 'Z' {
		c.Kind, c.Format = KindFlat, classifyMZ(sr)
		return c
	}

	if f := classifyCOFF(sr); f != FormatUnknown {
		c.Kind, c.Format = KindFlat, f
		return c
	}

	return c
}

// classifyMZ separates PE images from plain DOS executables. A buffer too
// short to locate the PE signature is reported as PE so that the parser
// can surface the truncation.
func classifyMZ(sr *binary.SafeReader) Format {
	lfanew, err := binary.ReadLE[uint32](sr, 0x3c, "e_lfanew")
	if err != nil {
		return FormatPE
	}
	sig, err := sr.Slice(int64(lfanew), 4, "PE signature")
	if err != nil {
		return FormatPE
	}
	if string(sig) == "PE\x00\x00" {
		return FormatPE
	}
	return FormatDOS
}

func classifyCOFF(sr *binary.SafeReader) Format {
	machine, err := binary.ReadLE[uint16](sr, 0, "machine")
	if err != nil {
		return FormatUnknown
	}
	second, err := binary.ReadLE[uint16](sr, 2, "section count")
	if err != nil {
		return FormatUnknown
	}

	// Anonymous object header shared by import members and bigobj files.
	if machine == 0 && second == 0xffff {
		version, err := binary.ReadLE[uint16](sr, 4, "anon version")
		if err != nil {
			return FormatUnknown
		}
		if version >= 2 {
			return FormatCOFFBigObj
		}
		return FormatCOFFImport
	}

	if _, known := COFFMachines[machine]; !known || machine == 0 {
		return FormatUnknown
	}
	optSize, err := binary.ReadLE[uint16](sr, 16, "optional header size")
	if err != nil {
		return FormatUnknown
	}
	if optSize != 0 || second > coffMaxSection {
		return FormatUnknown
	}
	return FormatCOFF
}
