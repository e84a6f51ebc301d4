package types

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func peHeader(lfanew uint32, sig string) []byte {
	buf := make([]byte, 0x40)
	copy(buf, "MZ")
	binary.LittleEndian.PutUint32(buf[0x3c:], lfanew)
	if sig != "" {
		for len(buf) < int(lfanew) {
			buf = append(buf, 0)
		}
		buf = append(buf, sig...)
		buf = append(buf, make([]byte, 20)...)
	}
	return buf
}

func coffHeader(machine, sections, optSize uint16) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, machine)
	binary.Write(buf, binary.LittleEndian, sections)
	binary.Write(buf, binary.LittleEndian, uint32(0)) // timestamp
	binary.Write(buf, binary.LittleEndian, uint32(0)) // symbol table
	binary.Write(buf, binary.LittleEndian, uint32(0)) // symbol count
	binary.Write(buf, binary.LittleEndian, optSize)
	binary.Write(buf, binary.LittleEndian, uint16(0)) // characteristics
	return buf.Bytes()
}

func fatHeader(magic, nfat uint32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, magic)
	binary.Write(buf, binary.BigEndian, nfat)
	return buf.Bytes()
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantKind   Kind
		wantFormat Format
	}{
		{"ELF", []byte("\x7fELF\x02\x01\x01\x00"), KindFlat, FormatELF},
		{"Mach-O 64 LE", []byte{0xcf, 0xfa, 0xed, 0xfe, 0, 0, 0, 0}, KindFlat, FormatMachO},
		{"Mach-O 32 LE", []byte{0xce, 0xfa, 0xed, 0xfe}, KindFlat, FormatMachO},
		{"Mach-O 32 BE", []byte{0xfe, 0xed, 0xfa, 0xce}, KindFlat, FormatMachO},
		{"Mach-O 64 BE", []byte{0xfe, 0xed, 0xfa, 0xcf}, KindFlat, FormatMachO},
		{"fat", fatHeader(0xcafebabe, 2), KindFat, FormatFat},
		{"fat64", fatHeader(0xcafebabf, 1), KindFat, FormatFat},
		{"fat without count", []byte{0xca, 0xfe, 0xba, 0xbe}, KindFat, FormatFat},
		{"java class", fatHeader(0xcafebabe, 0x00000034), KindUnknown, FormatUnknown},
		{"archive", []byte("!<arch>\n"), KindArchive, FormatArchive},
		{"thin archive", []byte("!<thin>\nrest"), KindArchive, FormatThinArchive},
		{"PE", peHeader(0x40, "PE\x00\x00"), KindFlat, FormatPE},
		{"DOS", peHeader(0x40, "NE\x00\x00"), KindFlat, FormatDOS},
		{"MZ truncated", []byte("MZ\x90\x00"), KindFlat, FormatPE},
		{"MZ signature past end", peHeader(0x1000, ""), KindFlat, FormatPE},
		{"COFF x64", coffHeader(0x8664, 3, 0), KindFlat, FormatCOFF},
		{"COFF i386", coffHeader(0x014c, 1, 0), KindFlat, FormatCOFF},
		{"COFF with optional header", coffHeader(0x8664, 3, 0xf0), KindUnknown, FormatUnknown},
		{"COFF too many sections", coffHeader(0x8664, 200, 0), KindUnknown, FormatUnknown},
		{"COFF unknown machine", coffHeader(0x1234, 1, 0), KindUnknown, FormatUnknown},
		{"import library", coffHeader(0, 0xffff, 0), KindFlat, FormatCOFFImport},
		{"zeros", make([]byte, 10), KindUnknown, FormatUnknown},
		{"empty", nil, KindUnknown, FormatUnknown},
		{"one byte", []byte{0x7f}, KindUnknown, FormatUnknown},
		{"text", []byte("hello, world"), KindUnknown, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.data)
			if got.Kind != tt.wantKind {
				t.Errorf("Classify().Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Format != tt.wantFormat {
				t.Errorf("Classify().Format = %v, want %v", got.Format, tt.wantFormat)
			}
		})
	}
}

func TestClassify_BigObj(t *testing.T) {
	data := coffHeader(0, 0xffff, 0)
	binary.LittleEndian.PutUint16(data[4:], 2)

	got := Classify(data)
	if got.Format != FormatCOFFBigObj {
		t.Errorf("Classify().Format = %v, want %v", got.Format, FormatCOFFBigObj)
	}
}

func TestClassify_Magic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"short", []byte{1, 2, 3}, 0},
		{"zeros", make([]byte, 10), 0},
		{"text", []byte("GIF89a"), 0x47494638},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.data).Magic; got != tt.want {
				t.Errorf("Classify().Magic = 0x%08x, want 0x%08x", got, tt.want)
			}
		})
	}
}

func TestClassify_DoesNotModifyInput(t *testing.T) {
	data := peHeader(0x40, "PE\x00\x00")
	orig := append([]byte(nil), data...)
	Classify(data)
	if !bytes.Equal(data, orig) {
		t.Error("Classify modified its input")
	}
}

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatELF, "ELF"},
		{FormatMachO, "Mach-O"},
		{FormatFat, "Fat Mach-O"},
		{FormatDOS, "MS-DOS"},
		{Format(99), "Format(99)"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.format), got, tt.want)
		}
	}
}

func TestKind_Container(t *testing.T) {
	if KindFlat.Container() || KindUnknown.Container() {
		t.Error("flat and unknown kinds are not containers")
	}
	if !KindFat.Container() || !KindArchive.Container() {
		t.Error("fat and archive kinds are containers")
	}
}
