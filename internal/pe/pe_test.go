package pe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/unildd/internal/testutil"
	"github.com/simonhull/unildd/internal/types"
)

func TestParse_PE32PlusConsole(t *testing.T) {
	data := testutil.PE(testutil.PEOptions{
		Is64:        true,
		Subsystem:   testutil.SubsystemCUI,
		LinkerMajor: 14,
		LinkerMinor: 36,
		Imports:     []string{"KERNEL32.dll", "VCRUNTIME140.dll"},
	})

	obj, err := (&Parser{}).Parse(data, "tool.exe")
	require.NoError(t, err)

	assert.Equal(t, "PE32+", obj.ExecutableFormat)
	assert.True(t, obj.Is64)
	assert.Equal(t, "Windows", obj.OSType)
	assert.Equal(t, "Windows CUI application", obj.FileType)
	assert.Equal(t, "x64", obj.CPUType)
	assert.Empty(t, obj.CPUSubtype)
	assert.Equal(t, "14.36", obj.Interpreter)
	assert.True(t, obj.IsStripped)
	assert.Equal(t, []string{"KERNEL32.dll", "VCRUNTIME140.dll"}, obj.Libraries)
}

func TestParse_PE32DLL(t *testing.T) {
	data := testutil.PE(testutil.PEOptions{
		Subsystem:       testutil.SubsystemGUI,
		Characteristics: testutil.FileDLL,
		LinkerMajor:     2,
		LinkerMinor:     40,
		DebugDir:        true,
	})

	obj, err := (&Parser{}).Parse(data, "foo.dll")
	require.NoError(t, err)
	assert.Equal(t, "PE32", obj.ExecutableFormat)
	assert.False(t, obj.Is64)
	assert.Equal(t, "Intel 386", obj.CPUType)
	assert.Equal(t, "Dynamic-link library", obj.FileType)
	assert.Equal(t, "2.40", obj.Interpreter)
	assert.False(t, obj.IsStripped)
	assert.NotNil(t, obj.Libraries)
	assert.Empty(t, obj.Libraries)
}

func TestParse_Subsystems(t *testing.T) {
	tests := []struct {
		name      string
		subsystem uint16
		os        string
		fileType  string
	}{
		{"native", testutil.SubsystemNative, "Windows", "Device drivers and native windows processes"},
		{"gui", testutil.SubsystemGUI, "Windows", "GUI application"},
		{"efi", testutil.SubsystemEFIApp, "UEFI", "EFI application"},
		{"xbox", testutil.SubsystemXbox, "Xbox", "XBOX"},
		{"unknown", testutil.SubsystemUnknown, "", "Undefined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := (&Parser{}).Parse(testutil.PE(testutil.PEOptions{Is64: true, Subsystem: tt.subsystem}), "x.exe")
			require.NoError(t, err)
			assert.Equal(t, tt.os, obj.OSType)
			assert.Equal(t, tt.fileType, obj.FileType)
		})
	}
}

func TestParse_Stripped(t *testing.T) {
	tests := []struct {
		name string
		opts testutil.PEOptions
		want bool
	}{
		{"no symbols no debug", testutil.PEOptions{}, true},
		{"debug directory", testutil.PEOptions{DebugDir: true}, false},
		{"coff symbols", testutil.PEOptions{Symbols: 2}, false},
		{"debug stripped flag", testutil.PEOptions{Symbols: 2, Characteristics: testutil.FileDebugStripped}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := (&Parser{}).Parse(testutil.PE(tt.opts), "x.exe")
			require.NoError(t, err)
			assert.Equal(t, tt.want, obj.IsStripped)
		})
	}
}

func TestParse_ARM64(t *testing.T) {
	obj, err := (&Parser{}).Parse(testutil.PE(testutil.PEOptions{Is64: true, Machine: testutil.MachineARM64}), "x.exe")
	require.NoError(t, err)
	assert.Equal(t, "Arm (64-Bit)", obj.CPUType)
}

func TestParse_ImportNameOutsideSections(t *testing.T) {
	data := testutil.PE(testutil.PEOptions{Imports: []string{"USER32.dll", "GDI32.dll", "ADVAPI32.dll"}})
	// second descriptor's name RVA now points nowhere
	binary.LittleEndian.PutUint32(data[0x200+importDescriptorSize+12:], 0x900000)

	obj, err := (&Parser{}).Parse(data, "x.exe")
	require.NoError(t, err)
	assert.Equal(t, []string{"USER32.dll"}, obj.Libraries)
}

func TestParse_ImportsBoundedByDirectorySize(t *testing.T) {
	data := testutil.PE(testutil.PEOptions{Imports: []string{"USER32.dll", "GDI32.dll", "ADVAPI32.dll"}})

	// import directory entry: {rva 0x1000, size 4*20}
	entry := make([]byte, 8)
	binary.LittleEndian.PutUint32(entry, 0x1000)
	binary.LittleEndian.PutUint32(entry[4:], 4*importDescriptorSize)
	at := bytes.Index(data, entry)
	require.Positive(t, at)
	binary.LittleEndian.PutUint32(data[at+4:], 2*importDescriptorSize)

	obj, err := (&Parser{}).Parse(data, "x.exe")
	require.NoError(t, err)
	assert.Equal(t, []string{"USER32.dll", "GDI32.dll"}, obj.Libraries)
}

func TestParse_Errors(t *testing.T) {
	valid := testutil.PE(testutil.PEOptions{Is64: true})

	badSig := append([]byte(nil), valid...)
	badSig[0x42] = 'X'

	badOptMagic := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint16(badOptMagic[0x58:], 0x777)

	tests := []struct {
		name string
		data []byte
		want types.Code
	}{
		{"bad signature", badSig, types.CodeBadMagic},
		{"truncated optional header", valid[:0x80], types.CodeTooShort},
		{"truncated dos header", valid[:0x40], types.CodeTooShort},
		{"bad optional magic", badOptMagic, types.CodeCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Parser{}).Parse(tt.data, "broken.exe")
			require.Error(t, err)
			assert.Equal(t, tt.want, types.CodeOf(err), err.Error())
		})
	}
}

func TestCOFFParse(t *testing.T) {
	tests := []struct {
		name     string
		opts     testutil.COFFOptions
		is64     bool
		cpu      string
		stripped bool
	}{
		{"amd64 with symbols", testutil.COFFOptions{Symbols: 3}, true, "x64", false},
		{"i386 no symbols", testutil.COFFOptions{Machine: testutil.MachineI386}, false, "Intel 386", true},
		{"arm64 debug stripped", testutil.COFFOptions{Machine: testutil.MachineARM64, Symbols: 1, Characteristics: testutil.FileDebugStripped}, true, "Arm (64-Bit)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := (&COFFParser{}).Parse(testutil.COFF(tt.opts), "foo.obj")
			require.NoError(t, err)
			assert.Equal(t, "COFF", obj.ExecutableFormat)
			assert.Equal(t, "Windows", obj.OSType)
			assert.Equal(t, "Windows object file", obj.FileType)
			assert.Equal(t, tt.is64, obj.Is64)
			assert.Equal(t, tt.cpu, obj.CPUType)
			assert.Equal(t, tt.stripped, obj.IsStripped)
			assert.Empty(t, obj.Interpreter)
			assert.Empty(t, obj.Libraries)
		})
	}
}

func TestCOFFParse_Errors(t *testing.T) {
	valid := testutil.COFF(testutil.COFFOptions{Symbols: 2})

	badSymPtr := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badSymPtr[8:], 0xffff0000)

	tests := []struct {
		name string
		data []byte
		want types.Code
	}{
		{"truncated header", valid[:12], types.CodeTooShort},
		{"truncated section table", valid[:40], types.CodeTooShort},
		{"symbol table outside file", badSymPtr, types.CodeCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&COFFParser{}).Parse(tt.data, "foo.obj")
			require.Error(t, err)
			assert.Equal(t, tt.want, types.CodeOf(err))
		})
	}
}
