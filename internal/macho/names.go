package macho

// Architecture constants from mach/machine.h.
const (
	cpuArchABI64  = 0x01000000
	cpuX86        = 0x7
	cpuARM        = 0xc
	cpuX86_64     = cpuX86 | cpuArchABI64
	cpuARM64      = cpuARM | cpuArchABI64
	cpuSubtypeCap = 0xff000000
)

var cpuNames = map[uint32]string{
	0x1:       "VAX",
	0x2:       "ROMP",
	0x4:       "NS32032",
	0x5:       "NS32332",
	0x6:       "MC680x0",
	cpuX86:    "x86",
	0x8:       "MIPS",
	0x9:       "NS32352",
	0xa:       "MC98000",
	0xb:       "HP-PA",
	cpuARM:    "ARM",
	0xd:       "MC88000",
	0xe:       "SPARC",
	0xf:       "i860 (Big-endian)",
	0x10:      "i860 (Little-endian)",
	0x11:      "RS/6000",
	0x12:      "PowerPC",
	0x1000012: "PowerPC64",
	cpuX86_64: "x86_64",
	cpuARM64:  "ARM64",
}

var armSubtypes = map[uint32]string{
	0x0:  "All ARM processors",
	0x1:  "ARM-A500 ARCH or newer",
	0x2:  "ARM-A500 or newer",
	0x3:  "ARM-A440 or newer",
	0x4:  "ARM-M4 or newer",
	0x5:  "ARM-V4T or newer",
	0x6:  "ARM-V6 or newer",
	0x7:  "ARM-V5TEJ or newer",
	0x8:  "ARM-XSCALE or newer",
	0x9:  "ARM-V7 or newer",
	0xa:  "ARM-V7F (Cortex A9) or newer",
	0xb:  "ARM-V7S (Swift) or newer",
	0xc:  "ARM-V7K (Kirkwood40) or newer",
	0xd:  "ARM-V8 or newer",
	0xe:  "ARM-V6M or newer",
	0xf:  "ARM-V7M or newer",
	0x10: "ARM-V7EM or newer",
}

var arm64Subtypes = map[uint32]string{
	0x0: "All ARM64 processors",
	0x1: "ARM64-V8 or newer",
	0x2: "ARM64E",
}

var x86Subtypes = map[uint32]string{
	0x03: "All x86 processors",
	0x04: "486 or newer",
	0x84: "486SX or newer",
	0x56: "Pentium M5 or newer",
	0x67: "Celeron or newer",
	0x77: "Celeron Mobile",
	0x08: "Pentium 3 or newer",
	0x18: "Pentium 3-M or newer",
	0x28: "Pentium 3-XEON or newer",
	0x0a: "Pentium-4 or newer",
	0x0b: "Itanium or newer",
	0x1b: "Itanium-2 or newer",
	0x0c: "XEON or newer",
	0x1c: "XEON-MP or newer",
}

var x86_64Subtypes = map[uint32]string{
	0x03: "All x86 processors",
	0x08: "Haswell or newer",
}

// subtypeName names a CPU subtype. The capability bits in the high byte
// are ignored.
func subtypeName(cpu, sub uint32) string {
	sub &^= cpuSubtypeCap
	switch cpu {
	case cpuARM:
		return armSubtypes[sub]
	case cpuARM64:
		return arm64Subtypes[sub]
	case cpuX86:
		return x86Subtypes[sub]
	case cpuX86_64:
		return x86_64Subtypes[sub]
	}
	return ""
}

var fileTypeNames = map[uint32]string{
	0x1: "Object file",
	0x2: "Executable",
	0x3: "Fixed VM shared library file",
	0x4: "Core file",
	0x5: "Preloaded executable file",
	0x6: "Shared object",
	0x7: "Dynamic link editor",
	0x8: "Dynamically bound bundle file",
	0x9: "Shared library stub for static linking only, no section contents",
	0xa: "Companion file with only debug sections",
	0xb: "x86_64 kext",
	0xc: "File composed of other Mach-Os to be run in the same userspace sharing a single linkedit",
}

// platformNames maps LC_BUILD_VERSION platform values to an OS.
var platformNames = map[uint32]string{
	1:  "MacOS",
	2:  "IOS",
	3:  "Apple TV Box",
	4:  "Apple Watch",
	5:  "Bridge OS",
	6:  "Mac Catalyst",
	7:  "IOS simulator",
	8:  "Apple TV simulator",
	9:  "Apple watch simulator",
	10: "Driver KIT",
	11: "Apple Vision Pro",
	12: "Apple Vision Pro simulator",
}

// Load commands read from raw bytes.
const (
	lcVersionMinMacOSX   = 0x24
	lcVersionMinIPhoneOS = 0x25
	lcLazyLoadDylib      = 0x20
	lcVersionMinTvOS     = 0x2f
	lcVersionMinWatchOS  = 0x30
	lcBuildVersion       = 0x32
	lcLoadWeakDylib      = 0x80000018
	lcReexportDylib      = 0x8000001f
	lcLoadUpwardDylib    = 0x80000023
)

// versionMinPlatforms maps legacy LC_VERSION_MIN_* commands to an OS.
var versionMinPlatforms = map[uint32]string{
	lcVersionMinMacOSX:   platformNames[1],
	lcVersionMinIPhoneOS: platformNames[2],
	lcVersionMinTvOS:     platformNames[3],
	lcVersionMinWatchOS:  platformNames[4],
}
