package elf

// Operating system names reported in Object.OSType.
const (
	osHPUX          = "HP-UX"
	osNetBSD        = "NetBSD"
	osLinux         = "Linux"
	osHurd          = "GNU Hurd"
	osSolaris       = "Solaris"
	osAIX           = "AIX (Monterey)"
	osIRIX          = "IRIX"
	osFreeBSD       = "FreeBSD"
	osTru64         = "Tru64"
	osNovellModesto = "Novell Modesto"
	osOpenBSD       = "OpenBSD"
	osOpenVMS       = "OpenVMS"
	osNonStop       = "NonStop Kernel"
	osAROS          = "AROS"
	osFenixOS       = "FenixOS"
	osCloudABI      = "Nuxi CloudABI"
	osOpenVOS       = "OpenVOS"
	osIllumos       = "Illumos"
	osSerenity      = "SerenityOS"
	osAndroid       = "Android"
)

// osABINames maps EI_OSABI to an OS. 0 (System V) and 6 (Solaris) need
// more context and are resolved by detectOS.
var osABINames = map[byte]string{
	0x01: osHPUX,
	0x02: osNetBSD,
	0x03: osLinux,
	0x04: osHurd,
	0x07: osAIX,
	0x08: osIRIX,
	0x09: osFreeBSD,
	0x0a: osTru64,
	0x0b: osNovellModesto,
	0x0c: osOpenBSD,
	0x0d: osOpenVMS,
	0x0e: osNonStop,
	0x0f: osAROS,
	0x10: osFenixOS,
	0x11: osCloudABI,
	0x12: osOpenVOS,
}

// fileTypeNames maps e_type to a display name.
var fileTypeNames = map[uint16]string{
	0x0000: "Undefined",
	0x0001: "Object file",
	0x0002: "Executable",
	0x0003: "Shared object",
	0x0004: "Core file",
	0xfe00: "OS-specific",
	0xfeff: "OS-specific",
	0xff00: "CPU-specific",
	0xffff: "CPU-specific",
}

const reserved = "Reserved for future use"

// machineNames maps e_machine to a display name.
var machineNames = map[uint16]string{
	0x00:  "Undefined",
	0x01:  "AT&T WE 32100",
	0x02:  "SPARC",
	0x03:  "x86",
	0x04:  "Motorola 68000 (M68k)",
	0x05:  "Motorola 88000 (M88k)",
	0x06:  "Intel MCU",
	0x07:  "Intel 80860",
	0x08:  "MIPS",
	0x09:  "IBM System/370",
	0x0a:  "MIPS RS3000 (Little-endian)",
	0x0b:  reserved,
	0x0c:  reserved,
	0x0d:  reserved,
	0x0e:  reserved,
	0x0f:  "HP PA-RISC",
	0x13:  "Intel 80960",
	0x14:  "PowerPC",
	0x15:  "PowerPC (64-Bit)",
	0x16:  "S390",
	0x17:  "S390x",
	0x18:  reserved,
	0x19:  reserved,
	0x20:  reserved,
	0x21:  reserved,
	0x22:  reserved,
	0x23:  reserved,
	0x24:  "NEC V800",
	0x25:  "Fujitsu FR20",
	0x26:  "TRW RH-32",
	0x27:  "Motorola RCE",
	0x28:  "Arm (32-Bit)",
	0x29:  "Digital Alpha",
	0x2a:  "SuperH",
	0x2b:  "SPARC version 9",
	0x2c:  "Siemens TriCore",
	0x2d:  "Argonaut RISC Core",
	0x2e:  "Hitachi H8/300",
	0x2f:  "Hitachi H8/300H",
	0x30:  "Hitachi H8S",
	0x31:  "Hitachi H8/500",
	0x32:  "Intel Itanium",
	0x33:  "Stanford MIPS-X",
	0x34:  "Motorola ColdFire",
	0x35:  "Motorola M68HC12",
	0x36:  "Fujitsu MMA multimedia accelerator",
	0x37:  "Siemens PCP",
	0x38:  "Sony nCPU Embedded RISC",
	0x39:  "Denso NDR1",
	0x3a:  "Motorola Star*Core",
	0x3b:  "Toyota ME16",
	0x3c:  "STMicroelectronics ST100",
	0x3d:  "Advanced Logic Corp. TinyJ",
	0x3e:  "x86-64",
	0x3f:  "Sony DSP processor",
	0x40:  "Digital Equipment Corp. PDP-10",
	0x41:  "Digital Equipment Corp. PDP-11",
	0x42:  "Siemens FX66 microcontroller",
	0x43:  "STMicroelectronics ST9+ 8/16-Bit microcontroller",
	0x44:  "STMicroelectronics ST7 8-Bit microcontroller",
	0x45:  "Motorola MC68HC16 microcontroller",
	0x46:  "Motorola MC68HC11 microcontroller",
	0x47:  "Motorola MC68HC08 microcontroller",
	0x48:  "Motorola MC68HC05 microcontroller",
	0x49:  "Silicon Graphics SVx",
	0x4a:  "STMicroelectronics ST19 8-Bit microcontroller",
	0x4b:  "Digital VAX",
	0x4c:  "Axis Communications (32-Bit) embedded processor",
	0x4d:  "Infineon Technologies (32-Bit) embedded processor",
	0x4e:  "Element 14 (64-Bit) DSP processor",
	0x4f:  "LSI Logic 16-Bit DSP processor",
	0x8c:  "TMS320C6000 family",
	0xaf:  "MCST Elbrus e2k",
	0xb7:  "Arm (64-Bit)",
	0xdc:  "Zilog Z80",
	0xf3:  "RISC-V",
	0xf7:  "Berkeley packet filter",
	0x101: "WDC 65C816",
}

// vdsoName returns the kernel-provided shared object Linux maps into every
// process for the given machine.
func vdsoName(machine uint16, is64 bool) string {
	switch machine {
	case 0x03, 0x08, 0x28, 0x3e, 0xb7, 0xf3:
		return "linux-vdso.so.1"
	case 0x2a, 0x32:
		return "linux-gate.so.1"
	case 0x15:
		return "linux-vdso64.so.1"
	case 0x14:
		return "linux-vdso32.so.1"
	case 0x16:
		if is64 {
			return "linux-vdso64.so.1"
		}
		return "linux-vdso32.so.1"
	}
	return ""
}
