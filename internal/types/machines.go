package types

// COFFMachines maps IMAGE_FILE_MACHINE_* values shared by PE images and
// COFF objects to display names.
var COFFMachines = map[uint16]string{
	0x0000: "Unknown",
	0x0184: "Alpha AXP (32-Bit)",
	0x0284: "Alpha 64 (64-Bit)",
	0x01d3: "Matsushita AM33",
	0x8664: "x64",
	0x01c0: "Arm",
	0xaa64: "Arm (64-Bit)",
	0x01c4: "ARM Thumb-2",
	0x0ebc: "EFI bytecode",
	0x014c: "Intel 386",
	0x0200: "Intel Itanium",
	0x6232: "LoongArch (32-Bit)",
	0x6264: "LoongArch (64-Bit)",
	0x9041: "Mitsubishi M32R",
	0x0266: "MIPS16",
	0x0366: "MIPS with FPU",
	0x0466: "MIPS16 with FPU",
	0x01f0: "PowerPC",
	0x01f1: "PowerPC with floating point support",
	0x0166: "MIPS",
	0x5032: "RISC-V (32-Bit)",
	0x5064: "RISC-V (64-Bit)",
	0x5128: "RISC-V 128-Bit",
	0x01a2: "Hitachi SH3",
	0x01a3: "Hitachi SH3 DSP",
	0x01a6: "Hitachi SH4",
	0x01a8: "Hitachi SH5",
	0x01c2: "Thumb",
	0x0169: "MIPS (Little-endian) WCE v2",
}

// COFF64BitMachines lists machines whose native word is 64 bits wide.
var COFF64BitMachines = map[uint16]bool{
	0x0284: true,
	0x8664: true,
	0xaa64: true,
	0x0200: true,
	0x6264: true,
	0x5064: true,
	0x5128: true,
}
