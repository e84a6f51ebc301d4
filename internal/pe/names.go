package pe

// IMAGE_SUBSYSTEM_* values.
const (
	subsystemUnknown             = 0x0
	subsystemEFIApplication      = 0xa
	subsystemEFIROM              = 0xd
	subsystemXbox                = 0xe
	imageFileDebugStripped       = 0x0200
	imageFileDLL                 = 0x2000
	imageDirectoryEntryImport    = 1
	imageDirectoryEntryDebug     = 6
	importDescriptorSize         = 20
	importDescriptorNameRVAField = 12
)

var subsystemNames = map[uint16]string{
	0x0:  "Undefined",
	0x1:  "Device drivers and native windows processes",
	0x2:  "GUI application",
	0x3:  "Windows CUI application",
	0x5:  "OS/2 CUI application",
	0x7:  "Posix CUI application",
	0x8:  "Native Win9x driver",
	0x9:  "Windows CE application",
	0xa:  "EFI application",
	0xb:  "EFI driver with boot services",
	0xc:  "EFI driver with runtime services",
	0xd:  "EFI ROM image",
	0xe:  "XBOX",
	0x10: "Windows boot application",
}

// subsystemOS maps a subsystem to the environment the image runs in.
func subsystemOS(subsystem uint16) string {
	switch {
	case subsystem == subsystemUnknown:
		return ""
	case subsystem == subsystemXbox:
		return "Xbox"
	case subsystem >= subsystemEFIApplication && subsystem <= subsystemEFIROM:
		return "UEFI"
	}
	return "Windows"
}
