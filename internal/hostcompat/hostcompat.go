// Package hostcompat compares object records against the machine the
// process runs on.
package hostcompat

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/simonhull/unildd/internal/types"
)

// Compat is the verdict of Host.Check.
type Compat string

const (
	// Native means the object targets this host's OS and CPU.
	Native Compat = "native"
	// Foreign means the object targets another OS or CPU.
	Foreign Compat = "foreign"
	// Unknown means the record lacks the OS or CPU needed to decide.
	Unknown Compat = "unknown"
)

// Host is the running machine, with OS and Arch spelled like GOOS and
// GOARCH.
type Host struct {
	OS   string
	Arch string
}

// Detect queries the host with gopsutil. Fields gopsutil cannot
// determine fall back to the values the binary was built for.
func Detect(ctx context.Context) (Host, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Host{}, fmt.Errorf("host detection cancelled: %w", ctx.Err())
		}
		return Host{OS: runtime.GOOS, Arch: runtime.GOARCH}, nil
	}

	h := Host{OS: strings.ToLower(info.OS), Arch: normalizeArch(info.KernelArch)}
	if h.OS == "" {
		h.OS = runtime.GOOS
	}
	if h.Arch == "" {
		h.Arch = runtime.GOARCH
	}
	return h, nil
}

// archAliases maps uname machine names to GOARCH.
var archAliases = map[string]string{
	"x86_64":  "amd64",
	"amd64":   "amd64",
	"aarch64": "arm64",
	"arm64":   "arm64",
	"i386":    "386",
	"i686":    "386",
	"x86":     "386",
	"armv6l":  "arm",
	"armv7l":  "arm",
	"riscv64": "riscv64",
	"ppc64le": "ppc64le",
	"ppc64":   "ppc64",
	"s390x":   "s390x",
}

func normalizeArch(machine string) string {
	return archAliases[strings.ToLower(machine)]
}

// cpuNames lists the CPUType spellings each GOARCH can execute.
var cpuNames = map[string][]string{
	"amd64":   {"x86-64", "x86_64", "x64", "x86", "Intel 386"},
	"386":     {"x86", "Intel 386"},
	"arm64":   {"Arm (64-Bit)", "ARM64"},
	"arm":     {"Arm (32-Bit)", "ARM", "Arm", "ARM Thumb-2"},
	"riscv64": {"RISC-V"},
	"ppc64le": {"PowerPC (64-Bit)"},
	"ppc64":   {"PowerPC (64-Bit)", "PowerPC64"},
	"s390x":   {"S390x"},
}

// osNames lists the OSType spellings that run natively on each GOOS.
var osNames = map[string][]string{
	"linux":   {"Linux"},
	"android": {"Android", "Linux"},
	"darwin":  {"MacOS", "Mac Catalyst"},
	"windows": {"Windows"},
	"freebsd": {"FreeBSD"},
	"openbsd": {"OpenBSD"},
	"netbsd":  {"NetBSD"},
	"solaris": {"Solaris"},
	"illumos": {"Illumos", "Solaris"},
}

// Check reports whether obj could run on h.
func (h Host) Check(obj types.Object) Compat {
	if obj.OSType == "" || obj.CPUType == "" {
		return Unknown
	}
	if contains(osNames[h.OS], obj.OSType) && contains(cpuNames[h.Arch], obj.CPUType) {
		return Native
	}
	return Foreign
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
