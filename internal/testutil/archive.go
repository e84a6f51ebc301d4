package testutil

import (
	"fmt"
	"strings"
)

// ArchiveStyle selects the ar member naming convention.
type ArchiveStyle int

const (
	// GNU uses "name/" and a "//" long-name table.
	GNU ArchiveStyle = iota
	// BSD uses "#1/<len>" names stored in front of the member data.
	BSD
)

// ArchiveMember is one file stored in an ar archive.
type ArchiveMember struct {
	Name string
	Data []byte
}

// Archive builds an ar archive. Both styles include a symbol index first
// so readers have to skip it.
func Archive(style ArchiveStyle, members ...ArchiveMember) []byte {
	var b strings.Builder
	b.WriteString("!<arch>\n")

	if style == BSD {
		writeMember(&b, "#1/20", append([]byte("__.SYMDEF SORTED\x00\x00\x00\x00"), 0, 0, 0, 0))
		for _, m := range members {
			name := []byte(m.Name)
			for len(name)%4 != 0 {
				name = append(name, 0)
			}
			writeMember(&b, fmt.Sprintf("#1/%d", len(name)), append(name, m.Data...))
		}
		return []byte(b.String())
	}

	writeMember(&b, "/", []byte{0, 0, 0, 0})

	var longNames strings.Builder
	names := make([]string, len(members))
	for i, m := range members {
		if len(m.Name) < 16 {
			names[i] = m.Name + "/"
			continue
		}
		names[i] = fmt.Sprintf("/%d", longNames.Len())
		longNames.WriteString(m.Name + "/\n")
	}
	if longNames.Len() > 0 {
		writeMember(&b, "//", []byte(longNames.String()))
	}
	for i, m := range members {
		writeMember(&b, names[i], m.Data)
	}
	return []byte(b.String())
}

// ArchiveHeader returns a raw 60-byte member header.
func ArchiveHeader(name string, size int) string {
	return fmt.Sprintf("%-16s%-12s%-6s%-6s%-8s%-10d`\n", name, "0", "0", "0", "644", size)
}

func writeMember(b *strings.Builder, name string, data []byte) {
	b.WriteString(ArchiveHeader(name, len(data)))
	b.Write(data)
	if len(data)%2 == 1 {
		b.WriteByte('\n')
	}
}
