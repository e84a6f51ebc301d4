// Package archive enumerates the members of ar archives (static libraries)
// in both the GNU/SysV and BSD dialects.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/simonhull/unildd/internal/binary"
	"github.com/simonhull/unildd/internal/registry"
	"github.com/simonhull/unildd/internal/types"
)

func init() {
	registry.RegisterContainer(types.FormatArchive, &Parser{})
}

const (
	magic      = "!<arch>\n"
	headerSize = 60
	headerEnd  = "`\n"

	bsdNamePrefix = "#1/"
	bsdSymdef     = "__.SYMDEF"
)

// ErrEmpty is returned for archives with no object members.
var ErrEmpty = errors.New("archive has no members")

// Parser implements registry.ContainerParser for ar archives.
type Parser struct{}

// Stub returns the record reported when the member table is unusable.
func (p *Parser) Stub() types.Object {
	return types.Object{FileType: "Archive", Libraries: []string{}}
}

// header is one decoded 60-byte member header.
type header struct {
	name string
	size int64
}

// Members walks the member headers in order. Symbol indexes and the GNU
// long-name table are consumed, not reported. A member whose name cannot
// be resolved is returned with Err set; broken headers or member data
// past the end of the buffer fail the whole archive.
func (p *Parser) Members(data []byte, name string) ([]types.Member, error) {
	sr := binary.NewBytesReader(data, name)

	m, err := sr.Slice(0, int64(len(magic)), "archive magic")
	if err != nil {
		return nil, err
	}
	if string(m) != magic {
		return nil, &types.BadMagicError{Path: name, Reason: fmt.Sprintf("%q is not an ar archive", m)}
	}

	var (
		members   []types.Member
		longNames []byte
	)
	for off := int64(len(magic)); off < sr.Size(); {
		if trailingPadding(data[off:]) {
			break
		}

		hdr, err := readHeader(sr, off)
		if err != nil {
			return nil, err
		}
		dataOff := off + headerSize
		body, err := sr.Slice(dataOff, hdr.size, "member data")
		if err != nil {
			return nil, &types.ExtractError{Path: name, Member: hdr.name, Err: err}
		}
		off = dataOff + hdr.size + hdr.size%2

		switch {
		case hdr.name == "/" || hdr.name == "/SYM64/":
			continue
		case hdr.name == "//":
			longNames = body
			continue
		case strings.HasPrefix(hdr.name, bsdSymdef):
			continue
		}

		member := types.Member{Offset: dataOff, Size: hdr.size, Data: body}
		switch {
		case strings.HasPrefix(hdr.name, bsdNamePrefix):
			n, err := strconv.Atoi(hdr.name[len(bsdNamePrefix):])
			if err != nil || n < 0 || int64(n) > hdr.size {
				member.Name, member.Data = hdr.name, nil
				member.Err = &types.DecodeError{Path: name, What: fmt.Sprintf("BSD member name %q", hdr.name), Err: errOrRange(err)}
				break
			}
			member.Name = strings.TrimRight(string(body[:n]), "\x00")
			if strings.HasPrefix(member.Name, bsdSymdef) {
				continue
			}
			member.Offset += int64(n)
			member.Size -= int64(n)
			member.Data = body[n:]
		case len(hdr.name) > 1 && hdr.name[0] == '/' && isDigits(hdr.name[1:]):
			resolved, err := longName(longNames, hdr.name[1:])
			if err != nil {
				member.Name, member.Data = hdr.name, nil
				member.Err = &types.DecodeError{Path: name, What: fmt.Sprintf("long member name %q", hdr.name), Err: err}
				break
			}
			member.Name = resolved
		default:
			member.Name = strings.TrimSuffix(hdr.name, "/")
		}
		members = append(members, member)
	}

	if len(members) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}
	return members, nil
}

func readHeader(sr *binary.SafeReader, off int64) (header, error) {
	cr := binary.NewChainReader(binary.NewReader(sr, off))
	name := cr.String(16, "member name")
	cr.Skip(12 + 6 + 6 + 8) // date, uid, gid, mode
	field := cr.String(10, "member size")
	end := cr.String(2, "member header terminator")
	if err := cr.Error(); err != nil {
		return header{}, err
	}
	if end != headerEnd {
		return header{}, &types.CorruptedFileError{Path: sr.Path(), Reason: "member header has a bad terminator", Offset: off + 58}
	}

	field = strings.TrimSpace(field)
	size, err := strconv.ParseInt(field, 10, 64)
	if err != nil || size < 0 {
		return header{}, &types.DecodeError{Path: sr.Path(), What: fmt.Sprintf("member size %q at offset %d", field, off), Err: errOrRange(err)}
	}
	return header{name: strings.TrimRight(name, " "), size: size}, nil
}

// longName resolves a "/<offset>" reference into the "//" table, where
// entries end with "/\n".
func longName(table []byte, ref string) (string, error) {
	idx, err := strconv.Atoi(ref)
	if err != nil {
		return "", err
	}
	if idx >= len(table) {
		return "", fmt.Errorf("offset %d outside long-name table of %d bytes", idx, len(table))
	}
	entry := table[idx:]
	if end := bytes.IndexByte(entry, '\n'); end >= 0 {
		entry = entry[:end]
	}
	return strings.TrimSuffix(string(entry), "/"), nil
}

var errNegative = errors.New("value out of range")

func errOrRange(err error) error {
	if err != nil {
		return err
	}
	return errNegative
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// trailingPadding reports whether rest is only the newline padding some
// archivers leave after the last member.
func trailingPadding(rest []byte) bool {
	return len(rest) < headerSize && len(bytes.Trim(rest, "\n")) == 0
}
