package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/unildd/internal/testutil"
	"github.com/simonhull/unildd/internal/types"
)

func TestMembers_GNU(t *testing.T) {
	a := []byte("first object\x00")
	b := []byte("second")
	c := []byte("third one, odd")

	data := testutil.Archive(testutil.GNU,
		testutil.ArchiveMember{Name: "a.o", Data: a},
		testutil.ArchiveMember{Name: "a_really_long_member_name.o", Data: b},
		testutil.ArchiveMember{Name: "c.o", Data: c},
	)

	members, err := (&Parser{}).Members(data, "libx.a")
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, "a.o", members[0].Name)
	assert.Equal(t, a, members[0].Data)
	assert.Equal(t, "a_really_long_member_name.o", members[1].Name)
	assert.Equal(t, b, members[1].Data)
	assert.Equal(t, "c.o", members[2].Name)
	assert.Equal(t, c, members[2].Data)

	for _, m := range members {
		assert.NoError(t, m.Err)
		assert.Equal(t, m.Data, data[m.Offset:m.Offset+m.Size])
	}
}

func TestMembers_BSD(t *testing.T) {
	data := testutil.Archive(testutil.BSD,
		testutil.ArchiveMember{Name: "foo.o", Data: []byte("foo body")},
		testutil.ArchiveMember{Name: "bar with spaces.o", Data: []byte("bar")},
	)

	members, err := (&Parser{}).Members(data, "libx.a")
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "foo.o", members[0].Name)
	assert.Equal(t, []byte("foo body"), members[0].Data)
	assert.Equal(t, "bar with spaces.o", members[1].Name)
	assert.Equal(t, []byte("bar"), members[1].Data)
	assert.Equal(t, int64(3), members[1].Size)
}

func TestMembers_TrailingPadding(t *testing.T) {
	data := testutil.Archive(testutil.GNU, testutil.ArchiveMember{Name: "a.o", Data: []byte("ab")})
	data = append(data, '\n', '\n')

	members, err := (&Parser{}).Members(data, "libx.a")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestMembers_BadLongNameIsPerMember(t *testing.T) {
	data := []byte("!<arch>\n" +
		testutil.ArchiveHeader("/99", 2) + "xx" +
		testutil.ArchiveHeader("ok.o/", 2) + "yy")

	members, err := (&Parser{}).Members(data, "libx.a")
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "/99", members[0].Name)
	assert.Nil(t, members[0].Data)
	assert.Equal(t, types.CodeDecode, types.CodeOf(members[0].Err))
	assert.Equal(t, "ok.o", members[1].Name)
	assert.NoError(t, members[1].Err)
}

func TestMembers_Errors(t *testing.T) {
	badTerminator := []byte("!<arch>\n" + testutil.ArchiveHeader("a.o/", 2)[:58] + "XX" + "ab")
	badSize := []byte("!<arch>\n" + testutil.ArchiveHeader("a.o/", 0)[:48] + "12z       `\n")
	pastEnd := []byte("!<arch>\n" + testutil.ArchiveHeader("a.o/", 5000) + "short")
	truncatedHeader := []byte("!<arch>\n" + testutil.ArchiveHeader("a.o/", 2)[:40])

	tests := []struct {
		name string
		data []byte
		want types.Code
	}{
		{"empty archive", []byte("!<arch>\n"), types.CodeOther},
		{"only symbol table", testutil.Archive(testutil.GNU), types.CodeOther},
		{"bad terminator", badTerminator, types.CodeCorrupt},
		{"bad size field", badSize, types.CodeDecode},
		{"data past end", pastEnd, types.CodeIO},
		{"truncated header", truncatedHeader, types.CodeTooShort},
		{"not an archive", []byte("!<thin>\nxxxx"), types.CodeBadMagic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Parser{}).Members(tt.data, "libx.a")
			require.Error(t, err)
			assert.Equal(t, tt.want, types.CodeOf(err), err.Error())
		})
	}
}

func TestMembers_EmptyIsErrEmpty(t *testing.T) {
	_, err := (&Parser{}).Members([]byte("!<arch>\n"), "libx.a")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestStub(t *testing.T) {
	stub := (&Parser{}).Stub()
	assert.Equal(t, "Archive", stub.FileType)
	assert.Empty(t, stub.ExecutableFormat)
}
