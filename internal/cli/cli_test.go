package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/unildd/internal/testutil"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func linuxELF() []byte {
	return testutil.ELF(testutil.ELFOptions{
		Class64: true,
		Type:    testutil.ETDyn,
		Interp:  "/lib64/ld-linux-x86-64.so.2",
		Needed:  []string{"libc.so.6"},
		Notes:   []testutil.Note{testutil.ABITag(0, false)},
	})
}

func TestRoot_Table(t *testing.T) {
	ar := testutil.Archive(testutil.GNU,
		testutil.ArchiveMember{Name: "a.o", Data: linuxELF()},
		testutil.ArchiveMember{Name: "junk.o", Data: []byte("junkjunk")},
	)
	path := writeFile(t, "libfoo.a", ar)

	out, _, err := execute(t, path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "OBJECT")
	assert.Contains(t, lines[1], path+" -> a.o")
	assert.Contains(t, lines[1], "x86-64")
	assert.Contains(t, lines[1], "libc.so.6, linux-vdso.so.1")
	assert.Contains(t, lines[2], "junk.o")
	assert.Contains(t, lines[2], "[1786080875]")
}

func TestRoot_JSON(t *testing.T) {
	path := writeFile(t, "ls", linuxELF())

	out, _, err := execute(t, "-o", "json", path)
	require.NoError(t, err)

	var reports []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, path, reports[0]["path"])

	objects := reports[0]["objects"].([]any)
	require.Len(t, objects, 1)
	obj := objects[0].(map[string]any)
	assert.Equal(t, "ls", obj["name"])
	assert.Equal(t, "Linux", obj["os_type"])
	assert.Nil(t, obj["error"])
	assert.NotContains(t, obj, "host")
}

func TestRoot_YAML(t *testing.T) {
	path := writeFile(t, "tool.exe", testutil.PE(testutil.PEOptions{
		Is64:      true,
		Subsystem: testutil.SubsystemCUI,
		Imports:   []string{"KERNEL32.dll"},
	}))

	out, _, err := execute(t, "--format", "yaml", path)
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Objects, 1)
	assert.Equal(t, "PE32+", reports[0].Objects[0].ExecutableFormat)
	assert.Equal(t, []string{"KERNEL32.dll"}, reports[0].Objects[0].Libraries)
}

func TestRoot_HostCheck(t *testing.T) {
	path := writeFile(t, "ls", linuxELF())

	out, _, err := execute(t, "-o", "json", "--host-check", path)
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports[0].Objects, 1)
	assert.Contains(t, []string{"native", "foreign"}, string(reports[0].Objects[0].Host))
}

func TestRoot_MissingFileExitsNonZero(t *testing.T) {
	good := writeFile(t, "ls", linuxELF())

	out, errOut, err := execute(t, good, "/nonexistent/file")
	require.ErrorIs(t, err, ErrReadFailed)
	assert.Contains(t, errOut, "/nonexistent/file")
	assert.Contains(t, out, "ls")
}

func TestRoot_EmptyFileExitsNonZero(t *testing.T) {
	path := writeFile(t, "empty", nil)

	_, errOut, err := execute(t, path)
	require.ErrorIs(t, err, ErrReadFailed)
	assert.Contains(t, errOut, "buffer is empty")
}

func TestRoot_ObjectErrorsAreNotFailures(t *testing.T) {
	path := writeFile(t, "zeros", make([]byte, 10))

	out, _, err := execute(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "[-2]")
}

func TestRoot_InvalidFormat(t *testing.T) {
	path := writeFile(t, "ls", linuxELF())

	_, _, err := execute(t, "-o", "xml", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRoot_Config(t *testing.T) {
	inner := testutil.Archive(testutil.GNU, testutil.ArchiveMember{Name: "x.o", Data: linuxELF()})
	path := writeFile(t, "lib.a", testutil.Archive(testutil.GNU, testutil.ArchiveMember{Name: "inner.a", Data: inner}))
	cfg := writeFile(t, "unildd.yaml", []byte("format: json\nmax_depth: 1\n"))

	out, _, err := execute(t, "--config", cfg, path)
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports[0].Objects, 1)
	require.NotNil(t, reports[0].Objects[0].Error)
	assert.Equal(t, int64(-1), int64(reports[0].Objects[0].Error.Code))

	// Flags override the file.
	out, _, err = execute(t, "--config", cfg, "--max-depth", "4", "-o", "table", path)
	require.NoError(t, err)
	assert.Contains(t, out, "x.o")
	assert.NotContains(t, out, "[-1]")
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults for empty file", func(t *testing.T) {
		cfg, err := LoadConfig(writeFile(t, "c.yaml", nil))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, "c.yaml", []byte("colour: blue\n")))
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, "c.yaml", []byte("format: xml\n")))
		assert.ErrorContains(t, err, "unsupported format")
	})

	t.Run("negative depth", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, "c.yaml", []byte("max_depth: -1\n")))
		assert.ErrorContains(t, err, "max_depth")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/unildd.yaml")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestTree(t *testing.T) {
	x86 := testutil.MachO(testutil.MachOOptions{Is64: true, CPU: testutil.CPUX86_64})
	fat := testutil.Fat([]testutil.FatArch{{CPU: testutil.CPUX86_64, Data: x86}}, false)
	ar := testutil.Archive(testutil.GNU,
		testutil.ArchiveMember{Name: "universal", Data: fat},
		testutil.ArchiveMember{Name: "a.o", Data: linuxELF()},
	)
	path := writeFile(t, "lib.a", ar)

	out, _, err := execute(t, "tree", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "lib.a [Archive, "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ universal @0x"))
	assert.Contains(t, lines[1], "Fat Mach-O")
	assert.True(t, strings.HasPrefix(lines[2], "│  └─ 1. universal @0x"))
	assert.Contains(t, lines[2], "Mach-O")
	assert.True(t, strings.HasPrefix(lines[3], "└─ a.o @0x"))
	assert.Contains(t, lines[3], "ELF")
}

func TestTree_DepthLimit(t *testing.T) {
	ar := testutil.Archive(testutil.GNU, testutil.ArchiveMember{Name: "a.o", Data: linuxELF()})
	path := writeFile(t, "lib.a", ar)

	out, _, err := execute(t, "tree", "--max-depth", "0", path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "(depth limit)")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "unildd version ")
	assert.Contains(t, out, "Go version: go")
}

func TestRoot_RequiresArgs(t *testing.T) {
	_, _, err := execute(t)
	assert.Error(t, err)
}
