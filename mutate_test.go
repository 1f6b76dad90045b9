package ar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestInsertAppendsThenReplacesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "a.o", []byte("first"))

	a := NewArchive(DialectGNU, Modifiers{}, dir)
	require.NoError(t, a.Insert([]string{path}))
	require.Len(t, a.Members, 1)
	assert.Equal(t, []byte("first"), a.Members[0].Payload)

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))
	require.NoError(t, a.Insert([]string{path}))
	require.Len(t, a.Members, 1)
	assert.Equal(t, []byte("second"), a.Members[0].Payload)
}

func TestInsertDeterministicModeCoercesMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "a.o", []byte("x"))

	a := NewArchive(DialectGNU, Modifiers{}, dir)
	require.NoError(t, a.Insert([]string{path}))

	m := a.Members[0]
	assert.Equal(t, int64(DeterministicUID), m.Uid)
	assert.Equal(t, int64(DeterministicGID), m.Gid)
	assert.Equal(t, int64(DeterministicMode), m.Mode)
	assert.True(t, m.ModTime.IsZero())
}

func TestInsertUpdateOnlySkipsStaleReplace(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "a.o", []byte("first"))

	a := NewArchive(DialectGNU, Modifiers{UseRealTimestampsAndIDs: true}, dir)
	require.NoError(t, a.Insert([]string{path}))
	originalMtime := a.Members[0].ModTime

	a.Modifiers.UpdateOnly = true
	a.Members[0].ModTime = TimestampFromSeconds(originalMtime.Seconds() + 1_000_000)

	require.NoError(t, a.Insert([]string{path}))
	assert.Equal(t, []byte("first"), a.Members[0].Payload, "stale source file should not replace a newer member")
}

func TestInsertBuildsSymbolTableForELFMember(t *testing.T) {
	dir := t.TempDir()
	payload := buildMinimalELF64(t, "bar", stbGLOBAL)
	path := writeTempFile(t, dir, "a.o", payload)

	a := NewArchive(DialectGNU, Modifiers{BuildSymbolTable: true}, dir)
	require.NoError(t, a.Insert([]string{path}))

	require.Len(t, a.Symbols, 1)
	assert.Equal(t, "bar", string(a.Symbols[0].Name))
	assert.Equal(t, uint64(0), a.Symbols[0].MemberIndex)
}

func TestDeleteRemovesMemberAndItsSymbols(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{}, "")
	a.appendMember(&Member{Name: []byte("a.o")})
	a.appendMember(&Member{Name: []byte("b.o")})
	a.Symbols = []*SymbolRef{{Name: []byte("sym"), MemberIndex: 0}}

	require.NoError(t, a.Delete([]string{"a.o"}))

	require.Len(t, a.Members, 1)
	assert.Equal(t, "b.o", string(a.Members[0].Name))
	assert.Empty(t, a.Symbols)
}

func TestExtractFailsOnThinArchive(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(DialectGNUThin, Modifiers{}, dir)
	a.appendMember(&Member{Name: []byte("a.o"), Payload: []byte("x")})

	err := a.Extract([]string{"a.o"})
	assert.ErrorIs(t, err, ErrExtractingFromThin)
}

func TestExtractWritesPayloadToDirectory(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(DialectGNU, Modifiers{}, dir)
	a.appendMember(&Member{Name: []byte("a.o"), Payload: []byte("contents")})

	require.NoError(t, a.Extract([]string{"a.o"}))

	got, err := os.ReadFile(filepath.Join(dir, "a.o"))
	require.NoError(t, err)
	assert.Equal(t, []byte("contents"), got)
}

func TestQuickAppendNeverReplaces(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "a.o", []byte("first"))

	a := NewArchive(DialectGNU, Modifiers{}, dir)
	require.NoError(t, a.QuickAppend([]string{path}))
	require.NoError(t, a.QuickAppend([]string{path}))

	require.Len(t, a.Members, 2)
	assert.Equal(t, "a.o", string(a.Members[0].Name))
	assert.Equal(t, "a.o", string(a.Members[1].Name))
}

func TestMoveToEndPreservesRelativeOrder(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{}, "")
	a.appendMember(&Member{Name: []byte("a.o")})
	a.appendMember(&Member{Name: []byte("b.o")})
	a.appendMember(&Member{Name: []byte("c.o")})
	a.Symbols = []*SymbolRef{{Name: []byte("sym_a"), MemberIndex: 0}}

	require.NoError(t, a.Move([]string{"a.o", "c.o"}, ""))

	names := a.Names()
	assert.Equal(t, []string{"b.o", "a.o", "c.o"}, names)
	assert.Equal(t, uint64(1), a.Symbols[0].MemberIndex)
}

func TestMoveBeforeTarget(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{}, "")
	a.appendMember(&Member{Name: []byte("a.o")})
	a.appendMember(&Member{Name: []byte("b.o")})
	a.appendMember(&Member{Name: []byte("c.o")})

	require.NoError(t, a.Move([]string{"c.o"}, "a.o"))

	assert.Equal(t, []string{"c.o", "a.o", "b.o"}, a.Names())
}

func TestRanlibRebuildsSymbolsFromAllMembers(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{}, "")
	a.appendMember(&Member{Name: []byte("a.o"), Payload: buildMinimalELF64(t, "alpha", stbGLOBAL)})
	a.appendMember(&Member{Name: []byte("b.o"), Payload: buildMinimalELF64(t, "beta", stbWEAK)})

	require.NoError(t, a.Ranlib())

	require.Len(t, a.Symbols, 2)
	assert.True(t, a.Modifiers.BuildSymbolTable)
}
