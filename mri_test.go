package ar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripScriptCommentTrimsFromMarker(t *testing.T) {
	assert.Equal(t, "addmod foo.o ", stripScriptComment("addmod foo.o * append the object"))
	assert.Equal(t, "addmod foo.o ", stripScriptComment("addmod foo.o ; append the object"))
	assert.Equal(t, "addmod foo.o", stripScriptComment("addmod foo.o"))
}

func TestRunScriptCreateAddSave(t *testing.T) {
	dir := t.TempDir()
	objPath := writeTempFile(t, dir, "a.o", []byte("payload"))
	archivePath := filepath.Join(dir, "out.a")

	script := strings.Join([]string{
		"create " + archivePath,
		"addmod " + objPath,
		"save",
		"end",
	}, "\n")

	require.NoError(t, RunScript(strings.NewReader(script)))

	data, err := os.ReadFile(archivePath)
	require.NoError(t, err)

	parsed, err := ReadArchive(data, dir)
	require.NoError(t, err)
	require.Len(t, parsed.Members, 1)
	assert.Equal(t, "a.o", string(parsed.Members[0].Name))
}

func TestRunScriptCreatethinUsesGNUThinDialect(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "out.a")

	sess := &scriptSession{}
	_, err := sess.exec("createthin", []string{archivePath})
	require.NoError(t, err)
	assert.Equal(t, DialectGNUThin, sess.archive.Dialect)
}

func TestRunScriptClearDropsCurrentArchive(t *testing.T) {
	sess := &scriptSession{archive: NewArchive(DialectGNU, Modifiers{}, ""), path: "whatever.a"}
	stop, err := sess.exec("clear", nil)
	require.NoError(t, err)
	assert.False(t, stop)
	assert.Nil(t, sess.archive)
	assert.Empty(t, sess.path)
}

func TestRunScriptEndStopsExecution(t *testing.T) {
	sess := &scriptSession{}
	stop, err := sess.exec("end", nil)
	require.NoError(t, err)
	assert.True(t, stop)
}

func TestRunScriptCommandWithoutOpenArchiveFails(t *testing.T) {
	sess := &scriptSession{}
	_, err := sess.exec("delete", []string{"a.o"})
	assert.Error(t, err)
}

func TestRunScriptUnknownCommandFails(t *testing.T) {
	sess := &scriptSession{}
	_, err := sess.exec("bogus", nil)
	assert.Error(t, err)
}
