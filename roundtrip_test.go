package ar

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEmptyArchiveIsExactlyMagic(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{}, "")
	data, err := WriteArchive(a)
	require.NoError(t, err)
	assert.Equal(t, []byte(GlobalHeader), data)

	parsed, err := ReadArchive(data, "")
	require.NoError(t, err)
	assert.Empty(t, parsed.Members)
	assert.Empty(t, parsed.Symbols)
}

func TestWriteGNUSingleMemberWithSymbolTable(t *testing.T) {
	elfPayload := buildMinimalELF64(t, "foo", stbGLOBAL)
	elfPayload = append(elfPayload, make([]byte, 320-len(elfPayload))...)

	a := NewArchive(DialectGNU, Modifiers{BuildSymbolTable: true}, "")
	idx := a.appendMember(&Member{Name: []byte("a.o"), Payload: elfPayload})
	require.NoError(t, a.attachSymbolsFor(idx))

	data, err := WriteArchive(a)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, []byte(GlobalHeader)))

	// Symbol index header immediately follows the magic.
	symtabHeader := data[len(GlobalHeader) : len(GlobalHeader)+HeaderByteSize]
	assert.Equal(t, "/               ", string(symtabHeader[0:16]))

	assert.True(t, bytes.Contains(data, []byte("foo\x00")))

	// Member header name is "a.o/" padded to 16 bytes.
	idxOfMemberName := bytes.Index(data, []byte("a.o/"))
	require.NotEqual(t, -1, idxOfMemberName)
	memberHeader := data[idxOfMemberName : idxOfMemberName+16]
	assert.Equal(t, "a.o/            ", string(memberHeader))

	// The payload (320 bytes) is already even, so no '\n' alignment byte follows it — round-trip
	// instead and check the payload is preserved exactly.
	parsed, err := ReadArchive(data, "")
	require.NoError(t, err)
	require.Len(t, parsed.Members, 1)
	assert.Equal(t, "a.o", string(parsed.Members[0].Name))
	assert.Equal(t, elfPayload, parsed.Members[0].Payload)
	require.Len(t, parsed.Symbols, 1)
	assert.Equal(t, "foo", string(parsed.Symbols[0].Name))
	assert.Equal(t, 0, int(parsed.Symbols[0].MemberIndex))
}

func TestWriteGNULongNameGoesToLongNamesTable(t *testing.T) {
	name := "this_is_a_very_long_name.o"
	require.Len(t, name, 26)

	a := NewArchive(DialectGNU, Modifiers{}, "")
	a.appendMember(&Member{Name: []byte(name), Payload: []byte("hi")})

	data, err := WriteArchive(a)
	require.NoError(t, err)

	longNamesHeader := data[len(GlobalHeader) : len(GlobalHeader)+HeaderByteSize]
	assert.Equal(t, "//              ", string(longNamesHeader[0:16]))

	longNamesPayload := data[len(GlobalHeader)+HeaderByteSize:]
	assert.True(t, bytes.HasPrefix(longNamesPayload, []byte(name+"/\n")))

	memberHeaderOff := len(GlobalHeader) + HeaderByteSize + int(alignUp(int64(len(name)+2), 2))
	memberHeader := data[memberHeaderOff : memberHeaderOff+16]
	assert.Equal(t, "/0              ", string(memberHeader))

	parsed, err := ReadArchive(data, "")
	require.NoError(t, err)
	require.Len(t, parsed.Members, 1)
	assert.Equal(t, name, string(parsed.Members[0].Name))
}

func TestWriteBSDRoundTrip(t *testing.T) {
	a := NewArchive(DialectBSD, Modifiers{}, "")
	a.appendMember(&Member{Name: []byte("a.o"), Payload: []byte("aaa")})
	a.appendMember(&Member{Name: []byte("bbbbbbbbbbbb.o"), Payload: []byte("bbbbbbbbbbbbbb")}) // 14 bytes

	data, err := WriteArchive(a)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("#1/16")))

	parsed, err := ReadArchive(data, "")
	require.NoError(t, err)
	require.Len(t, parsed.Members, 2)
	assert.Equal(t, "a.o", string(parsed.Members[0].Name))
	assert.Equal(t, []byte("aaa"), parsed.Members[0].Payload)
	assert.Equal(t, "bbbbbbbbbbbb.o", string(parsed.Members[1].Name))
	assert.Equal(t, []byte("bbbbbbbbbbbbbb"), parsed.Members[1].Payload)
}

func TestDeterministicModeProducesByteIdenticalOutput(t *testing.T) {
	build := func(mtime int64) []byte {
		a := NewArchive(DialectGNU, Modifiers{}, "")
		a.appendMember(&Member{
			Name:    []byte("a.o"),
			Payload: []byte("hello"),
			ModTime: TimestampFromSeconds(mtime),
			Uid:     501,
			Gid:     20,
			Mode:    0o755,
		})
		data, err := WriteArchive(a)
		require.NoError(t, err)
		return data
	}

	first := build(1000)
	second := build(2000)
	assert.Equal(t, first, second)
}

func TestRealTimestampsProduceDifferingOutput(t *testing.T) {
	build := func(mtime int64) []byte {
		a := NewArchive(DialectGNU, Modifiers{UseRealTimestampsAndIDs: true}, "")
		a.appendMember(&Member{
			Name:    []byte("a.o"),
			Payload: []byte("hello"),
			ModTime: TimestampFromSeconds(mtime),
			Mode:    0o644,
		})
		data, err := WriteArchive(a)
		require.NoError(t, err)
		return data
	}

	first := build(1000)
	second := build(2000)
	assert.NotEqual(t, first, second)
}

func TestSortSymbolTableIsStableLexicographicPermutation(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{BuildSymbolTable: true, SortSymbolTable: true}, "")
	a.appendMember(&Member{Name: []byte("a.o"), Payload: []byte("x")})
	a.Symbols = []*SymbolRef{
		{Name: []byte("zeta"), MemberIndex: 0},
		{Name: []byte("alpha"), MemberIndex: 0},
		{Name: []byte("mid"), MemberIndex: 0},
	}

	data, err := WriteArchive(a)
	require.NoError(t, err)

	alphaPos := bytes.Index(data, []byte("alpha\x00"))
	midPos := bytes.Index(data, []byte("mid\x00"))
	zetaPos := bytes.Index(data, []byte("zeta\x00"))
	require.True(t, alphaPos >= 0 && midPos >= 0 && zetaPos >= 0)
	assert.True(t, alphaPos < midPos)
	assert.True(t, midPos < zetaPos)
}
