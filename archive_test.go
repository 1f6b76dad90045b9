package ar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMember(name string, payload []byte) *Member {
	return &Member{Name: []byte(name), Payload: payload}
}

func TestArchiveAppendAndIndexOf(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{}, "")
	idx := a.appendMember(newTestMember("a.o", []byte("aaaa")))
	require.Equal(t, 0, idx)
	require.Equal(t, 0, a.IndexOf([]byte("a.o")))
	require.Equal(t, -1, a.IndexOf([]byte("missing.o")))
}

func TestArchiveRemoveMemberAtRepairsSymbolIndices(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{}, "")
	a.appendMember(newTestMember("a.o", []byte("a")))
	a.appendMember(newTestMember("b.o", []byte("b")))
	a.appendMember(newTestMember("c.o", []byte("c")))
	a.Symbols = []*SymbolRef{
		{Name: []byte("sym_a"), MemberIndex: 0},
		{Name: []byte("sym_b1"), MemberIndex: 1},
		{Name: []byte("sym_b2"), MemberIndex: 1},
		{Name: []byte("sym_c"), MemberIndex: 2},
	}

	a.removeMemberAt(1)

	require.Len(t, a.Members, 2)
	assert.Equal(t, "a.o", string(a.Members[0].Name))
	assert.Equal(t, "c.o", string(a.Members[1].Name))

	require.Len(t, a.Symbols, 2)
	assert.Equal(t, "sym_a", string(a.Symbols[0].Name))
	assert.Equal(t, uint64(0), a.Symbols[0].MemberIndex)
	assert.Equal(t, "sym_c", string(a.Symbols[1].Name))
	assert.Equal(t, uint64(1), a.Symbols[1].MemberIndex)

	assert.Equal(t, 0, a.IndexOf([]byte("a.o")))
	assert.Equal(t, 1, a.IndexOf([]byte("c.o")))
}

func TestArchiveRemoveMemberAtPreservesUnresolvedIndex(t *testing.T) {
	a := NewArchive(DialectGNU, Modifiers{}, "")
	a.appendMember(newTestMember("a.o", []byte("a")))
	a.appendMember(newTestMember("b.o", []byte("b")))
	a.Symbols = []*SymbolRef{{Name: []byte("dangling"), MemberIndex: UnresolvedMemberIndex}}

	a.removeMemberAt(0)

	require.Len(t, a.Symbols, 1)
	assert.Equal(t, UnresolvedMemberIndex, a.Symbols[0].MemberIndex)
}

func TestTimestampRoundTripsAtSecondResolution(t *testing.T) {
	ts := TimestampFromSeconds(1700000000)
	assert.Equal(t, int64(1700000000), ts.Seconds())
	assert.True(t, ts.After(ZeroTimestamp))
	assert.False(t, ZeroTimestamp.After(ts))
	assert.True(t, ZeroTimestamp.Equal(TimestampFromSeconds(0)))
}
