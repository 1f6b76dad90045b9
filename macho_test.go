package ar

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalMachO64 assembles a little-endian 64-bit Mach-O object with a single LC_SYMTAB
// load command and one external, section-defined symbol.
func buildMinimalMachO64(t *testing.T, symbolName string, external bool) []byte {
	t.Helper()

	const (
		headerSize  = 32
		lcSize      = 24 // LC_SYMTAB command header (8) + symtab_command body (16)
		nlistSize64 = 16
	)

	strtab := append([]byte{0}, append([]byte(symbolName), 0)...)
	symtab := make([]byte, nlistSize64)
	binary.LittleEndian.PutUint32(symtab[0:4], 1) // n_strx
	nType := nlistSect
	if external {
		nType |= nlistExt
	}
	symtab[4] = nType

	symoff := uint32(headerSize + lcSize)
	stroff := symoff + uint32(len(symtab))

	buf := make([]byte, int(stroff)+len(strtab))
	binary.LittleEndian.PutUint32(buf[0:4], machMagic64)
	binary.LittleEndian.PutUint32(buf[16:20], 1) // ncmds

	lc := buf[headerSize : headerSize+lcSize]
	binary.LittleEndian.PutUint32(lc[0:4], lcSYMTAB)
	binary.LittleEndian.PutUint32(lc[4:8], lcSize)
	body := lc[8:]
	binary.LittleEndian.PutUint32(body[0:4], symoff)
	binary.LittleEndian.PutUint32(body[4:8], 1) // nsyms
	binary.LittleEndian.PutUint32(body[8:12], stroff)
	binary.LittleEndian.PutUint32(body[12:16], uint32(len(strtab)))

	copy(buf[symoff:], symtab)
	copy(buf[stroff:], strtab)

	return buf
}

func TestExtractMachOEmitsExternalSectionSymbol(t *testing.T) {
	payload := buildMinimalMachO64(t, "foo", true)

	syms, err := extractMachO(payload)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "foo", string(syms[0].name))
}

func TestExtractMachOSkipsNonExternalSymbol(t *testing.T) {
	payload := buildMinimalMachO64(t, "foo", false)

	syms, err := extractMachO(payload)
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestExtractMachORejectsUnknownMagic(t *testing.T) {
	payload := make([]byte, 32)
	binary.LittleEndian.PutUint32(payload[0:4], 0xdeadbeef)

	_, err := extractMachO(payload)
	assert.ErrorIs(t, err, ErrNotObject)
}
