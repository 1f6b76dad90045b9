package ar

import "encoding/binary"

// Mach-O symbol extraction: walk load commands looking for LC_SYMTAB, then decode each nlist
// entry's type/section/string-table offset. Structures and flag bits follow Apple's
// mach-o/loader.h and mach-o/nlist.h.

const (
	machMagic32    uint32 = 0xfeedface
	machMagic64    uint32 = 0xfeedfacf
	machCigam32    uint32 = 0xcefaedfe
	machCigam64    uint32 = 0xcffaedfe
	lcSYMTAB       uint32 = 0x2
	lcSegmentMask  uint32 = 0x7fffffff // strip the LC_REQ_DYLD bit when matching cmd codes

	nlistTypeMask uint8 = 0x0e
	nlistExt      uint8 = 0x01
	nlistSect     uint8 = 0x0e
)

// extractMachO parses a Mach-O object/shared-library payload and emits one SymbolRef per symbol
// that is both external (N_EXT) and defined in a section (N_SECT).
func extractMachO(payload []byte) ([]symbolCandidate, error) {
	if len(payload) < 4 {
		return nil, ErrNotObject
	}
	magic := le32(payload[0:4])

	var order binary.ByteOrder = binary.LittleEndian
	is64 := false
	switch magic {
	case machMagic32:
		order = binary.LittleEndian
	case machMagic64:
		order = binary.LittleEndian
		is64 = true
	case machCigam32:
		order = binary.BigEndian
	case machCigam64:
		order = binary.BigEndian
		is64 = true
	default:
		return nil, ErrNotObject
	}

	headerSize := 28
	if is64 {
		headerSize = 32
	}
	if len(payload) < headerSize {
		return nil, malformed("truncated Mach-O header", ErrNotObject)
	}

	ncmds := order.Uint32(payload[16:20])
	cmdsStart := headerSize

	var symoff, nsyms, stroff, strsize uint32
	found := false

	pos := cmdsStart
	for i := uint32(0); i < ncmds; i++ {
		if pos+8 > len(payload) {
			return nil, malformed("Mach-O load command out of range", nil)
		}
		cmd := order.Uint32(payload[pos : pos+4])
		cmdsize := order.Uint32(payload[pos+4 : pos+8])
		if cmdsize < 8 || pos+int(cmdsize) > len(payload) {
			return nil, malformed("Mach-O load command size out of range", nil)
		}

		if cmd&lcSegmentMask == lcSYMTAB {
			body := payload[pos+8 : pos+int(cmdsize)]
			if len(body) < 16 {
				return nil, malformed("truncated LC_SYMTAB", nil)
			}
			symoff = order.Uint32(body[0:4])
			nsyms = order.Uint32(body[4:8])
			stroff = order.Uint32(body[8:12])
			strsize = order.Uint32(body[12:16])
			found = true
			break
		}

		pos += int(cmdsize)
	}

	if !found {
		return nil, nil
	}

	if int(stroff)+int(strsize) > len(payload) {
		return nil, malformed("Mach-O string table out of range", nil)
	}
	strtab := payload[stroff : int(stroff)+int(strsize)]

	nlistSize := 12
	if is64 {
		nlistSize = 16
	}

	var out []symbolCandidate
	for i := uint32(0); i < nsyms; i++ {
		off := int(symoff) + int(i)*nlistSize
		if off+nlistSize > len(payload) {
			return nil, malformed("Mach-O symbol table out of range", nil)
		}
		rec := payload[off : off+nlistSize]

		strx := order.Uint32(rec[0:4])
		nType := rec[4]

		if nType&nlistExt == 0 {
			continue
		}
		if nType&nlistTypeMask != nlistSect {
			continue
		}

		name, err := cString(strtab, int(strx))
		if err != nil || name == "" {
			continue
		}
		out = append(out, symbolCandidate{name: []byte(name)})
	}

	return out, nil
}
