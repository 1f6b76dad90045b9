package ar

// COFF symbol extraction. Layout follows the Microsoft PE/COFF specification's plain (non-PE)
// object file header: a 20-byte file header, NumberOfSections section headers (skipped — symbol
// enumeration never needs them), an 18-byte-per-record symbol table, and a trailing string table
// for names longer than 8 bytes.

const (
	coffFileHeaderSize = 20
	coffSymbolSize     = 18

	imageFileMachineAMD64 uint16 = 0x8664

	imageSymClassExternal uint8 = 2
)

// extractCOFF parses a COFF object payload and emits one SymbolRef per symbol whose storage
// class is IMAGE_SYM_CLASS_EXTERNAL. Only AMD64 objects are supported; anything else is rejected
// with ErrNotSupportedMachine.
func extractCOFF(payload []byte) ([]symbolCandidate, error) {
	if len(payload) < coffFileHeaderSize {
		return nil, ErrNotObject
	}

	machine := le16(payload[0:2])
	if machine != imageFileMachineAMD64 {
		return nil, ErrNotSupportedMachine
	}

	symPtr := le32(payload[8:12])
	numSyms := le32(payload[12:16])

	if numSyms == 0 {
		return nil, nil
	}

	symTableEnd := int64(symPtr) + int64(numSyms)*coffSymbolSize
	if symTableEnd > int64(len(payload)) {
		return nil, malformed("COFF symbol table out of range", nil)
	}
	strtab := payload[symTableEnd:]

	var out []symbolCandidate
	i := uint32(0)
	for i < numSyms {
		off := int64(symPtr) + int64(i)*coffSymbolSize
		rec := payload[off : off+coffSymbolSize]

		nameField := rec[0:8]
		storageClass := rec[16]
		naux := rec[17]

		if storageClass == imageSymClassExternal {
			name, err := coffSymbolName(nameField, strtab)
			if err == nil && name != "" {
				out = append(out, symbolCandidate{name: []byte(name)})
			}
		}

		i += 1 + uint32(naux)
	}

	return out, nil
}

// coffSymbolName decodes a packed 8-byte COFF symbol name field: either an inline, NUL-padded
// short name, or four zero bytes followed by a little-endian offset into the string table.
func coffSymbolName(field []byte, strtab []byte) (string, error) {
	if le32(field[0:4]) != 0 {
		// Inline short name, NUL-padded (not necessarily NUL-terminated if it fills all 8
		// bytes).
		end := 0
		for end < len(field) && field[end] != 0 {
			end++
		}
		return string(field[:end]), nil
	}
	off := le32(field[4:8])
	return cString(strtab, int(off))
}

// isPlausibleCOFFObject applies a conservative heuristic: a payload that matched none of the
// ELF/Mach-O/bitcode magics is treated as COFF only if its first two bytes decode as a machine
// type this package recognises.
func isPlausibleCOFFObject(payload []byte) bool {
	if len(payload) < coffFileHeaderSize {
		return false
	}
	return le16(payload[0:2]) == imageFileMachineAMD64
}
