package ar

// ELF64 symbol extraction. Layouts follow the System V ABI's 64-bit structures, decoded
// explicitly field-by-field the way the rest of this package's record codecs do, rather than
// overlaying a Go struct on the raw bytes.

const (
	elfMagic = "\x7fELF"

	elfClass64 = 2
	elfData2LSB = 1

	etREL = 1
	etDYN = 3

	shtSYMTAB = 2
	shtDYNSYM = 11

	shnUNDEF      = 0
	shnLORESERVE  = 0xff00
	shnHIRESERVE  = 0xffff

	stbLOCAL  = 0
	stbGLOBAL = 1
	stbWEAK   = 2
)

const (
	ehdrSize = 64
	shdrSize = 64
	symSize  = 24
)

// extractELF parses a 64-bit little-endian ELF relocatable or shared object and emits one
// SymbolRef per symbol whose binding is STB_GLOBAL or STB_WEAK and whose section index is neither
// SHN_UNDEF nor within the reserved SHN_LORESERVE..SHN_HIRESERVE range.
func extractELF(payload []byte) ([]symbolCandidate, error) {
	if len(payload) < ehdrSize {
		return nil, malformed("truncated ELF header", ErrNotObject)
	}
	if string(payload[0:4]) != elfMagic {
		return nil, ErrNotObject
	}
	if payload[4] != elfClass64 {
		return nil, ErrNotSupportedMachine
	}
	if payload[5] != elfData2LSB {
		return nil, ErrNotSupportedMachine
	}

	eType := le16(payload[16:18])
	if eType != etREL && eType != etDYN {
		return nil, ErrNotSupportedMachine
	}

	shoff := le64(payload[40:48])
	shentsize := le16(payload[58:60])
	shnum := le16(payload[60:62])
	shstrndx := le16(payload[62:64])

	if shentsize == 0 || int(shentsize) < shdrSize {
		return nil, malformed("implausible ELF section header size", nil)
	}

	shdr := func(i int) ([]byte, error) {
		off := int64(shoff) + int64(i)*int64(shentsize)
		if off < 0 || off+shdrSize > int64(len(payload)) {
			return nil, malformed("ELF section header out of range", nil)
		}
		return payload[off : off+shdrSize], nil
	}

	// Extended section numbering via section 0 is not needed here: only binding and
	// section-defined-ness matter, not section names.
	_ = shstrndx

	var symtabOff, symtabSize, symtabLink uint64
	found := false
	for i := 0; i < int(shnum); i++ {
		sh, err := shdr(i)
		if err != nil {
			return nil, err
		}
		typ := le32(sh[4:8])
		if typ == shtSYMTAB {
			symtabOff = le64(sh[24:32])
			symtabSize = le64(sh[32:40])
			symtabLink = uint64(le32(sh[40:44]))
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	strSh, err := shdr(int(symtabLink))
	if err != nil {
		return nil, err
	}
	strOff := le64(strSh[24:32])
	strSize := le64(strSh[32:40])
	if strOff+strSize > uint64(len(payload)) {
		return nil, malformed("ELF string table out of range", nil)
	}
	strtab := payload[strOff : strOff+strSize]

	if symtabOff+symtabSize > uint64(len(payload)) {
		return nil, malformed("ELF symbol table out of range", nil)
	}
	symtab := payload[symtabOff : symtabOff+symtabSize]

	var out []symbolCandidate
	count := len(symtab) / symSize
	for i := 0; i < count; i++ {
		rec := symtab[i*symSize : (i+1)*symSize]
		nameOff := le32(rec[0:4])
		info := rec[4]
		shndx := le16(rec[6:8])

		bind := info >> 4
		if bind != stbGLOBAL && bind != stbWEAK {
			continue
		}
		if shndx == shnUNDEF {
			continue
		}
		if shndx >= shnLORESERVE && shndx <= shnHIRESERVE {
			continue
		}

		name, err := cString(strtab, int(nameOff))
		if err != nil {
			continue
		}
		if name == "" {
			continue
		}
		out = append(out, symbolCandidate{name: []byte(name)})
	}

	return out, nil
}
