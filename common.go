package ar

// HeaderByteSize is the fixed size, in bytes, of every archive member header record.
const HeaderByteSize = 60

// Magic values that may open an archive file.
const (
	GlobalHeader     = "!<arch>\n"
	GlobalHeaderThin = "!<thin>\n"
)

// Dialect identifies one of the on-disk encodings this package understands.
type Dialect int

const (
	// DialectAmbiguous is the pre-inference value. A reader resolves it while parsing; a
	// writer given this value falls back to the host's native dialect.
	DialectAmbiguous Dialect = iota
	DialectGNU
	DialectGNUThin
	DialectGNU64
	DialectBSD
	DialectDarwin
	DialectDarwin64
	DialectCOFF
)

func (d Dialect) String() string {
	switch d {
	case DialectGNU:
		return "gnu"
	case DialectGNUThin:
		return "gnuthin"
	case DialectGNU64:
		return "gnu64"
	case DialectBSD:
		return "bsd"
	case DialectDarwin:
		return "darwin"
	case DialectDarwin64:
		return "darwin64"
	case DialectCOFF:
		return "coff"
	default:
		return "ambiguous"
	}
}

// alignment describes the byte boundaries a dialect rounds interior tables and member payloads up
// to.
type alignment struct {
	record  int64
	payload int64
}

var alignments = map[Dialect]alignment{
	DialectGNU:      {record: 2, payload: 2},
	DialectGNUThin:  {record: 2, payload: 2},
	DialectGNU64:    {record: 2, payload: 2},
	DialectCOFF:     {record: 2, payload: 2},
	DialectBSD:      {record: 8, payload: 2},
	DialectDarwin:   {record: 8, payload: 8},
	DialectDarwin64: {record: 8, payload: 8},
}

func alignmentFor(d Dialect) alignment {
	if a, ok := alignments[d]; ok {
		return a
	}
	// The host default is always a concrete dialect, so ambiguous never reaches here in
	// practice, but default to GNU-shaped alignment rather than panic.
	return alignment{record: 2, payload: 2}
}

func isGNUFamily(d Dialect) bool {
	switch d {
	case DialectGNU, DialectGNUThin, DialectGNU64, DialectCOFF:
		return true
	default:
		return false
	}
}

func isBSDFamily(d Dialect) bool {
	switch d {
	case DialectBSD, DialectDarwin, DialectDarwin64:
		return true
	default:
		return false
	}
}

func isDarwin(d Dialect) bool {
	return d == DialectDarwin || d == DialectDarwin64
}

func is64SymbolOffsets(d Dialect) bool {
	return d == DialectGNU64 || d == DialectDarwin64
}

// padByte returns the padding byte a dialect uses to round a table or payload up to its alignment
// boundary.
func padByte(d Dialect) byte {
	if isBSDFamily(d) {
		return 0
	}
	return '\n'
}

// Modifiers mirrors the flags an `ar`-style caller can set, controlling creation, update checks,
// deterministic metadata, and symbol-table handling.
type Modifiers struct {
	Create                  bool
	UpdateOnly              bool
	UseRealTimestampsAndIDs bool
	BuildSymbolTable        bool
	SortSymbolTable         bool
	Verbose                 bool
}

// DeterministicMode reports whether timestamps/uid/gid/mode should be coerced to fixed values, the
// default posture unless the caller opted into real host metadata.
func (m Modifiers) DeterministicMode() bool {
	return !m.UseRealTimestampsAndIDs
}

// UnresolvedMemberIndex is the sentinel used by SymbolRef.MemberIndex when a symbol's recorded
// file offset does not correspond to any parsed member.
const UnresolvedMemberIndex = ^uint64(0)

// slicer carves successive fixed-width fields off the front of a byte slice, used when decoding
// and encoding the 60-byte member header record.
type slicer []byte

func (sp *slicer) next(n int) (b []byte) {
	s := *sp
	b, *sp = s[0:n], s[n:]
	return
}

// alignUp rounds n up to the next multiple of align (align must be a power of two).
func alignUp(n int64, align int64) int64 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
