package ar

// DeterministicMode is the fixed metadata deterministic-mode inserts coerce onto a member. The
// mode field is deliberately the decimal literal "644", not the octal value 0o644 — a documented
// LLVM ar quirk this package matches bit-for-bit.
const (
	DeterministicMode = 644
	DeterministicUID  = 0
	DeterministicGID  = 0
)

// Member is an archived file: its basename (not guaranteed valid text in any encoding, so held as
// bytes), its payload, and the metadata an archive header records about it.
type Member struct {
	Name    []byte
	Payload []byte

	ModTime Timestamp
	Uid     int64
	Gid     int64
	Mode    int64
}

// Size returns the member's payload length.
func (m *Member) Size() int64 {
	return int64(len(m.Payload))
}

// SymbolRef names an externally visible symbol and the member that defines it.
type SymbolRef struct {
	Name []byte

	// MemberIndex is either a valid index into the owning Archive's Members slice, or
	// UnresolvedMemberIndex. During Phase A/B of reading it temporarily holds a raw file
	// offset instead (see reader.go), resolved to a real index in Phase C.
	MemberIndex uint64
}

// Archive is the in-memory representation of a parsed or under-construction `ar` archive: an
// ordered sequence of members, a sequence of symbol references, the dialect they are encoded
// (or will be encoded) in, and the modifiers governing mutation and serialisation.
type Archive struct {
	Dialect   Dialect
	Modifiers Modifiers

	Members []*Member
	Symbols []*SymbolRef

	// Dir is the directory the archive file itself lives in. GNU-thin archives dereference
	// member basenames against it instead of storing payloads inline.
	Dir string

	byName map[string]int
}

// NewArchive returns an empty archive in the given dialect with the given modifiers.
func NewArchive(dialect Dialect, mods Modifiers, dir string) *Archive {
	return &Archive{
		Dialect:   dialect,
		Modifiers: mods,
		Dir:       dir,
		byName:    map[string]int{},
	}
}

// IndexOf returns the position of the member with the given basename, or -1 if none exists.
func (a *Archive) IndexOf(name []byte) int {
	if a.byName == nil {
		return -1
	}
	idx, ok := a.byName[string(name)]
	if !ok {
		return -1
	}
	return idx
}

// rebuildIndex recomputes the basename→position map from scratch. Called after any structural
// change to Members so every basename maps to its correct current index.
func (a *Archive) rebuildIndex() {
	a.byName = make(map[string]int, len(a.Members))
	for i, m := range a.Members {
		a.byName[string(m.Name)] = i
	}
}

// appendMember appends a new member and keeps the index in sync.
func (a *Archive) appendMember(m *Member) int {
	a.Members = append(a.Members, m)
	idx := len(a.Members) - 1
	if a.byName == nil {
		a.byName = map[string]int{}
	}
	a.byName[string(m.Name)] = idx
	return idx
}

// replaceMember overwrites the member at idx in place, preserving its position.
func (a *Archive) replaceMember(idx int, m *Member) {
	a.Members[idx] = m
}

// removeMemberAt deletes the member at position k, then repairs symbol references: every
// SymbolRef referencing k is dropped, and every SymbolRef referencing an index greater than k is
// decremented by one.
func (a *Archive) removeMemberAt(k int) {
	a.Members = append(a.Members[:k], a.Members[k+1:]...)

	kept := a.Symbols[:0]
	for _, s := range a.Symbols {
		switch {
		case s.MemberIndex == uint64(k):
			continue
		case s.MemberIndex != UnresolvedMemberIndex && s.MemberIndex > uint64(k):
			s.MemberIndex--
			kept = append(kept, s)
		default:
			kept = append(kept, s)
		}
	}
	a.Symbols = kept

	a.rebuildIndex()
}

// symbolsForMember returns every SymbolRef whose MemberIndex is idx.
func (a *Archive) symbolsForMember(idx int) []*SymbolRef {
	var out []*SymbolRef
	for _, s := range a.Symbols {
		if s.MemberIndex == uint64(idx) {
			out = append(out, s)
		}
	}
	return out
}

// removeSymbolsForMember drops every SymbolRef whose MemberIndex is idx, used when an insert
// replaces an existing member's content and its symbol table entries must be rebuilt from
// scratch.
func (a *Archive) removeSymbolsForMember(idx int) {
	kept := a.Symbols[:0]
	for _, s := range a.Symbols {
		if s.MemberIndex != uint64(idx) {
			kept = append(kept, s)
		}
	}
	a.Symbols = kept
}
