/*
Copyright (c) 2013 Blake Smith <blakesmith0@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// The archive reader. It started as a streaming io.Reader-shaped API (see the upstream
// blakesmith/ar this package was ported from); that shape can't represent symbol directories,
// long-name tables or mutation, so it has been rebuilt around a whole-archive byte buffer and the
// Archive/Member/SymbolRef model in archive.go, keeping the original's space-padded-ASCII field
// decoding and long-name resolution techniques.
package ar

import (
	"bytes"
	"strconv"
)

// hostIsLittleEndian is this package's assumption for the BSD/Darwin ranlib array, which is
// encoded in the native endianness of the host architecture with no in-file tag: every
// architecture this module is realistically built for (amd64, arm64) is little-endian.
const hostIsLittleEndian = true

// ReadArchive parses an archive's raw bytes into the in-memory model. dir is the directory the
// archive file lives in, used to resolve GNU-thin members against their sibling files; pass "" if
// the archive was not read from a named file (thin members are then resolved against the current
// working directory). GNU-thin member contents are read from their sibling files while parsing,
// so a missing sibling makes ReadArchive itself fail.
func ReadArchive(data []byte, dir string) (*Archive, error) {
	if len(data) == 0 {
		return NewArchive(DialectAmbiguous, Modifiers{}, dir), nil
	}

	var dialect Dialect
	switch {
	case bytes.HasPrefix(data, []byte(GlobalHeader)):
		dialect = DialectAmbiguous
	case bytes.HasPrefix(data, []byte(GlobalHeaderThin)):
		dialect = DialectGNUThin
	default:
		return nil, ErrNotArchive
	}

	cur := newCursor(data)
	if err := cur.skip(8); err != nil {
		return nil, ErrNotArchive
	}

	arc := NewArchive(dialect, Modifiers{}, dir)
	rd := &archiveReader{arc: arc, cur: cur, offsetToIndex: map[int64]int{}}

	if err := rd.phaseA(); err != nil {
		return nil, err
	}
	if err := rd.phaseB(); err != nil {
		return nil, err
	}
	rd.phaseC()

	if arc.Dialect == DialectAmbiguous {
		arc.Dialect = DialectGNU
	}

	return arc, nil
}

type archiveReader struct {
	arc *Archive
	cur *byteCursor

	longNames []byte

	sawSymtab bool
	sawStrtab bool

	offsetToIndex map[int64]int
}

func (rd *archiveReader) noteGNUCue() error {
	if rd.arc.Dialect == DialectAmbiguous {
		rd.arc.Dialect = DialectGNU
	} else if !isGNUFamily(rd.arc.Dialect) {
		return malformed("archive mixes GNU and BSD naming conventions", nil)
	}
	return nil
}

func (rd *archiveReader) noteBSDCue() error {
	if rd.arc.Dialect == DialectAmbiguous {
		rd.arc.Dialect = DialectBSD
	} else if !isBSDFamily(rd.arc.Dialect) {
		return malformed("archive mixes GNU and BSD naming conventions", nil)
	}
	return nil
}

// skipEvenPad skips one padding byte if the cursor currently sits at an odd file offset; every
// member record (ordinary or special) must start at an even offset.
func (rd *archiveReader) skipEvenPad() error {
	if rd.cur.pos%2 != 0 {
		return rd.cur.skip(1)
	}
	return nil
}

// rawHeader is the as-decoded content of one 60-byte header record, before name resolution.
type rawHeader struct {
	name                 []byte // trailing-space trimmed, 16-byte field
	date, uid, gid, size int64
	mode                 int64
}

func (rd *archiveReader) readRawHeader() (rawHeader, error) {
	buf, err := rd.cur.take(HeaderByteSize)
	if err != nil {
		return rawHeader{}, err
	}
	s := slicer(buf)
	nameField := s.next(16)
	dateField := s.next(12)
	uidField := s.next(6)
	gidField := s.next(6)
	modeField := s.next(8)
	sizeField := s.next(10)
	fmagField := s.next(2)

	if string(fmagField) != "`\n" {
		return rawHeader{}, malformed("invalid header terminator", nil)
	}

	date, err := asciiDecimal(dateField)
	if err != nil {
		return rawHeader{}, err
	}
	uid, err := asciiDecimal(uidField)
	if err != nil {
		return rawHeader{}, err
	}
	gid, err := asciiDecimal(gidField)
	if err != nil {
		return rawHeader{}, err
	}
	mode, err := asciiOctal(modeField)
	if err != nil {
		return rawHeader{}, err
	}
	size, err := asciiDecimal(sizeField)
	if err != nil {
		return rawHeader{}, err
	}
	if size < 0 {
		return rawHeader{}, malformed("negative size field", ErrOverflow)
	}

	return rawHeader{
		name: bytes.TrimRight(nameField, " "),
		date: date, uid: uid, gid: gid, size: size, mode: mode,
	}, nil
}

// phaseA consumes the optional GNU long-names and symbol-index tables that precede ordinary
// members.
func (rd *archiveReader) phaseA() error {
	for {
		peeked, ok := rd.cur.peek(HeaderByteSize)
		if !ok {
			return nil
		}
		nameField := bytes.TrimRight(peeked[0:16], " ")

		switch {
		case bytes.Equal(nameField, []byte("//")):
			if rd.sawStrtab {
				return nil
			}
			hdr, err := rd.readRawHeader()
			if err != nil {
				return err
			}
			payload, err := rd.cur.take(int(hdr.size))
			if err != nil {
				return &MalformedArchive{Reason: "truncated long-names table", Err: err}
			}
			rd.longNames = payload
			rd.sawStrtab = true
			if err := rd.noteGNUCue(); err != nil {
				return err
			}
			if err := rd.skipEvenPad(); err != nil {
				return err
			}

		case !rd.sawSymtab && (bytes.Equal(nameField, []byte("/")) || bytes.Equal(nameField, []byte("/SYM64/"))):
			hdr, err := rd.readRawHeader()
			if err != nil {
				return err
			}
			payload, err := rd.cur.take(int(hdr.size))
			if err != nil {
				return &MalformedArchive{Reason: "truncated symbol index", Err: err}
			}
			if err := rd.parseGNUSymtab(payload, string(nameField) == "/SYM64/"); err != nil {
				return err
			}
			rd.sawSymtab = true
			if err := rd.noteGNUCue(); err != nil {
				return err
			}
			if err := rd.skipEvenPad(); err != nil {
				return err
			}

		default:
			return nil
		}
	}
}

func (rd *archiveReader) parseGNUSymtab(payload []byte, is64 bool) error {
	wordSize := 4
	if is64 {
		wordSize = 8
	}
	if len(payload) < wordSize {
		return malformed("truncated symbol index count", nil)
	}
	var count uint64
	if is64 {
		count = be64(payload[0:8])
	} else {
		count = uint64(be32(payload[0:4]))
	}
	pos := wordSize
	offsets := make([]uint64, count)
	for i := range offsets {
		if pos+wordSize > len(payload) {
			return malformed("truncated symbol index offsets", nil)
		}
		if is64 {
			offsets[i] = be64(payload[pos : pos+8])
		} else {
			offsets[i] = uint64(be32(payload[pos : pos+4]))
		}
		pos += wordSize
	}

	names := payload[pos:]
	for i := uint64(0); i < count; i++ {
		end := bytes.IndexByte(names, 0)
		if end == -1 {
			return malformed("truncated symbol index names", nil)
		}
		name := append([]byte(nil), names[:end]...)
		names = names[end+1:]
		rd.arc.Symbols = append(rd.arc.Symbols, &SymbolRef{
			Name:        name,
			MemberIndex: offsets[i],
		})
	}
	return nil
}

func isAllDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var bsdSymdefMagics = []string{"__.SYMDEF_64", "__.SYMDEF SORTED", "__.SYMDEF"}

// phaseB reads ordinary members until the input is exhausted.
func (rd *archiveReader) phaseB() error {
	first := true
	for rd.cur.remaining() > 0 {
		if err := rd.skipEvenPad(); err != nil {
			return err
		}
		if rd.cur.remaining() == 0 {
			break
		}

		headerStart := int64(rd.cur.pos)
		hdr, err := rd.readRawHeader()
		if err != nil {
			return err
		}

		size := hdr.size
		var name []byte

		switch {
		case len(hdr.name) >= 2 && hdr.name[0] == '/' && isAllDigits(hdr.name[1:]):
			off, convErr := strconv.Atoi(string(hdr.name[1:]))
			if convErr != nil || rd.longNames == nil || off > len(rd.longNames) {
				return &ErrFileName{Name: string(hdr.name), Err: malformed("invalid long-name offset", nil)}
			}
			entry := rd.longNames[off:]
			end := bytes.IndexByte(entry, '\n')
			if end <= 0 || entry[end-1] != '/' {
				return &ErrFileName{Name: string(hdr.name), Err: malformed("long-name entry missing terminator", nil)}
			}
			name = append([]byte(nil), entry[:end-1]...)
			if err := rd.noteGNUCue(); err != nil {
				return err
			}

		case len(hdr.name) >= 1 && hdr.name[len(hdr.name)-1] == '/':
			name = append([]byte(nil), hdr.name[:len(hdr.name)-1]...)
			if err := rd.noteGNUCue(); err != nil {
				return err
			}

		case bytes.HasPrefix(hdr.name, []byte("#1/")) && isAllDigits(hdr.name[3:]):
			length, convErr := strconv.Atoi(string(hdr.name[3:]))
			if convErr != nil || int64(length) > size {
				return &ErrFileName{Name: string(hdr.name), Err: malformed("invalid BSD long-name length", nil)}
			}
			nameBytes, err := rd.cur.take(length)
			if err != nil {
				return &ErrFileName{Name: string(hdr.name), Err: err}
			}
			name = append([]byte(nil), bytes.TrimRight(nameBytes, "\x00")...)
			size -= int64(length)
			if err := rd.noteBSDCue(); err != nil {
				return err
			}

		default:
			name = append([]byte(nil), hdr.name...)
		}

		var payload []byte
		if rd.arc.Dialect != DialectGNUThin {
			payload, err = rd.cur.take(int(size))
			if err != nil {
				return &ErrFileName{Name: string(name), Err: err}
			}
		}

		if first {
			first = false
			if symdef, matched := tryParseBSDSymdef(payload); matched {
				if err := rd.noteBSDCue(); err != nil {
					return err
				}
				if symdef.is64 {
					rd.arc.Dialect = DialectDarwin64
				}
				for _, e := range symdef.entries {
					rd.arc.Symbols = append(rd.arc.Symbols, &SymbolRef{
						Name:        e.name,
						MemberIndex: e.memberOffset,
					})
				}
				if err := rd.skipEvenPad(); err != nil {
					return err
				}
				continue
			}
		}

		m := &Member{
			Name:    name,
			Payload: append([]byte(nil), payload...),
			ModTime: TimestampFromSeconds(hdr.date),
			Uid:     hdr.uid,
			Gid:     hdr.gid,
			Mode:    hdr.mode,
		}
		if rd.arc.Dialect == DialectGNUThin {
			content, rerr := readSiblingFile(rd.arc.Dir, string(name))
			if rerr != nil {
				return rerr
			}
			m.Payload = content
		}
		idx := rd.arc.appendMember(m)
		rd.offsetToIndex[headerStart] = idx

		if err := rd.skipEvenPad(); err != nil {
			return err
		}
	}
	return nil
}

// phaseC rewrites every SymbolRef's placeholder raw file offset to the real member index it
// resolves to, substituting UnresolvedMemberIndex when nothing matches.
func (rd *archiveReader) phaseC() {
	for _, s := range rd.arc.Symbols {
		idx, ok := rd.offsetToIndex[int64(s.MemberIndex)]
		if !ok {
			s.MemberIndex = UnresolvedMemberIndex
			continue
		}
		s.MemberIndex = uint64(idx)
	}
}

type bsdRanlibEntry struct {
	name         []byte
	memberOffset uint64
}

type bsdSymdef struct {
	is64    bool
	entries []bsdRanlibEntry
}

// tryParseBSDSymdef inspects a first member's payload for one of the three recognised BSD/Darwin
// ranlib magics and, if found, decodes its (name_offset, member_offset) array.
func tryParseBSDSymdef(payload []byte) (bsdSymdef, bool) {
	var magic string
	for _, m := range bsdSymdefMagics {
		if bytes.HasPrefix(payload, []byte(m)) {
			magic = m
			break
		}
	}
	if magic == "" {
		return bsdSymdef{}, false
	}

	is64 := magic == "__.SYMDEF_64"
	wordSize := 4
	align := alignmentFor(DialectBSD).record
	if is64 {
		wordSize = 8
		align = alignmentFor(DialectDarwin64).record
	}
	pos := int(alignUp(int64(len(magic)), align))

	if pos+wordSize > len(payload) {
		return bsdSymdef{}, false
	}
	arrayLen := readHostUint(payload[pos:pos+wordSize], wordSize)
	pos += wordSize

	if pos+int(arrayLen) > len(payload) {
		return bsdSymdef{}, false
	}
	array := payload[pos : pos+int(arrayLen)]
	pos += int(arrayLen)

	if pos+wordSize > len(payload) {
		return bsdSymdef{}, false
	}
	strLen := readHostUint(payload[pos:pos+wordSize], wordSize)
	pos += wordSize

	if pos+int(strLen) > len(payload) {
		return bsdSymdef{}, false
	}
	blob := payload[pos : pos+int(strLen)]

	pairSize := wordSize * 2
	count := len(array) / pairSize
	entries := make([]bsdRanlibEntry, 0, count)
	for i := 0; i < count; i++ {
		rec := array[i*pairSize : (i+1)*pairSize]
		nameOff := readHostUint(rec[0:wordSize], wordSize)
		memberOff := readHostUint(rec[wordSize:2*wordSize], wordSize)
		name, err := cString(blob, int(nameOff))
		if err != nil {
			continue
		}
		entries = append(entries, bsdRanlibEntry{name: []byte(name), memberOffset: memberOff})
	}

	return bsdSymdef{is64: is64, entries: entries}, true
}

func readHostUint(b []byte, width int) uint64 {
	if width == 8 {
		if hostIsLittleEndian {
			return le64(b)
		}
		return be64(b)
	}
	if hostIsLittleEndian {
		return uint64(le32(b))
	}
	return uint64(be32(b))
}
