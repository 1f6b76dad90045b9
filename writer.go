/*
Copyright (c) 2017 Jerry Jacobs <jerry.jacobs@xor-gate.org>
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

// The archive writer. Like reader.go it was rebuilt from the upstream streaming Writer this
// package started from into a whole-archive serialiser over the Archive/Member/SymbolRef model,
// but it keeps that writer's space-padded-ASCII field encoding and its "100"-prefixed octal mode
// convention for real file metadata.
package ar

import (
	"bytes"
	"sort"
	"strconv"
)

// WriteArchive serialises arc to bytes in its resolved dialect (DialectAmbiguous falls back to
// HostDialect).
func WriteArchive(arc *Archive) ([]byte, error) {
	dialect := arc.Dialect
	if dialect == DialectAmbiguous {
		dialect = HostDialect()
	}

	switch {
	case isGNUFamily(dialect):
		return writeGNUFamily(arc, dialect)
	case isBSDFamily(dialect):
		return writeBSDFamily(arc, dialect)
	default:
		return nil, ErrUnreachableDialect
	}
}

func chooseSymtabTimestamp(mods Modifiers) Timestamp {
	if mods.UseRealTimestampsAndIDs {
		return TimestampFromSeconds(wallClockSeconds())
	}
	return ZeroTimestamp
}

func sortedSymbols(symbols []*SymbolRef) []*SymbolRef {
	out := append([]*SymbolRef(nil), symbols...)
	sort.SliceStable(out, func(i, j int) bool {
		return bytes.Compare(out[i].Name, out[j].Name) < 0
	})
	return out
}

// writeHeaderRecord encodes one 60-byte header record for a synthetic (table/symdef) member.
// Callers pass zero uid/gid/mode; the timestamp is whatever the caller chose (the symbol table's
// comes from chooseSymtabTimestamp, so it is the wall clock when real timestamps are in use).
func writeHeaderRecord(buf *bytes.Buffer, name string, ts Timestamp, uid, gid, mode, size int64) {
	rec := make([]byte, HeaderByteSize)
	s := slicer(rec)
	putASCII(s.next(16), name)
	putDecimal(s.next(12), ts.Seconds())
	putDecimal(s.next(6), uid)
	putDecimal(s.next(6), gid)
	putDecimal(s.next(8), mode)
	putDecimal(s.next(10), size)
	putASCII(s.next(2), "`\n")
	buf.Write(rec)
}

// writeMemberHeader encodes a real Member's header. Deterministic mode coerces uid/gid/mtime to
// zero and the mode field to the bare decimal literal "644" (documented LLVM ar oddity, not an
// octal rendering of 0644). Real mode bits are rendered as octal, "100"-prefixed, assuming every
// insertable member is a regular file.
func writeMemberHeader(buf *bytes.Buffer, name string, m *Member, size int64, deterministic bool) {
	rec := make([]byte, HeaderByteSize)
	s := slicer(rec)
	putASCII(s.next(16), name)

	if deterministic {
		putDecimal(s.next(12), 0)
		putDecimal(s.next(6), DeterministicUID)
		putDecimal(s.next(6), DeterministicGID)
		putASCII(s.next(8), strconv.FormatInt(DeterministicMode, 10))
	} else {
		putDecimal(s.next(12), m.ModTime.Seconds())
		putDecimal(s.next(6), m.Uid)
		putDecimal(s.next(6), m.Gid)
		putASCII(s.next(8), "100"+strconv.FormatInt(m.Mode&0o777, 8))
	}

	putDecimal(s.next(10), size)
	putASCII(s.next(2), "`\n")
	buf.Write(rec)
}

func padTo(buf *bytes.Buffer, writtenLen int, align int64, pad byte) {
	padded := alignUp(int64(writtenLen), align)
	for i := int64(writtenLen); i < padded; i++ {
		buf.WriteByte(pad)
	}
}

func putHostUint(b []byte, v uint64, width int) {
	if width == 8 {
		if hostIsLittleEndian {
			putLE64(b, v)
		} else {
			putBE64(b, v)
		}
		return
	}
	if hostIsLittleEndian {
		putLE32(b, uint32(v))
	} else {
		putBE32(b, uint32(v))
	}
}

// writeGNUFamily serialises the GNU, GNU-thin, GNU64 and COFF dialects, which share a header
// layout and long-name-table convention.
func writeGNUFamily(arc *Archive, dialect Dialect) ([]byte, error) {
	det := arc.Modifiers.DeterministicMode()
	thin := dialect == DialectGNUThin
	is64 := dialect == DialectGNU64
	wordSize := 4
	if is64 {
		wordSize = 8
	}

	type memberEnc struct {
		headerName string
		recordSize int64
	}

	var longNames bytes.Buffer
	encs := make([]memberEnc, len(arc.Members))
	for i, m := range arc.Members {
		name := string(m.Name)
		var headerName string
		if thin || len(name) >= 16 {
			offset := longNames.Len()
			longNames.WriteString(name)
			longNames.WriteString("/\n")
			headerName = "/" + strconv.Itoa(offset)
		} else {
			headerName = name + "/"
		}

		recordSize := int64(HeaderByteSize)
		if !thin {
			recordSize += alignUp(m.Size(), 2)
		}
		encs[i] = memberEnc{headerName: headerName, recordSize: recordSize}
	}

	relOffsets := make([]int64, len(arc.Members))
	var running int64
	for i := range arc.Members {
		relOffsets[i] = running
		running += encs[i].recordSize
	}

	// COFF archives as written by this package never carry a symbol directory; otherwise their
	// layout is identical to GNU.
	buildSymtab := arc.Modifiers.BuildSymbolTable && dialect != DialectCOFF && len(arc.Symbols) > 0

	var symbols []*SymbolRef
	if buildSymtab {
		symbols = arc.Symbols
		if arc.Modifiers.SortSymbolTable {
			symbols = sortedSymbols(symbols)
		}
	}

	var namesBlob []byte
	for _, s := range symbols {
		namesBlob = append(namesBlob, s.Name...)
		namesBlob = append(namesBlob, 0)
	}

	var symtabPayloadLen int64
	if buildSymtab {
		symtabPayloadLen = int64(wordSize) + int64(len(symbols))*int64(wordSize) + int64(len(namesBlob))
	}
	var symtabRecordSize int64
	if buildSymtab {
		symtabRecordSize = HeaderByteSize + alignUp(symtabPayloadLen, 2)
	}

	var strtabRecordSize int64
	if longNames.Len() > 0 {
		strtabRecordSize = HeaderByteSize + alignUp(int64(longNames.Len()), 2)
	}

	magic := GlobalHeader
	if thin {
		magic = GlobalHeaderThin
	}
	offsetToFiles := int64(len(magic)) + symtabRecordSize + strtabRecordSize

	var out bytes.Buffer
	out.WriteString(magic)

	if buildSymtab {
		symtabName := "/"
		if is64 {
			symtabName = "/SYM64/"
		}
		var payload bytes.Buffer
		countBuf := make([]byte, wordSize)
		if is64 {
			putBE64(countBuf, uint64(len(symbols)))
		} else {
			putBE32(countBuf, uint32(len(symbols)))
		}
		payload.Write(countBuf)
		for _, s := range symbols {
			var off int64
			if s.MemberIndex < uint64(len(arc.Members)) {
				off = relOffsets[s.MemberIndex] + offsetToFiles
			}
			offBuf := make([]byte, wordSize)
			if is64 {
				putBE64(offBuf, uint64(off))
			} else {
				putBE32(offBuf, uint32(off))
			}
			payload.Write(offBuf)
		}
		payload.Write(namesBlob)

		ts := chooseSymtabTimestamp(arc.Modifiers)
		writeHeaderRecord(&out, symtabName, ts, 0, 0, 0, int64(payload.Len()))
		out.Write(payload.Bytes())
		padTo(&out, payload.Len(), 2, 0)
	}

	if longNames.Len() > 0 {
		writeHeaderRecord(&out, "//", ZeroTimestamp, 0, 0, 0, int64(longNames.Len()))
		out.Write(longNames.Bytes())
		padTo(&out, longNames.Len(), 2, '\n')
	}

	for i, m := range arc.Members {
		writeMemberHeader(&out, encs[i].headerName, m, m.Size(), det)
		if !thin {
			out.Write(m.Payload)
			padTo(&out, len(m.Payload), 2, '\n')
		}
	}

	return out.Bytes(), nil
}

// writeBSDFamily serialises the BSD, Darwin and Darwin64 dialects, which encode names inline
// ahead of the payload and use a ranlib-array symbol directory instead of a GNU-style index.
func writeBSDFamily(arc *Archive, dialect Dialect) ([]byte, error) {
	align := alignmentFor(dialect)
	det := arc.Modifiers.DeterministicMode()
	is64 := dialect == DialectDarwin64
	wordSize := 4
	if is64 {
		wordSize = 8
	}

	type memberEnc struct {
		nameArea   []byte
		recordSize int64
	}

	encs := make([]memberEnc, len(arc.Members))
	for i, m := range arc.Members {
		nameLen := alignUp(int64(len(m.Name)), align.record)
		area := make([]byte, nameLen)
		copy(area, m.Name)
		payloadPadded := alignUp(m.Size(), align.payload)
		encs[i] = memberEnc{nameArea: area, recordSize: HeaderByteSize + nameLen + payloadPadded}
	}

	relOffsets := make([]int64, len(arc.Members))
	var running int64
	for i := range arc.Members {
		relOffsets[i] = running
		running += encs[i].recordSize
	}

	var symbols []*SymbolRef
	if arc.Modifiers.BuildSymbolTable {
		symbols = arc.Symbols
		if arc.Modifiers.SortSymbolTable {
			symbols = sortedSymbols(symbols)
		}
	}

	includeSymdef := isDarwin(dialect) || len(symbols) > 0

	var namesBlob []byte
	nameOffsets := make([]int64, len(symbols))
	for i, s := range symbols {
		nameOffsets[i] = int64(len(namesBlob))
		namesBlob = append(namesBlob, s.Name...)
		namesBlob = append(namesBlob, 0)
	}

	const symdefNameAreaSize = 12 // fixed "#1/12" convention, not the general record-alignment rounding

	var magicBytes, magicPad []byte
	var symdefBodyLen int64
	var symdefRecordSize int64

	if includeSymdef {
		if is64 {
			magicBytes = []byte("__.SYMDEF_64")
		} else {
			magicBytes = []byte("__.SYMDEF\x00\x00\x00")
		}
		magicPad = make([]byte, alignUp(int64(len(magicBytes)), align.record)-int64(len(magicBytes)))

		pairSize := int64(wordSize * 2)
		arrayLen := int64(len(symbols)) * pairSize
		symdefBodyLen = int64(len(magicBytes)) + int64(len(magicPad)) + int64(wordSize) + arrayLen + int64(wordSize) + int64(len(namesBlob))
		symdefRecordSize = HeaderByteSize + symdefNameAreaSize + alignUp(symdefBodyLen, align.payload)
	}

	offsetToFiles := int64(len(GlobalHeader)) + symdefRecordSize

	var out bytes.Buffer
	out.WriteString(GlobalHeader)

	if includeSymdef {
		var body bytes.Buffer
		body.Write(magicBytes)
		body.Write(magicPad)

		lenBuf := make([]byte, wordSize)
		putHostUint(lenBuf, uint64(int64(len(symbols))*int64(wordSize*2)), wordSize)
		body.Write(lenBuf)

		for i, s := range symbols {
			var memberOff int64
			if s.MemberIndex < uint64(len(arc.Members)) {
				memberOff = relOffsets[s.MemberIndex] + offsetToFiles
			}
			pairBuf := make([]byte, wordSize*2)
			putHostUint(pairBuf[0:wordSize], uint64(nameOffsets[i]), wordSize)
			putHostUint(pairBuf[wordSize:], uint64(memberOff), wordSize)
			body.Write(pairBuf)
		}

		strLenBuf := make([]byte, wordSize)
		putHostUint(strLenBuf, uint64(len(namesBlob)), wordSize)
		body.Write(strLenBuf)
		body.Write(namesBlob)

		nameArea := make([]byte, symdefNameAreaSize)
		copy(nameArea, "__.SYMDEF")

		ts := chooseSymtabTimestamp(arc.Modifiers)
		writeHeaderRecord(&out, "#1/12", ts, 0, 0, 0, int64(symdefNameAreaSize)+int64(body.Len()))
		out.Write(nameArea)
		out.Write(body.Bytes())
		padTo(&out, body.Len(), align.payload, 0)
	}

	for i, m := range arc.Members {
		enc := encs[i]
		headerName := "#1/" + strconv.FormatInt(int64(len(enc.nameArea)), 10)
		size := int64(len(enc.nameArea)) + m.Size()
		writeMemberHeader(&out, headerName, m, size, det)
		out.Write(enc.nameArea)
		out.Write(m.Payload)
		padTo(&out, len(m.Payload), align.payload, 0)
	}

	return out.Bytes(), nil
}
