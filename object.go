package ar

import (
	"bytes"
	"log"
)

// symbolCandidate is an extractor's raw output before it is attached to an archive: just a name,
// the member index being assigned by the caller (mutate.go) once the member's final position in
// the archive is known.
type symbolCandidate struct {
	name []byte
}

var bitcodeMagic = []byte{'B', 'C', 0xC0, 0xDE}

// extractObjectSymbols inspects payload's leading bytes and dispatches to the matching format's
// extractor. Bitcode members are recognised and silently contribute no symbols, after logging a
// warning; anything else unrecognised also contributes no symbols, without error. A recognised
// format returns an error when its machine type is unsupported or when its header or tables are
// truncated or out of range.
func extractObjectSymbols(payload []byte) ([]symbolCandidate, error) {
	switch {
	case len(payload) >= 4 && string(payload[0:4]) == elfMagic:
		return extractELF(payload)

	case len(payload) >= 4 && isMachOMagic(payload):
		return extractMachO(payload)

	case len(payload) >= 4 && bytes.Equal(payload[0:4], bitcodeMagic):
		log.Printf("ar: member is an LLVM bitcode object; symbol extraction for bitcode is not supported, no symbols emitted")
		return nil, nil

	case isPlausibleCOFFObject(payload):
		return extractCOFF(payload)

	default:
		return nil, nil
	}
}

func isMachOMagic(payload []byte) bool {
	m := le32(payload[0:4])
	return m == machMagic32 || m == machMagic64 || m == machCigam32 || m == machCigam64
}

