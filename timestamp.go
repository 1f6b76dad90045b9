package ar

import (
	"math/big"
	"time"
)

// Timestamp holds a member's modification time as nanoseconds since the Unix epoch, widened to
// 128 bits (via math/big.Int, the standard library's arbitrary-precision integer) so that it
// survives round-trips through every archive dialect without truncation.
type Timestamp struct {
	nanos *big.Int
}

// ZeroTimestamp is the coerced value used in deterministic mode.
var ZeroTimestamp = Timestamp{nanos: big.NewInt(0)}

// TimestampFromTime converts a time.Time to a Timestamp.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{nanos: big.NewInt(t.UnixNano())}
}

// TimestampFromSeconds builds a Timestamp from whole seconds since the epoch, as decoded from an
// archive header's decimal date field.
func TimestampFromSeconds(sec int64) Timestamp {
	ns := new(big.Int).Mul(big.NewInt(sec), big.NewInt(int64(time.Second)))
	return Timestamp{nanos: ns}
}

// Seconds truncates the timestamp down to whole seconds, the resolution every archive dialect's
// on-disk date field actually stores.
func (t Timestamp) Seconds() int64 {
	if t.nanos == nil {
		return 0
	}
	sec := new(big.Int).Quo(t.nanos, big.NewInt(int64(time.Second)))
	return sec.Int64()
}

// Time converts back to a time.Time at second resolution.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds(), 0).UTC()
}

// IsZero reports whether the timestamp is exactly zero.
func (t Timestamp) IsZero() bool {
	return t.nanos == nil || t.nanos.Sign() == 0
}

// Equal compares two timestamps at second resolution, the precision archives round-trip.
func (t Timestamp) Equal(o Timestamp) bool {
	return t.Seconds() == o.Seconds()
}

// After reports whether t represents a later moment than o, at second resolution.
func (t Timestamp) After(o Timestamp) bool {
	return t.Seconds() > o.Seconds()
}
