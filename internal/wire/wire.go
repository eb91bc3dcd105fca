// Package wire frames values for stores that cannot expire entries
// individually. The frame carries an absolute deadline next to the payload.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version   byte = 1
	kindEntry byte = 1
	headerLen      = 4 + 1 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("cachekit: corrupt entry")
	magic4     = [...]byte{'C', 'K', 'I', 'T'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | kind(1) | deadline(i64 be, unix nanos, 0 = none) | vlen(u32 be) | payload(vlen)
func EncodeEntry(deadline time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte

	var nanos int64
	if !deadline.IsZero() {
		nanos = deadline.UnixNano()
	}
	binary.BigEndian.PutUint64(u8[:], uint64(nanos))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEntry returns the deadline (zero when none) and a payload slice that
// aliases b. Trailing bytes are rejected.
func DecodeEntry(b []byte) (deadline time.Time, payload []byte, err error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return time.Time{}, nil, ErrCorrupt
	}

	off := 6
	nanos := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return time.Time{}, nil, ErrCorrupt
	}

	if nanos != 0 {
		deadline = time.Unix(0, nanos)
	}
	return deadline, b[off : off+vlen], nil
}

// Expired reports whether deadline is set and not after now.
func Expired(deadline, now time.Time) bool {
	return !deadline.IsZero() && !now.Before(deadline)
}
