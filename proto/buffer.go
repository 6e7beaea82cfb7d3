package proto

import (
	"encoding/binary"
	"math"
)

// Buffer is a growable little-endian encode buffer. Insert writers and the
// query builder append RowBinary-encoded values to one of these before
// handing the bytes to the transport.
type Buffer struct {
	Buf []byte
}

// Reset truncates the buffer without releasing its backing array.
func (b *Buffer) Reset() { b.Buf = b.Buf[:0] }

func (b *Buffer) PutUInt8(v uint8) { b.Buf = append(b.Buf, v) }
func (b *Buffer) PutInt8(v int8)   { b.PutUInt8(uint8(v)) }

func (b *Buffer) PutBool(v bool) {
	if v {
		b.PutUInt8(1)
	} else {
		b.PutUInt8(0)
	}
}

func (b *Buffer) PutUInt16(v uint16) { b.Buf = binary.LittleEndian.AppendUint16(b.Buf, v) }
func (b *Buffer) PutUInt32(v uint32) { b.Buf = binary.LittleEndian.AppendUint32(b.Buf, v) }
func (b *Buffer) PutUInt64(v uint64) { b.Buf = binary.LittleEndian.AppendUint64(b.Buf, v) }

func (b *Buffer) PutInt16(v int16) { b.PutUInt16(uint16(v)) }
func (b *Buffer) PutInt32(v int32) { b.PutUInt32(uint32(v)) }
func (b *Buffer) PutInt64(v int64) { b.PutUInt64(uint64(v)) }

func (b *Buffer) PutFloat32(v float32) { b.PutUInt32(math.Float32bits(v)) }
func (b *Buffer) PutFloat64(v float64) { b.PutUInt64(math.Float64bits(v)) }

// PutUInt128 appends a 128-bit little-endian unsigned integer, low word
// first, as ClickHouse's Int128/UInt128/UUID-adjacent fixed-width types
// expect.
func (b *Buffer) PutUInt128(lo, hi uint64) {
	b.PutUInt64(lo)
	b.PutUInt64(hi)
}

// PutUInt256 appends a 256-bit little-endian unsigned integer, least
// significant word first.
func (b *Buffer) PutUInt256(w0, w1, w2, w3 uint64) {
	b.PutUInt64(w0)
	b.PutUInt64(w1)
	b.PutUInt64(w2)
	b.PutUInt64(w3)
}

// PutRaw appends v verbatim.
func (b *Buffer) PutRaw(v []byte) { b.Buf = append(b.Buf, v...) }

// PutUVarInt appends v as a LEB128 varint: 7 data bits per byte, high bit
// set on every byte but the last.
func (b *Buffer) PutUVarInt(v uint64) {
	for v >= 0x80 {
		b.Buf = append(b.Buf, byte(v)|0x80)
		v >>= 7
	}
	b.Buf = append(b.Buf, byte(v))
}

// PutStr appends s as a LEB128 length prefix followed by its bytes.
func (b *Buffer) PutStr(s string) {
	b.PutUVarInt(uint64(len(s)))
	b.Buf = append(b.Buf, s...)
}

// PutFixedStr appends exactly n bytes: s truncated or zero-padded to n.
// Callers that need a hard error on oversized input should check
// len(s) <= n themselves; encode(FixedString(n), s) producing exactly n
// bytes is an invariant this method always satisfies.
func (b *Buffer) PutFixedStr(s string, n int) {
	if len(s) >= n {
		b.Buf = append(b.Buf, s[:n]...)
		return
	}
	b.Buf = append(b.Buf, s...)
	for i := len(s); i < n; i++ {
		b.Buf = append(b.Buf, 0)
	}
}
