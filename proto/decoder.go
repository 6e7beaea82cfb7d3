package proto

import (
	"math"

	"github.com/go-faster/errors"
)

// ErrNotEnoughData is returned by Decoder methods when the current
// BufferedChunks doesn't yet hold enough bytes to satisfy the read. The
// decoder's logical position is never advanced when this is returned: the
// caller calls Reset (discarding the speculative read) and retries once
// more bytes have arrived.
var ErrNotEnoughData = errors.New("proto: not enough data")

// ErrSizeTooLarge is returned when a LEB128-encoded length exceeds
// Decoder.MaxSize.
var ErrSizeTooLarge = errors.New("proto: leb128 length exceeds ceiling")

// DefaultMaxSize is the default ceiling for any LEB128-prefixed length
// (string, array, map, column count, ...), matching the 1 GiB default the
// spec calls for.
const DefaultMaxSize = 1 << 30

// Decoder reads RowBinary values out of a BufferedChunks. All reads are
// speculative: they advance an internal cursor (d.pos) relative to the
// chunks' current front, but never call BufferedChunks.Advance themselves.
// The owner commits a successful row with Commit, or abandons a partial one
// with Reset; either way, BufferedChunks is untouched until Commit runs,
// which is what makes "NotEnoughData leaves the buffer unchanged" free to
// guarantee.
type Decoder struct {
	chunks  *BufferedChunks
	pos     int
	scratch []byte

	// MaxSize bounds any LEB128-prefixed length this decoder will accept.
	// Zero means DefaultMaxSize.
	MaxSize int
}

// NewDecoder returns a Decoder reading from c.
func NewDecoder(c *BufferedChunks) *Decoder {
	return &Decoder{chunks: c}
}

// Reset rebinds the decoder to c (or the same chunks, after more data
// arrived) and discards any speculative progress.
func (d *Decoder) Reset(c *BufferedChunks) {
	d.chunks = c
	d.pos = 0
}

// Commit advances the underlying BufferedChunks past everything decoded
// since the last Reset/Commit, and rewinds the local cursor.
func (d *Decoder) Commit() {
	d.chunks.Advance(d.pos)
	d.pos = 0
}

// Pos returns bytes speculatively consumed since the last Reset/Commit.
func (d *Decoder) Pos() int { return d.pos }

func (d *Decoder) maxSize() int {
	if d.MaxSize > 0 {
		return d.MaxSize
	}
	return DefaultMaxSize
}

// take returns the next n bytes without advancing the owning
// BufferedChunks.
func (d *Decoder) take(n int) ([]byte, error) {
	b, ok := d.chunks.At(d.pos, n, &d.scratch)
	if !ok {
		return nil, ErrNotEnoughData
	}
	d.pos += n
	return b, nil
}

func (d *Decoder) byte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uvarint decodes a LEB128-encoded uint64.
func (d *Decoder) Uvarint() (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; i < 10; i++ {
		b, err := d.byte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
	return 0, errors.New("proto: leb128 varint too long")
}

// Size decodes a LEB128 length and checks it against MaxSize.
func (d *Decoder) Size() (int, error) {
	v, err := d.Uvarint()
	if err != nil {
		return 0, err
	}
	if v > uint64(d.maxSize()) {
		return 0, ErrSizeTooLarge
	}
	return int(v), nil
}

func (d *Decoder) Bool() (bool, error) {
	b, err := d.byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (d *Decoder) Int8() (int8, error) {
	b, err := d.byte()
	return int8(b), err
}

func (d *Decoder) UInt8() (uint8, error) { return d.byte() }

func (d *Decoder) UInt16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}
func (d *Decoder) Int16() (int16, error) { v, err := d.UInt16(); return int16(v), err }

func (d *Decoder) UInt32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}
func (d *Decoder) Int32() (int32, error) { v, err := d.UInt32(); return int32(v), err }

func (d *Decoder) UInt64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}
func (d *Decoder) Int64() (int64, error) { v, err := d.UInt64(); return int64(v), err }

// UInt128 decodes a 128-bit little-endian unsigned integer, returning the
// low and high 64-bit words.
func (d *Decoder) UInt128() (lo, hi uint64, err error) {
	lo, err = d.UInt64()
	if err != nil {
		return 0, 0, err
	}
	hi, err = d.UInt64()
	return lo, hi, err
}

// UInt256 decodes a 256-bit little-endian unsigned integer as four 64-bit
// words, least significant first.
func (d *Decoder) UInt256() (w0, w1, w2, w3 uint64, err error) {
	if w0, err = d.UInt64(); err != nil {
		return
	}
	if w1, err = d.UInt64(); err != nil {
		return
	}
	if w2, err = d.UInt64(); err != nil {
		return
	}
	w3, err = d.UInt64()
	return
}

func (d *Decoder) Float32() (float32, error) {
	v, err := d.UInt32()
	return math.Float32frombits(v), err
}

func (d *Decoder) Float64() (float64, error) {
	v, err := d.UInt64()
	return math.Float64frombits(v), err
}

// Bytes returns n raw bytes. The slice may alias the decoder's internal
// scratch buffer and is only valid until the next decode call; copy it
// (string(b) does) before retaining it past that point.
func (d *Decoder) Bytes(n int) ([]byte, error) { return d.take(n) }

// Str decodes a LEB128-length-prefixed string.
func (d *Decoder) Str() (string, error) {
	n, err := d.Size()
	if err != nil {
		return "", err
	}
	b, err := d.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FixedStr decodes exactly n raw bytes as a string (FixedString(n)).
func (d *Decoder) FixedStr(n int) (string, error) {
	b, err := d.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
