package proto

import "math/big"

// Value is the generic, dynamically-typed representation of a single
// RowBinary field. It is used by the fetch_raw/dynamic path and by schema
// validation; typed callers normally go through a RowReflection's own
// Decode/Encode methods against the Decoder/Buffer primitives directly,
// without paying for this wrapper.
type Value struct {
	Kind Kind

	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	Str   string
	Bytes []byte

	UUID [16]byte
	IPv4 [4]byte
	IPv6 [16]byte

	Decimal DecimalValue

	Null  bool // valid only when the declared type is Nullable(T)
	Array []Value
	Tuple []Value
	Map   []KV
}

// KV is one Map(K,V) entry.
type KV struct {
	Key   Value
	Value Value
}

// DecimalValue is an arbitrary-precision fixed-point value: the actual
// number is Unscaled / 10^Scale.
type DecimalValue struct {
	Unscaled *big.Int
	Scale    int
}

// swapHalf reverses b in place; ClickHouse stores UUIDs with each 8-byte
// half byte-swapped relative to the canonical big-endian text form.
func swapHalf(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// PutUUID appends a UUID in ClickHouse's on-wire byte order: the canonical
// 16 bytes with each 8-byte half reversed.
func (b *Buffer) PutUUID(id [16]byte) {
	var w [16]byte
	copy(w[:], id[:])
	swapHalf(w[0:8])
	swapHalf(w[8:16])
	b.PutRaw(w[:])
}

// UUID decodes a UUID from ClickHouse's on-wire byte order back into the
// canonical 16-byte form.
func (d *Decoder) UUID() ([16]byte, error) {
	var out [16]byte
	b, err := d.Bytes(16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	swapHalf(out[0:8])
	swapHalf(out[8:16])
	return out, nil
}

// PutIPv4 appends ip (big-endian/network-order bytes) in ClickHouse's
// reversed on-wire order.
func (b *Buffer) PutIPv4(ip [4]byte) {
	b.PutUInt8(ip[3])
	b.PutUInt8(ip[2])
	b.PutUInt8(ip[1])
	b.PutUInt8(ip[0])
}

// IPv4 decodes a reversed-order IPv4 address back into network-order bytes.
func (d *Decoder) IPv4() ([4]byte, error) {
	b, err := d.Bytes(4)
	if err != nil {
		return [4]byte{}, err
	}
	return [4]byte{b[3], b[2], b[1], b[0]}, nil
}

// PutIPv6 appends ip verbatim: IPv6 is big-endian on the wire, matching its
// in-memory network-order representation.
func (b *Buffer) PutIPv6(ip [16]byte) { b.PutRaw(ip[:]) }

func (d *Decoder) IPv6() ([16]byte, error) {
	var out [16]byte
	b, err := d.Bytes(16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// decimalWidth returns the on-wire byte width ClickHouse uses for
// Decimal(p,s), selected by precision: Decimal32/64/128/256.
func decimalWidth(precision int) int {
	switch {
	case precision <= 9:
		return 4
	case precision <= 18:
		return 8
	case precision <= 38:
		return 16
	default:
		return 32
	}
}

// Decimal decodes a Decimal(p,s) value as its underlying little-endian
// signed integer, sized by precision.
func (d *Decoder) Decimal(precision, scale int) (DecimalValue, error) {
	width := decimalWidth(precision)
	b, err := d.Bytes(width)
	if err != nil {
		return DecimalValue{}, err
	}
	neg := width > 0 && b[width-1]&0x80 != 0
	mag := make([]byte, width)
	for i := 0; i < width; i++ {
		mag[width-1-i] = b[i]
	}
	v := new(big.Int).SetBytes(mag)
	if neg {
		full := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		v.Sub(v, full)
	}
	return DecimalValue{Unscaled: v, Scale: scale}, nil
}

// PutDecimal appends a Decimal(p,s) value as its underlying little-endian
// signed integer, sized by precision.
func (b *Buffer) PutDecimal(v DecimalValue, precision int) {
	width := decimalWidth(precision)
	unscaled := v.Unscaled
	if unscaled == nil {
		unscaled = new(big.Int)
	}
	bytesLE := make([]byte, width)
	mag := new(big.Int).Abs(unscaled)
	magBytes := mag.Bytes() // big-endian
	for i := 0; i < len(magBytes) && i < width; i++ {
		bytesLE[i] = magBytes[len(magBytes)-1-i]
	}
	if unscaled.Sign() < 0 {
		// Two's complement negate in place.
		carry := byte(1)
		for i := 0; i < width; i++ {
			bytesLE[i] = ^bytesLE[i]
			sum := uint16(bytesLE[i]) + uint16(carry)
			bytesLE[i] = byte(sum)
			carry = byte(sum >> 8)
		}
	}
	b.PutRaw(bytesLE)
}
