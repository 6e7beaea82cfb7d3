package proto

import "github.com/go-faster/errors"

// DecodeValue decodes one value of type t from d. It recurses through the
// composite kinds (Array, Tuple, Map, Nullable, LowCardinality) the same way
// the wire format nests them.
//
// LowCardinality(T) is transparent on the plain-RowBinary wire: the
// dictionary is erased server-side and the stream matches T's own
// encoding, including when T is itself Nullable(String); there is no
// separate LowCardinality framing to strip here, just T's bytes.
func DecodeValue(d *Decoder, t *Type) (Value, error) {
	switch t.Kind {
	case KindInt8:
		v, err := d.Int8()
		return Value{Kind: t.Kind, Int: int64(v)}, err
	case KindInt16:
		v, err := d.Int16()
		return Value{Kind: t.Kind, Int: int64(v)}, err
	case KindInt32:
		v, err := d.Int32()
		return Value{Kind: t.Kind, Int: int64(v)}, err
	case KindInt64:
		v, err := d.Int64()
		return Value{Kind: t.Kind, Int: v}, err
	case KindInt128:
		lo, hi, err := d.UInt128()
		return Value{Kind: t.Kind, Uint: lo, Int: int64(hi)}, err
	case KindInt256:
		w0, w1, w2, w3, err := d.UInt256()
		return Value{Kind: t.Kind, Uint: w0, Bytes: uint64sToBytes(w1, w2, w3)}, err
	case KindUInt8:
		v, err := d.UInt8()
		return Value{Kind: t.Kind, Uint: uint64(v)}, err
	case KindUInt16:
		v, err := d.UInt16()
		return Value{Kind: t.Kind, Uint: uint64(v)}, err
	case KindUInt32:
		v, err := d.UInt32()
		return Value{Kind: t.Kind, Uint: uint64(v)}, err
	case KindUInt64:
		v, err := d.UInt64()
		return Value{Kind: t.Kind, Uint: v}, err
	case KindUInt128:
		lo, hi, err := d.UInt128()
		return Value{Kind: t.Kind, Uint: lo, Bytes: uint64sToBytes(hi)}, err
	case KindUInt256:
		w0, w1, w2, w3, err := d.UInt256()
		return Value{Kind: t.Kind, Uint: w0, Bytes: uint64sToBytes(w1, w2, w3)}, err
	case KindFloat32:
		v, err := d.Float32()
		return Value{Kind: t.Kind, Float: float64(v)}, err
	case KindFloat64:
		v, err := d.Float64()
		return Value{Kind: t.Kind, Float: v}, err
	case KindBool:
		v, err := d.Bool()
		return Value{Kind: t.Kind, Bool: v}, err
	case KindString:
		v, err := d.Str()
		return Value{Kind: t.Kind, Str: v}, err
	case KindFixedString:
		v, err := d.FixedStr(t.N)
		return Value{Kind: t.Kind, Str: v}, err
	case KindUUID:
		v, err := d.UUID()
		return Value{Kind: t.Kind, UUID: v}, err
	case KindIPv4:
		v, err := d.IPv4()
		return Value{Kind: t.Kind, IPv4: v}, err
	case KindIPv6:
		v, err := d.IPv6()
		return Value{Kind: t.Kind, IPv6: v}, err
	case KindDate:
		v, err := d.UInt16()
		return Value{Kind: t.Kind, Uint: uint64(v)}, err
	case KindDateTime:
		v, err := d.UInt32()
		return Value{Kind: t.Kind, Uint: uint64(v)}, err
	case KindDateTime64:
		v, err := d.Int64()
		return Value{Kind: t.Kind, Int: v}, err
	case KindDecimal:
		v, err := d.Decimal(t.Precision, t.Scale)
		return Value{Kind: t.Kind, Decimal: v}, err
	case KindEnum8:
		v, err := d.Int8()
		return Value{Kind: t.Kind, Int: int64(v)}, err
	case KindEnum16:
		v, err := d.Int16()
		return Value{Kind: t.Kind, Int: int64(v)}, err
	case KindNothing:
		return Value{Kind: t.Kind}, nil
	case KindNullable:
		flag, err := d.UInt8()
		if err != nil {
			return Value{}, err
		}
		if flag != 0 {
			return Value{Kind: t.Kind, Null: true}, nil
		}
		inner, err := DecodeValue(d, t.Elem)
		inner.Null = false
		return Value{Kind: t.Kind, Array: []Value{inner}}, err
	case KindLowCardinality:
		return DecodeValue(d, t.Elem)
	case KindArray:
		n, err := d.Size()
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, n)
		for i := 0; i < n; i++ {
			v, err := DecodeValue(d, t.Elem)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{Kind: t.Kind, Array: items}, nil
	case KindTuple:
		items := make([]Value, len(t.Items))
		for i, it := range t.Items {
			v, err := DecodeValue(d, it)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{Kind: t.Kind, Tuple: items}, nil
	case KindMap:
		n, err := d.Size()
		if err != nil {
			return Value{}, err
		}
		kvs := make([]KV, n)
		for i := 0; i < n; i++ {
			k, err := DecodeValue(d, t.Key)
			if err != nil {
				return Value{}, err
			}
			v, err := DecodeValue(d, t.Value)
			if err != nil {
				return Value{}, err
			}
			kvs[i] = KV{Key: k, Value: v}
		}
		return Value{Kind: t.Kind, Map: kvs}, nil
	default:
		return Value{}, errors.Errorf("decode: unsupported type %q", t.Raw)
	}
}

func uint64sToBytes(words ...uint64) []byte {
	out := make([]byte, 0, 8*len(words))
	for _, w := range words {
		for i := 0; i < 8; i++ {
			out = append(out, byte(w>>(8*i)))
		}
	}
	return out
}

// DecodeRow decodes one row's worth of values against schema. It is used by
// the dynamic/fetch_raw path and by validation; typed RowCursor[T] decoding
// normally calls a RowReflection's own Decode instead.
//
// Per the decode contract, a NotEnoughData error here leaves d's speculative
// position wherever it happened to stop; the caller must Reset (not Commit)
// d before retrying, which is exactly what RowCursor does.
func DecodeRow(d *Decoder, schema *Schema) ([]Value, error) {
	values := make([]Value, len(schema.Columns))
	for i, col := range schema.Columns {
		v, err := DecodeValue(d, col.Type)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
