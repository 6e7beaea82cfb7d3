package proto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, typeStr string, enc func(*Buffer)) Value {
	t.Helper()
	typ, err := ParseType(typeStr)
	require.NoError(t, err)

	var buf Buffer
	enc(&buf)

	var chunks BufferedChunks
	chunks.Push(buf.Buf)
	dec := NewDecoder(&chunks)

	v, err := DecodeValue(dec, typ)
	require.NoError(t, err)
	dec.Commit()
	require.Equal(t, 0, chunks.Remaining())
	return v
}

func TestUUID_RoundTrip(t *testing.T) {
	id := [16]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	v := decodeOne(t, "UUID", func(b *Buffer) { b.PutUUID(id) })
	require.Equal(t, id, v.UUID)
}

func TestIPv4_RoundTrip(t *testing.T) {
	ip := [4]byte{192, 168, 1, 1}
	v := decodeOne(t, "IPv4", func(b *Buffer) { b.PutIPv4(ip) })
	require.Equal(t, ip, v.IPv4)
}

func TestArray_RoundTrip(t *testing.T) {
	v := decodeOne(t, "Array(UInt8)", func(b *Buffer) {
		b.PutUVarInt(3)
		b.PutUInt8(1)
		b.PutUInt8(2)
		b.PutUInt8(3)
	})
	require.Len(t, v.Array, 3)
	require.EqualValues(t, 2, v.Array[1].Uint)
}

func TestNullable_RoundTrip(t *testing.T) {
	t.Run("Null", func(t *testing.T) {
		v := decodeOne(t, "Nullable(String)", func(b *Buffer) { b.PutUInt8(1) })
		require.True(t, v.Null)
	})
	t.Run("Present", func(t *testing.T) {
		v := decodeOne(t, "Nullable(String)", func(b *Buffer) {
			b.PutUInt8(0)
			b.PutStr("hi")
		})
		require.False(t, v.Null)
		require.Equal(t, "hi", v.Array[0].Str)
	})
}

func TestMap_RoundTrip(t *testing.T) {
	v := decodeOne(t, "Map(String, UInt32)", func(b *Buffer) {
		b.PutUVarInt(2)
		b.PutStr("a")
		b.PutUInt32(1)
		b.PutStr("b")
		b.PutUInt32(2)
	})
	require.Len(t, v.Map, 2)
	require.Equal(t, "a", v.Map[0].Key.Str)
	require.EqualValues(t, 2, v.Map[1].Value.Uint)
}

func TestLowCardinality_TransparentToInner(t *testing.T) {
	v := decodeOne(t, "LowCardinality(String)", func(b *Buffer) { b.PutStr("foo") })
	require.Equal(t, KindString, v.Kind)
	require.Equal(t, "foo", v.Str)
}

// LowCardinality(Nullable(T)) is the corner case the source docs leave
// unverified against a live server; here it exercises DecodeValue's
// recursion (LowCardinality peels off, then Nullable reads its own
// presence byte) against both branches.
func TestLowCardinality_Nullable(t *testing.T) {
	t.Run("Null", func(t *testing.T) {
		v := decodeOne(t, "LowCardinality(Nullable(String))", func(b *Buffer) { b.PutUInt8(1) })
		require.Equal(t, KindNullable, v.Kind)
		require.True(t, v.Null)
	})
	t.Run("Present", func(t *testing.T) {
		v := decodeOne(t, "LowCardinality(Nullable(String))", func(b *Buffer) {
			b.PutUInt8(0)
			b.PutStr("bar")
		})
		require.False(t, v.Null)
		require.Equal(t, "bar", v.Array[0].Str)
	})
}

func TestDecimal_RoundTrip(t *testing.T) {
	typ, err := ParseType("Decimal(9, 2)")
	require.NoError(t, err)

	var buf Buffer
	buf.PutDecimal(DecimalValue{Unscaled: big.NewInt(-12345), Scale: 2}, 9)

	var chunks BufferedChunks
	chunks.Push(buf.Buf)
	dec := NewDecoder(&chunks)

	v, err := DecodeValue(dec, typ)
	require.NoError(t, err)
	dec.Commit()
	require.Equal(t, int64(-12345), v.Decimal.Unscaled.Int64())
}

func TestDecodeSchemaHeader(t *testing.T) {
	var buf Buffer
	buf.PutUVarInt(2)
	buf.PutStr("id")
	buf.PutStr("name")
	buf.PutStr("UInt32")
	buf.PutStr("String")

	var chunks BufferedChunks
	chunks.Push(buf.Buf)
	dec := NewDecoder(&chunks)

	schema, err := DecodeSchemaHeader(dec)
	require.NoError(t, err)
	dec.Commit()

	require.Equal(t, []string{"id", "name"}, schema.Names())
	require.Equal(t, KindUInt32, schema.Columns[0].Type.Kind)
	require.Equal(t, KindString, schema.Columns[1].Type.Kind)
}

func TestDecodeRow(t *testing.T) {
	schema := &Schema{Columns: []Column{
		{Name: "a", Type: &Type{Kind: KindUInt32}},
		{Name: "b", Type: &Type{Kind: KindString}},
	}}

	var buf Buffer
	buf.PutUInt32(42)
	buf.PutStr("hi")

	var chunks BufferedChunks
	chunks.Push(buf.Buf)
	dec := NewDecoder(&chunks)

	row, err := DecodeRow(dec, schema)
	require.NoError(t, err)
	dec.Commit()

	require.EqualValues(t, 42, row[0].Uint)
	require.Equal(t, "hi", row[1].Str)
}
