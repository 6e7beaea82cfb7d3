package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *Type {
	t.Helper()
	typ, err := ParseType(s)
	require.NoError(t, err, "type %q should parse", s)
	return typ
}

func TestType_Conflicts(t *testing.T) {
	t.Run("Compatible", func(t *testing.T) {
		for _, tt := range []struct{ A, B string }{
			{"Int32", "Int32"},
			{"DateTime", "DateTime"},
			{"Array(Int32)", "Array(Int32)"},
			{"DateTime('Europe/Moscow')", "DateTime('UTC')"},
			{"DateTime('Europe/Moscow')", "DateTime"},
			{"Map(String, String)", "Map(String,String)"},
			{"Enum8('increment' = 1, 'gauge' = 2)", "Int8"},
			{"Int8", "Enum8('increment' = 1, 'gauge' = 2)"},
			{"Enum8('increment' = 1, 'gauge' = 2)", "Enum8"},
			{"Enum8", "Enum8('increment' = 1, 'gauge' = 2)"},
			{"Decimal256", "Decimal(76, 38)"},
			{"Nullable(Decimal256)", "Nullable(Decimal(76, 38))"},
		} {
			a, b := mustParse(t, tt.A), mustParse(t, tt.B)
			assert.False(t, a.Conflicts(b), "%s ~ %s", tt.A, tt.B)
			assert.False(t, b.Conflicts(a), "%s ~ %s", tt.B, tt.A)
		}
	})

	t.Run("Incompatible", func(t *testing.T) {
		for _, tt := range []struct{ A, B string }{
			{"Int32", "Int64"},
			{"DateTime", "Int32"},
			{"Array(Int32)", "Array(Int64)"},
			{"Map(String,String)", "Map(String,Int32)"},
			{"Enum16('increment' = 1, 'gauge' = 2)", "Int8"},
		} {
			a, b := mustParse(t, tt.A), mustParse(t, tt.B)
			assert.True(t, a.Conflicts(b), "%s !~ %s", tt.A, tt.B)
			assert.True(t, b.Conflicts(a), "%s !~ %s", tt.B, tt.A)
		}
	})
}

func TestParseType_Composite(t *testing.T) {
	arr := mustParse(t, "Array(Int16)")
	require.Equal(t, KindArray, arr.Kind)
	require.Equal(t, KindInt16, arr.Elem.Kind)

	nullable := mustParse(t, "Nullable(String)")
	require.Equal(t, KindNullable, nullable.Kind)
	require.Equal(t, KindString, nullable.Elem.Kind)

	tup := mustParse(t, "Tuple(Int8, String, Array(UInt8))")
	require.Len(t, tup.Items, 3)
	require.Equal(t, KindArray, tup.Items[2].Kind)

	m := mustParse(t, "Map(String, Int32)")
	require.Equal(t, KindString, m.Key.Kind)
	require.Equal(t, KindInt32, m.Value.Kind)

	fs := mustParse(t, "FixedString(16)")
	require.Equal(t, 16, fs.N)

	dec := mustParse(t, "Decimal(18, 4)")
	require.Equal(t, 18, dec.Precision)
	require.Equal(t, 4, dec.Scale)
}
