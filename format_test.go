package ch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutputFormat(t *testing.T) {
	require.Equal(t, "RowBinary", FormatRowBinary.String())
	require.False(t, FormatRowBinary.HasSchemaHeader())

	require.Equal(t, "RowBinaryWithNamesAndTypes", FormatRowBinaryWithNamesAndTypes.String())
	require.True(t, FormatRowBinaryWithNamesAndTypes.HasSchemaHeader())

	raw := RawFormat("CSVWithNamesAndTypes")
	require.Equal(t, "CSVWithNamesAndTypes", raw.String())
	require.False(t, raw.HasSchemaHeader())
}
