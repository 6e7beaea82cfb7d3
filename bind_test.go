package ch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kokizzu/ch/proto"
)

func TestBindArg(t *testing.T) {
	s, err := bindArg("foo'bar")
	require.NoError(t, err)
	require.Equal(t, `'foo\'bar'`, s)

	s, err = bindArg(Ident("my_table"))
	require.NoError(t, err)
	require.Equal(t, "`my_table`", s)

	s, err = bindArg(42)
	require.NoError(t, err)
	require.Equal(t, "42", s)

	s, err = bindArg(true)
	require.NoError(t, err)
	require.Equal(t, "true", s)

	s, err = bindArg([]int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, "(1, 2, 3)", s)
}

func TestBindTemplate_Placeholders(t *testing.T) {
	sql, err := bindTemplate("SELECT * FROM t WHERE a = ? AND b = ?", nil, []any{1, "x"}, true)
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM t WHERE a = 1 AND b = 'x'", sql)
}

func TestBindTemplate_Fields(t *testing.T) {
	cols := []proto.Column{{Name: "id"}, {Name: "name"}}
	sql, err := bindTemplate("SELECT ?fields FROM t", cols, nil, false)
	require.NoError(t, err)
	require.Equal(t, "SELECT `id`, `name` FROM t", sql)
}

func TestBindTemplate_RejectsPlaceholderWhenNotAllowed(t *testing.T) {
	_, err := bindTemplate("SELECT ?", nil, nil, false)
	require.Error(t, err)
}

func TestBindTemplate_RejectsArgCountMismatch(t *testing.T) {
	_, err := bindTemplate("SELECT ?, ?", nil, []any{1}, true)
	require.Error(t, err)
}
