package ch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Grounded on the original source's sql/escape.rs unit tests.
func TestEscapeString(t *testing.T) {
	got := escapeString(`f\o'o '' b\'ar'`)
	require.Equal(t, `'f\\o\'o \'\' b\\\'ar\''`, got)
}

func TestEscapeIdentifier(t *testing.T) {
	got := escapeIdentifier("f\\o`o `` b\\`ar`")
	require.Equal(t, "`f\\\\o\\`o \\`\\` b\\\\\\`ar\\``", got)
}

func TestEscapeQuoted_SimpleCases(t *testing.T) {
	require.Equal(t, "`id`", escapeIdentifier("id"))
	require.Equal(t, "''", escapeString(""))
}
