package ch

import "strings"

// escapeQuoted wraps src in ch, doubling backslashes and escaping every
// occurrence of ch itself with a backslash. Grounded on the original
// source's sql/escape.rs, which achieves the same result by splitting on
// ch and on backslash and rejoining with escaped separators; a single
// per-byte pass produces an identical string.
func escapeQuoted(src string, ch byte) string {
	var sb strings.Builder
	sb.Grow(len(src) + 2)
	sb.WriteByte(ch)
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\\' || c == ch {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	sb.WriteByte(ch)
	return sb.String()
}

// escapeString renders src as a single-quoted SQL string literal.
// https://clickhouse.com/docs/en/sql-reference/syntax#string
func escapeString(src string) string { return escapeQuoted(src, '\'') }

// escapeIdentifier renders src as a backtick-quoted SQL identifier.
// https://clickhouse.com/docs/en/sql-reference/syntax#identifiers
func escapeIdentifier(src string) string { return escapeQuoted(src, '`') }
