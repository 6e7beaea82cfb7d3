package ch

import "strings"

// unqualifyTableName splits a possibly database-qualified table name into
// its (database, table) components. This resolves the original source's
// sql/qualify.rs `unqualify`, left as a `todo!()` stub there.
//
// The policy this implements, decided for the ambiguous backtick case the
// stub's own doctests describe: a leading backtick-quoted segment is a
// single identifier (it may itself contain a literal `.`), so the split
// only happens on an unquoted `.`. A name with no unquoted `.` has no
// database component at all, even if it's entirely backtick-quoted.
func unqualifyTableName(name string) (database string, table string) {
	if len(name) == 0 {
		return "", name
	}

	token, next := parseQualifyToken(name, 0)
	if next < len(name) && name[next] == '.' {
		tableToken, _ := parseQualifyToken(name, next+1)
		return token, tableToken
	}
	return "", token
}

// parseQualifyToken reads one dot-delimited component of a qualified name
// starting at pos: a backtick-quoted identifier (with `` as an escaped
// backtick), unescaped, or a bare run of bytes up to the next unquoted '.'
// or the end of the string. It returns the component's text and the index
// immediately after it.
func parseQualifyToken(s string, pos int) (token string, next int) {
	if pos >= len(s) || s[pos] != '`' {
		i := strings.IndexByte(s[pos:], '.')
		if i < 0 {
			return s[pos:], len(s)
		}
		return s[pos : pos+i], pos + i
	}

	i := pos + 1
	var sb strings.Builder
	for i < len(s) {
		if s[i] == '`' {
			if i+1 < len(s) && s[i+1] == '`' {
				sb.WriteByte('`')
				i += 2
				continue
			}
			return sb.String(), i + 1
		}
		sb.WriteByte(s[i])
		i++
	}
	// Unterminated quote: treat everything from pos as a literal token.
	return s[pos:], len(s)
}
