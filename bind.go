package ch

import (
	"reflect"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/kokizzu/ch/proto"
)

// Identifier binds a caller-supplied string as a backtick-escaped SQL
// identifier rather than a string literal, for use where a `?` placeholder
// names a table or column rather than a value. Grounded on the original
// source's sql/bind.rs Identifier wrapper.
type Identifier string

// Ident wraps name so bindArg renders it as an escaped identifier.
func Ident(name string) Identifier { return Identifier(name) }

// bindArg renders a single bound argument as it should appear in the SQL
// text, the way the original source's sql::ser module serializes each
// Serialize value. Supported shapes: Identifier, strings, byte slices,
// booleans, every integer/float kind, time.Time (as a ClickHouse DateTime64
// literal), and slices/arrays of any of the above (rendered as a Tuple
// literal, the common shape for `IN ?`).
func bindArg(v any) (string, error) {
	switch x := v.(type) {
	case Identifier:
		return escapeIdentifier(string(x)), nil
	case string:
		return escapeString(x), nil
	case []byte:
		return escapeString(string(x)), nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case time.Time:
		return escapeString(x.UTC().Format("2006-01-02 15:04:05.999999999")), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			s, err := bindArg(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		out := "("
		for i, p := range parts {
			if i > 0 {
				out += ", "
			}
			out += p
		}
		return out + ")", nil
	default:
		return "", errors.Errorf("bind: unsupported argument type %T", v)
	}
}

// bindTemplate substitutes `?` placeholders in sql with args in order, and
// `?fields` with a comma-joined, backtick-escaped column list drawn from
// cols. `?` substitution is opt-in via allowPlaceholders, matching the
// spec's "stricter templates" flag: when it is false, any `?` other than
// `?fields` is an error.
func bindTemplate(sql string, cols []proto.Column, args []any, allowPlaceholders bool) (string, error) {
	out := make([]byte, 0, len(sql))
	argi := 0
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if c != '?' {
			out = append(out, c)
			continue
		}
		if i+6 <= len(sql) && sql[i+1:i+6] == "fields" {
			if cols == nil {
				return "", errors.New("bind: ?fields used without a row reflection")
			}
			names := fieldNames(cols)
			for j, n := range names {
				if j > 0 {
					out = append(out, ',', ' ')
				}
				out = append(out, escapeIdentifier(n)...)
			}
			i += 6
			continue
		}
		if !allowPlaceholders {
			return "", errors.New("bind: `?` placeholder used without binding any arguments")
		}
		if argi >= len(args) {
			return "", errors.Errorf("bind: not enough arguments for `?` at byte %d", i)
		}
		s, err := bindArg(args[argi])
		if err != nil {
			return "", err
		}
		out = append(out, s...)
		argi++
	}
	if allowPlaceholders && argi != len(args) {
		return "", errors.Errorf("bind: %d arguments bound, %d `?` placeholders present", len(args), argi)
	}
	return string(out), nil
}
