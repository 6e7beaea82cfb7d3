package proto

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// Kind tags the parsed ClickHouse type tree. Recursion is explicit via
// Type.Elem/Items/Key/Value, not via polymorphism or an interface per
// variant: a tagged variant rather than an inheritance hierarchy.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindInt256
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindUInt256
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindFixedString
	KindUUID
	KindIPv4
	KindIPv6
	KindDate
	KindDateTime
	KindDateTime64
	KindDecimal
	KindEnum8
	KindEnum16
	KindArray
	KindTuple
	KindMap
	KindNullable
	KindLowCardinality
	KindNothing
)

var primitiveKinds = map[string]Kind{
	"Int8": KindInt8, "Int16": KindInt16, "Int32": KindInt32, "Int64": KindInt64,
	"Int128": KindInt128, "Int256": KindInt256,
	"UInt8": KindUInt8, "UInt16": KindUInt16, "UInt32": KindUInt32, "UInt64": KindUInt64,
	"UInt128": KindUInt128, "UInt256": KindUInt256,
	"Float32": KindFloat32, "Float64": KindFloat64,
	"Bool": KindBool, "Boolean": KindBool,
	"String": KindString,
	"UUID":   KindUUID,
	"IPv4":   KindIPv4, "IPv6": KindIPv6,
	"Date": KindDate, "Date32": KindDate,
	"Nothing": KindNothing,
}

var decimalAliasPrecision = map[string]int{
	"Decimal32": 9, "Decimal64": 18, "Decimal128": 38, "Decimal256": 76,
}

// EnumValue is a single member of an Enum8/Enum16 declaration.
type EnumValue struct {
	Name  string
	Value int16
}

// Type is a parsed ClickHouse type-string tree, as produced from a
// RowBinaryWithNamesAndTypes schema header or from a static row
// reflection's declared column types (for validation).
type Type struct {
	Kind Kind
	Raw  string

	N int // FixedString(n)

	Precision int // Decimal(p,s) / DateTime64(p)
	Scale     int // Decimal(p,s)
	TZ        string

	Elem  *Type   // Array(T), Nullable(T), LowCardinality(T)
	Items []*Type // Tuple(...)
	Key   *Type   // Map(K,V)
	Value *Type

	Enum []EnumValue // Enum8/Enum16
}

func (t *Type) String() string {
	if t.Raw != "" {
		return t.Raw
	}
	return "<unknown>"
}

// ParseType parses a single ClickHouse type string into a Type tree.
func ParseType(s string) (*Type, error) {
	p := &typeParser{s: s}
	t, err := p.parseType()
	if err != nil {
		return nil, errors.Wrapf(err, "parse type %q", s)
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, errors.Errorf("parse type %q: unexpected trailing input at %d", s, p.pos)
	}
	t.Raw = s
	return t, nil
}

type typeParser struct {
	s   string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return errors.Errorf("expected %q at %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *typeParser) parseIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '(' || c == ')' || c == ',' {
			break
		}
		p.pos++
	}
	name := strings.TrimRight(p.s[start:p.pos], " ")
	if name == "" {
		return "", errors.Errorf("expected identifier at %d", start)
	}
	return name, nil
}

func (p *typeParser) parseNumber() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && (p.s[p.pos] >= '0' && p.s[p.pos] <= '9' || p.s[p.pos] == '-') {
		p.pos++
	}
	if start == p.pos {
		return 0, errors.Errorf("expected number at %d", start)
	}
	return strconv.Atoi(p.s[start:p.pos])
}

// parseQuoted parses a single-quoted string, e.g. 'Europe/Moscow' or
// 'increment', with '' as an escaped quote.
func (p *typeParser) parseQuoted() (string, error) {
	p.skipSpace()
	if p.peek() != '\'' {
		return "", errors.Errorf("expected quoted string at %d", p.pos)
	}
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '\'' {
			if p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'' {
				sb.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return sb.String(), nil
		}
		sb.WriteByte(c)
		p.pos++
	}
	return "", errors.New("unterminated quoted string")
}

func (p *typeParser) parseType() (*Type, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	switch name {
	case "Nullable":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindNullable, Elem: inner}, nil
	case "Array":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindArray, Elem: inner}, nil
	case "LowCardinality":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindLowCardinality, Elem: inner}, nil
	case "Tuple":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		var items []*Type
		for {
			it, err := p.parseType()
			if err != nil {
				return nil, err
			}
			items = append(items, it)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindTuple, Items: items}, nil
	case "Map":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindMap, Key: key, Value: val}, nil
	case "FixedString":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindFixedString, N: n}, nil
	case "Decimal":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		prec, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		scale, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindDecimal, Precision: prec, Scale: scale}, nil
	case "Decimal32", "Decimal64", "Decimal128", "Decimal256":
		return &Type{Kind: KindDecimal, Precision: decimalAliasPrecision[name]}, nil
	case "DateTime":
		if p.peek() != '(' {
			return &Type{Kind: KindDateTime}, nil
		}
		p.pos++
		p.skipSpace()
		if p.peek() == ')' {
			p.pos++
			return &Type{Kind: KindDateTime}, nil
		}
		tz, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindDateTime, TZ: tz}, nil
	case "DateTime64":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		prec, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		var tz string
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			tz, err = p.parseQuoted()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindDateTime64, Precision: prec, TZ: tz}, nil
	case "Enum8", "Enum16":
		kindBare := KindEnum8
		if name == "Enum16" {
			kindBare = KindEnum16
		}
		p.skipSpace()
		if p.peek() != '(' {
			// Bare Enum8/Enum16 with no member list, e.g. surfaced by
			// some system tables or a caller that only cares about width.
			return &Type{Kind: kindBare}, nil
		}
		if err := p.expect('('); err != nil {
			return nil, err
		}
		var entries []EnumValue
		for {
			nm, err := p.parseQuoted()
			if err != nil {
				return nil, err
			}
			if err := p.expect('='); err != nil {
				return nil, err
			}
			v, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			entries = append(entries, EnumValue{Name: nm, Value: int16(v)})
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		kind := KindEnum8
		if name == "Enum16" {
			kind = KindEnum16
		}
		return &Type{Kind: kind, Enum: entries}, nil
	default:
		kind, ok := primitiveKinds[name]
		if !ok {
			return nil, errors.Errorf("unknown type %q", name)
		}
		return &Type{Kind: kind}, nil
	}
}

// Column is a single (name, declared-type) pair of a Schema.
type Column struct {
	Name string
	Type *Type
}

// Schema is an ordered list of Columns, as extracted from a
// RowBinaryWithNamesAndTypes response header.
type Schema struct {
	Columns []Column
}

func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// maxSchemaColumns bounds the LEB128 column count read from a response
// header, distinct from Decoder.MaxSize (which bounds name/type string
// lengths); a header claiming billions of columns is corrupt input, not a
// slow but valid response.
const maxSchemaColumns = 1 << 20

// DecodeSchemaHeader decodes the RowBinaryWithNamesAndTypes header: one
// LEB128 column count, then that many LEB128-prefixed names, then that many
// LEB128-prefixed type strings.
func DecodeSchemaHeader(d *Decoder) (*Schema, error) {
	count, err := d.Uvarint()
	if err != nil {
		return nil, err
	}
	if count > maxSchemaColumns {
		return nil, ErrSizeTooLarge
	}
	names := make([]string, count)
	for i := range names {
		s, err := d.Str()
		if err != nil {
			return nil, err
		}
		names[i] = s
	}
	cols := make([]Column, count)
	for i := range cols {
		raw, err := d.Str()
		if err != nil {
			return nil, err
		}
		t, err := ParseType(raw)
		if err != nil {
			return nil, err
		}
		cols[i] = Column{Name: names[i], Type: t}
	}
	return &Schema{Columns: cols}, nil
}
