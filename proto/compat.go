package proto

// Conflicts reports whether t and other are incompatible for the purposes
// of RowBinary schema validation: the decoder would read a different number
// of bytes, or structurally different content, for the two. It is
// deliberately looser than strict type-string equality so that harmless
// differences (a DateTime's timezone, an Enum's spelled-out member list,
// Decimal256 vs. Decimal(76, 38) naming the same on-wire width) don't
// trip a false TypeMismatch.
//
// A zero-value Type (no Kind) is treated as "unknown" and never conflicts;
// this lets callers compare a partially-inferred column against a declared
// one without special-casing the blank case everywhere.
func (t *Type) Conflicts(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	if t.Kind == KindInvalid || other.Kind == KindInvalid {
		return false
	}
	if t.Kind != other.Kind {
		// Enum8/16 is wire-compatible with its underlying signed integer.
		if isEnumIntPair(t.Kind, other.Kind) {
			return false
		}
		return true
	}
	switch t.Kind {
	case KindFixedString:
		return t.N != other.N
	case KindDecimal:
		return decimalWidth(t.Precision) != decimalWidth(other.Precision)
	case KindArray, KindNullable, KindLowCardinality:
		return t.Elem.Conflicts(other.Elem)
	case KindTuple:
		if len(t.Items) != len(other.Items) {
			return true
		}
		for i := range t.Items {
			if t.Items[i].Conflicts(other.Items[i]) {
				return true
			}
		}
		return false
	case KindMap:
		return t.Key.Conflicts(other.Key) || t.Value.Conflicts(other.Value)
	default:
		// Primitive kinds with no parameters (Int32, DateTime regardless
		// of timezone, UUID, IPv4/6, Date, Bool, ...) are compatible by
		// Kind alone.
		return false
	}
}

func isEnumIntPair(a, b Kind) bool {
	enumInt := func(k Kind) int {
		switch k {
		case KindEnum8:
			return 8
		case KindEnum16:
			return 16
		case KindInt8:
			return 8
		case KindInt16:
			return 16
		default:
			return 0
		}
	}
	wa, wb := enumInt(a), enumInt(b)
	aIsEnum := a == KindEnum8 || a == KindEnum16
	bIsEnum := b == KindEnum8 || b == KindEnum16
	if aIsEnum == bIsEnum {
		return false // both enums or neither: handled by the equal-Kind path
	}
	return wa != 0 && wa == wb
}
