package ch

import "github.com/kokizzu/ch/proto"

// RowReflection stands in for a derive-macro: a row type T supplies its own
// column names/types and a RowBinary encode/decode pair, and the codec
// stays generic over this capability set instead of reflecting on T at
// runtime.
//
// A generated or hand-written implementation typically looks like:
//
//	type userRow struct {
//		ID   uint32
//		Name string
//	}
//
//	type userRowReflection struct{}
//
//	func (userRowReflection) Columns() []proto.Column {
//		return []proto.Column{
//			{Name: "id", Type: &proto.Type{Kind: proto.KindUInt32}},
//			{Name: "name", Type: &proto.Type{Kind: proto.KindString}},
//		}
//	}
//
//	func (userRowReflection) Encode(buf *proto.Buffer, row *userRow) {
//		buf.PutUInt32(row.ID)
//		buf.PutStr(row.Name)
//	}
//
//	func (userRowReflection) Decode(dec *proto.Decoder, row *userRow) error {
//		id, err := dec.UInt32()
//		if err != nil {
//			return err
//		}
//		name, err := dec.Str()
//		if err != nil {
//			return err
//		}
//		row.ID, row.Name = id, name
//		return nil
//	}
type RowReflection[T any] interface {
	// Columns declares this row type's column names and ClickHouse types,
	// in wire order. Used to build the query's column list for INSERT and
	// to validate a SELECT response's schema header.
	Columns() []proto.Column

	// Encode appends row's RowBinary encoding to buf.
	Encode(buf *proto.Buffer, row *T)

	// Decode reads one row's worth of RowBinary-encoded fields from dec
	// into row. Per the decode contract, a NotEnoughData return must leave
	// dec's speculative position wherever Decoder already stopped; the
	// caller resets and retries, it never partially commits.
	Decode(dec *proto.Decoder, row *T) error
}

// fieldNames is a convenience used by the query builder's ?fields
// substitution and by the Insert Writer's column list.
func fieldNames(cols []proto.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
