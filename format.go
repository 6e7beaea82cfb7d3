package ch

// OutputFormat names the wire format requested via FORMAT in a SELECT's SQL
// tail. The core only ever decodes the two RowBinary variants itself; any
// other format name is accepted verbatim for the raw/bytes fetch path,
// where the caller takes the bytes as-is and never hands them to the
// RowBinary decoder.
//
// This collapses the two divergent OutputFormat surfaces a reader would
// otherwise have to reconcile (a compact core enum vs. a long list of
// every format ClickHouse understands) into one type: a closed set of two
// variants the decoder understands, plus an escape hatch.
type OutputFormat struct {
	name string
}

var (
	// FormatRowBinary is bare RowBinary: no schema header, no validation
	// against column names possible. Used when the caller opts out of
	// validation entirely.
	FormatRowBinary = OutputFormat{name: "RowBinary"}

	// FormatRowBinaryWithNamesAndTypes prefixes the stream with a schema
	// header (column count, names, type strings) the decoder validates
	// against the row reflection's declared columns. The default for
	// typed Select calls.
	FormatRowBinaryWithNamesAndTypes = OutputFormat{name: "RowBinaryWithNamesAndTypes"}
)

// RawFormat wraps an arbitrary ClickHouse format name for fetch_raw/
// fetch_bytes, where the caller reads the response body directly and the
// RowBinary decoder never runs.
func RawFormat(name string) OutputFormat { return OutputFormat{name: name} }

// String returns the literal name used after FORMAT in the SQL tail.
func (f OutputFormat) String() string { return f.name }

// HasSchemaHeader reports whether this format prefixes its stream with a
// RowBinaryWithNamesAndTypes-style schema header.
func (f OutputFormat) HasSchemaHeader() bool { return f.name == FormatRowBinaryWithNamesAndTypes.name }
