// Package compress implements ClickHouse's LZ4-framed wire compression: a
// 16-byte CityHash128 block checksum, a 9-byte method+size header, and an
// LZ4 raw block payload.
package compress

import (
	"fmt"

	"github.com/go-faster/city"
)

// CorruptedDataErr means the block checksum read off the wire didn't match
// the one computed over the received header+payload.
type CorruptedDataErr struct {
	Actual    city.U128
	Reference city.U128
	FrameSize int
	DataSize  int
}

func (e *CorruptedDataErr) Error() string {
	return fmt.Sprintf("compress: corrupted data: %s (actual), %s (reference), frame size: %d, data size: %d",
		FormatU128(e.Actual), FormatU128(e.Reference), e.FrameSize, e.DataSize,
	)
}

// DecompressionErr covers any other LZ4 framing problem: an unsupported
// method byte, a compressed size that can't fit its own header, or an
// LZ4 block that doesn't decompress to the declared uncompressed size.
type DecompressionErr struct {
	Detail string
}

func (e *DecompressionErr) Error() string { return fmt.Sprintf("compress: %s", e.Detail) }

// FormatU128 renders a city.U128 as the 32-character hex string ClickHouse
// itself uses in its own corruption diagnostics.
func FormatU128(v city.U128) string {
	return fmt.Sprintf("%016x%016x", v.High, v.Low)
}
