package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/go-faster/city"
	"github.com/pierrec/lz4/v4"

	"github.com/kokizzu/ch/proto"
)

// MethodLZ4 is the only block compression method byte ClickHouse's HTTP
// interface emits for this client's negotiated "lz4" compression mode.
const MethodLZ4 byte = 0x82

const (
	checksumSize = 16
	headerSize   = 9 // method (1) + compressed size (4) + uncompressed size (4)
)

// Decoder consumes a stream of ClickHouse LZ4 frames arriving as
// BufferedChunks and yields plaintext chunks, one decoded frame at a time.
//
// Frame = 16-byte CityHash128 checksum ∥ 1-byte method (0x82) ∥ 4-byte LE
// compressed size (including the 9-byte header) ∥ 4-byte LE uncompressed
// size ∥ (compressed size − 9) bytes of LZ4-raw-block payload.
type Decoder struct {
	in           *proto.BufferedChunks
	peekScratch  []byte
	frameScratch []byte
}

// NewDecoder returns a Decoder reading frames from in.
func NewDecoder(in *proto.BufferedChunks) *Decoder {
	return &Decoder{in: in}
}

// Next decodes the next full frame. If the frame isn't fully buffered yet
// it returns proto.ErrNotEnoughData without consuming any input, the same
// contract the RowBinary decoder honors, so BytesCursor can retry after
// pulling another chunk off the transport.
func (d *Decoder) Next() ([]byte, error) {
	const peekLen = checksumSize + headerSize
	head, ok := d.in.At(0, peekLen, &d.peekScratch)
	if !ok {
		return nil, proto.ErrNotEnoughData
	}

	var checksum [checksumSize]byte
	copy(checksum[:], head[:checksumSize])
	method := head[checksumSize]
	if method != MethodLZ4 {
		return nil, &DecompressionErr{Detail: fmt.Sprintf("unsupported block method 0x%02x", method)}
	}
	compressedSize := binary.LittleEndian.Uint32(head[checksumSize+1 : checksumSize+5])
	uncompressedSize := binary.LittleEndian.Uint32(head[checksumSize+5 : checksumSize+9])
	if compressedSize < headerSize {
		return nil, &DecompressionErr{Detail: "compressed size smaller than its own header"}
	}

	total := checksumSize + int(compressedSize)
	frame, ok := d.in.At(0, total, &d.frameScratch)
	if !ok {
		return nil, proto.ErrNotEnoughData
	}

	hashed := frame[checksumSize:] // header + payload, checksum excluded
	sum := city.CH128(hashed)
	actual := city.U128{Low: binary.LittleEndian.Uint64(checksum[0:8]), High: binary.LittleEndian.Uint64(checksum[8:16])}
	if sum != actual {
		return nil, &CorruptedDataErr{
			Actual:    actual,
			Reference: sum,
			FrameSize: int(compressedSize),
			DataSize:  int(uncompressedSize),
		}
	}

	payload := frame[checksumSize+headerSize:]
	out := make([]byte, uncompressedSize)
	if uncompressedSize > 0 {
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, &DecompressionErr{Detail: err.Error()}
		}
		if n != int(uncompressedSize) {
			return nil, &DecompressionErr{Detail: "short decompression"}
		}
	}

	d.in.Advance(total)
	return out, nil
}

// EncodeFrame appends one ClickHouse LZ4 frame encoding src to buf.
func EncodeFrame(buf *proto.Buffer, src []byte) error {
	bound := lz4.CompressBlockBound(len(src))
	if bound <= 0 {
		bound = 1
	}
	compressed := make([]byte, bound)
	var n int
	if len(src) > 0 {
		var table [1 << 16]int
		var err error
		n, err = lz4.CompressBlock(src, compressed, table[:])
		if err != nil {
			return &DecompressionErr{Detail: err.Error()}
		}
	}
	compressed = compressed[:n]

	header := make([]byte, headerSize, headerSize+len(compressed))
	header[0] = MethodLZ4
	binary.LittleEndian.PutUint32(header[1:5], uint32(headerSize+len(compressed)))
	binary.LittleEndian.PutUint32(header[5:9], uint32(len(src)))
	hashed := append(header, compressed...)

	sum := city.CH128(hashed)
	var checksum [checksumSize]byte
	binary.LittleEndian.PutUint64(checksum[0:8], sum.Low)
	binary.LittleEndian.PutUint64(checksum[8:16], sum.High)

	buf.PutRaw(checksum[:])
	buf.PutRaw(hashed)
	return nil
}
