package ch

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/kokizzu/ch/compress"
	"github.com/kokizzu/ch/proto"
)

const rawReadBufSize = 64 << 10

// RawCursor yields opaque byte chunks as they arrive off the transport,
// tracking on-the-wire bytes received. It is the innermost layer of the
// cursor pipeline, with BytesCursor and RowCursor layered on top.
type RawCursor struct {
	resp   *response
	buf    []byte
	cancel context.CancelFunc
	lg     *zap.Logger
}

func newRawCursor(resp *response, cancel context.CancelFunc, lg *zap.Logger) *RawCursor {
	return &RawCursor{resp: resp, buf: make([]byte, rawReadBufSize), cancel: cancel, lg: lg}
}

// Next returns the next chunk of raw bytes, or ok=false at a clean end of
// stream. The returned slice is only valid until the next call to Next.
func (c *RawCursor) Next(ctx context.Context) (chunk []byte, ok bool, err error) {
	chunk, ok, err = c.resp.nextChunk(c.buf)
	if err != nil {
		if ce := c.lg.Check(zap.DebugLevel, "raw cursor failed"); ce != nil {
			ce.Write(zap.Error(err))
		}
	}
	return chunk, ok, err
}

// ReceivedBytes is the number of on-the-wire bytes read so far. Monotonic
// for the cursor's lifetime.
func (c *RawCursor) ReceivedBytes() int64 { return c.resp.receivedBytes }

// Summary returns the X-ClickHouse-Summary header, if the server sent one.
// Only meaningful once the cursor is Drained.
func (c *RawCursor) Summary() (Summary, bool, error) { return c.resp.summary() }

// Close cancels the underlying request and releases the response body.
// A cursor that is dropped without Close keeps its request open until the
// context passed to Select or FetchRaw is canceled.
func (c *RawCursor) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.resp.close()
}

// BytesCursor wraps RawCursor with optional decompression and yields
// plaintext chunks, tracking post-decompression bytes.
type BytesCursor struct {
	raw         *RawCursor
	compression CompressionMode

	chunks  proto.BufferedChunks
	lz4     *compress.Decoder
	gz      io.Reader // set for Gzip/Zlib: wraps raw.resp directly
	gzBuf   []byte
	eof     bool
	decoded int64
}

func newBytesCursor(raw *RawCursor, mode CompressionMode) (*BytesCursor, error) {
	bc := &BytesCursor{raw: raw, compression: mode}
	switch mode {
	case CompressionLZ4:
		bc.lz4 = compress.NewDecoder(&bc.chunks)
	case CompressionGzip:
		gz, err := gzip.NewReader(raw.resp)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		bc.gz = gz
		bc.gzBuf = make([]byte, rawReadBufSize)
	case CompressionZlib:
		zr, err := zlib.NewReader(raw.resp)
		if err != nil {
			return nil, errors.Wrap(err, "open zlib stream")
		}
		bc.gz = zr
		bc.gzBuf = make([]byte, rawReadBufSize)
	case CompressionBrotli:
		return nil, errors.New("bytes cursor: brotli decompression is not wired in this module (see DESIGN.md)")
	}
	return bc, nil
}

// Next returns the next chunk of decompressed bytes, or ok=false at a
// clean end of stream.
func (c *BytesCursor) Next(ctx context.Context) ([]byte, bool, error) {
	if c.eof {
		return nil, false, nil
	}

	switch c.compression {
	case CompressionNone:
		chunk, ok, err := c.raw.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			c.eof = true
			return nil, false, nil
		}
		c.decoded += int64(len(chunk))
		return chunk, true, nil

	case CompressionGzip, CompressionZlib:
		n, err := c.gz.Read(c.gzBuf)
		if n > 0 {
			c.decoded += int64(n)
			if err != nil && err != io.EOF {
				return c.gzBuf[:n], true, nil
			}
			return c.gzBuf[:n], true, nil
		}
		if err == io.EOF {
			c.eof = true
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "decompress")

	case CompressionLZ4:
		for {
			out, err := c.lz4.Next()
			if err == nil {
				c.decoded += int64(len(out))
				return out, true, nil
			}
			if !errors.Is(err, proto.ErrNotEnoughData) {
				return nil, false, &DecompressionErr{Detail: err.Error()}
			}
			chunk, ok, rerr := c.raw.Next(ctx)
			if rerr != nil {
				return nil, false, rerr
			}
			if !ok {
				if c.chunks.Remaining() > 0 {
					return nil, false, ErrNotEnoughData
				}
				c.eof = true
				return nil, false, nil
			}
			buffered := append([]byte(nil), chunk...)
			c.chunks.Push(buffered)
		}

	default:
		return nil, false, errors.New("bytes cursor: unsupported compression mode")
	}
}

// DecodedBytes is the number of post-decompression bytes produced so far.
func (c *BytesCursor) DecodedBytes() int64 { return c.decoded }

func (c *BytesCursor) Close() error { return c.raw.Close() }

// RowCursor wraps BytesCursor with a RowBinary decoder seeded from the
// schema header (when Format has one), yielding typed rows via a
// RowReflection[T]. It is cancel-safe at the row boundary: a row is only
// ever handed to the caller once fully decoded, and the undecoded tail
// stays in chunks/dec across suspensions exactly as the decode contract
// requires.
type RowCursor[T any] struct {
	bytesCur *BytesCursor
	refl     RowReflection[T]
	format   OutputFormat
	validate ValidationMode

	chunks     proto.BufferedChunks
	dec        *proto.Decoder
	schema     *proto.Schema
	validated  int
	rowsSoFar  int
	headerDone bool
	eof        bool
}

// NewRowCursor constructs a RowCursor over an already-established
// BytesCursor. Exported so callers building a custom transport/response
// pipeline (tests, chpool) can assemble one directly.
func NewRowCursor[T any](bytesCur *BytesCursor, refl RowReflection[T], format OutputFormat, validate ValidationMode) *RowCursor[T] {
	rc := &RowCursor[T]{bytesCur: bytesCur, refl: refl, format: format, validate: validate}
	rc.dec = proto.NewDecoder(&rc.chunks)
	return rc
}

// Next decodes and returns the next row, or ok=false at a clean end of
// stream. It never yields a partially decoded row: on NotEnoughData it
// pulls another chunk from the BytesCursor and retries from the same
// (Reset, not Commit) decoder position.
func (c *RowCursor[T]) Next(ctx context.Context) (row T, ok bool, err error) {
	if c.eof {
		return row, false, nil
	}

	if c.format.HasSchemaHeader() && !c.headerDone {
		if err := c.decodeHeader(ctx); err != nil {
			return row, false, err
		}
	}

	for {
		c.dec.Reset(&c.chunks)
		decErr := c.refl.Decode(c.dec, &row)
		if decErr == nil {
			c.dec.Commit()
			c.rowsSoFar++
			if err := c.maybeValidate(); err != nil {
				return row, false, err
			}
			return row, true, nil
		}
		if !errors.Is(decErr, proto.ErrNotEnoughData) && !errors.Is(decErr, ErrNotEnoughData) {
			return row, false, decErr
		}

		chunk, more, rerr := c.bytesCur.Next(ctx)
		if rerr != nil {
			return row, false, rerr
		}
		if !more {
			if c.chunks.Remaining() > 0 {
				return row, false, ErrNotEnoughData
			}
			c.eof = true
			return row, false, nil
		}
		c.chunks.Push(append([]byte(nil), chunk...))
	}
}

func (c *RowCursor[T]) decodeHeader(ctx context.Context) error {
	for {
		c.dec.Reset(&c.chunks)
		schema, err := proto.DecodeSchemaHeader(c.dec)
		if err == nil {
			c.dec.Commit()
			c.schema = schema
			c.headerDone = true
			return c.validateSchema()
		}
		if !errors.Is(err, proto.ErrNotEnoughData) {
			return err
		}
		chunk, more, rerr := c.bytesCur.Next(ctx)
		if rerr != nil {
			return rerr
		}
		if !more {
			return ErrNotEnoughData
		}
		c.chunks.Push(append([]byte(nil), chunk...))
	}
}

func (c *RowCursor[T]) validateSchema() error {
	if c.refl == nil || c.schema == nil {
		return nil
	}
	want := c.refl.Columns()
	if len(want) != len(c.schema.Columns) {
		return &TypeMismatchErr{Detail: "column count mismatch"}
	}
	for i, col := range want {
		got := c.schema.Columns[i]
		if col.Type.Conflicts(got.Type) {
			return &TypeMismatchErr{Detail: "column " + got.Name + ": declared type incompatible with server schema"}
		}
	}
	return nil
}

// maybeValidate enforces ValidationMode: FirstN checks at most N rows
// (structurally, via re-deriving the column count from the reflection, the
// schema having already been checked once at header time), Each checks
// every row. Since per-row structural shape for a fixed T never drifts
// once the header has validated, this only re-runs the cheap header check.
func (c *RowCursor[T]) maybeValidate() error {
	if c.validate.each {
		return c.validateSchema()
	}
	if c.validated < c.validate.firstN {
		c.validated++
		return c.validateSchema()
	}
	return nil
}

// ReceivedBytes/DecodedBytes proxy the underlying layers' byte counters.
func (c *RowCursor[T]) ReceivedBytes() int64 { return c.bytesCur.raw.ReceivedBytes() }
func (c *RowCursor[T]) DecodedBytes() int64  { return c.bytesCur.DecodedBytes() }

func (c *RowCursor[T]) Summary() (Summary, bool, error) { return c.bytesCur.raw.Summary() }

func (c *RowCursor[T]) Close() error { return c.bytesCur.Close() }

// ValidationMode selects how often a RowCursor checks the server's declared
// schema against the caller's row reflection.
type ValidationMode struct {
	firstN int
	each   bool
}

// ValidateFirstN checks only the first n rows (n >= 1).
func ValidateFirstN(n int) ValidationMode {
	if n < 1 {
		n = 1
	}
	return ValidationMode{firstN: n}
}

// ValidateEach checks every row.
func ValidateEach() ValidationMode { return ValidationMode{each: true} }

// DefaultValidationMode is FirstN(1): validate the first row and trust the
// rest.
var DefaultValidationMode = ValidateFirstN(1)
