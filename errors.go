package ch

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/kokizzu/ch/proto"
)

// Sentinel errors returned by cursors and the insert writer. Callers should
// use errors.Is/errors.As (github.com/go-faster/errors re-exports the
// standard library's matching semantics) rather than comparing error
// strings.
var (
	// ErrNotEnoughData means the stream ended with an incomplete row, or a
	// decoder ran out of input mid-value. It never indicates that bytes
	// were logically consumed from the underlying buffer.
	ErrNotEnoughData = errors.New("ch: not enough data")

	// ErrClosed is returned by operations started on a Client (or a chpool
	// Pool) that has been closed, and by InsertWriter.Write after Abort. A
	// cursor read after Close reports the closed body's read error instead.
	ErrClosed = errors.New("ch: closed")

	// ErrInvalidUTF8 reports a String field whose bytes are not valid UTF-8.
	// The decoders in this module do not check UTF-8 validity and never
	// return it.
	ErrInvalidUTF8 = errors.New("ch: invalid utf8")

	// ErrTooLargeSize is returned when a LEB128-encoded length exceeds the
	// decoder's ceiling (proto.Decoder.MaxSize, proto.DefaultMaxSize when
	// unset). It is the same value as proto.ErrSizeTooLarge.
	ErrTooLargeSize = proto.ErrSizeTooLarge
)

// NetworkErr wraps a transport-level failure observed before or during the
// response body. Retrying is the caller's choice; the core never retries.
type NetworkErr struct {
	Err error
}

func (e *NetworkErr) Error() string { return fmt.Sprintf("ch: network: %s", e.Err) }
func (e *NetworkErr) Unwrap() error { return e.Err }

// BadResponseErr is returned when the server answers with a non-2xx status,
// or reports an in-band X-ClickHouse-Exception-Code after a 200 status line.
type BadResponseErr struct {
	Code    string
	Message string
}

func (e *BadResponseErr) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("ch: bad response (code %s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("ch: bad response: %s", e.Message)
}

// TypeMismatchErr is returned when schema validation rejects a row or a
// column type, either because the arity differs or because a declared
// ClickHouse type is incompatible with the row reflection's expectation.
type TypeMismatchErr struct {
	Detail string
}

func (e *TypeMismatchErr) Error() string { return fmt.Sprintf("ch: type mismatch: %s", e.Detail) }

// DecompressionErr is returned when an LZ4 frame fails its checksum or the
// server-declared uncompressed size cannot be satisfied.
type DecompressionErr struct {
	Detail string
}

func (e *DecompressionErr) Error() string { return fmt.Sprintf("ch: decompression: %s", e.Detail) }

// CustomErr is an escape hatch for errors raised by user-supplied
// RowReflection implementations.
type CustomErr struct {
	Message string
	Err     error
}

func (e *CustomErr) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ch: custom: %s: %s", e.Message, e.Err)
	}
	return fmt.Sprintf("ch: custom: %s", e.Message)
}
func (e *CustomErr) Unwrap() error { return e.Err }

// IsBadResponse reports whether err is, or wraps, a *BadResponseErr.
func IsBadResponse(err error) bool {
	var e *BadResponseErr
	return errors.As(err, &e)
}
