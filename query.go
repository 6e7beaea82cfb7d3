package ch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/kokizzu/ch/proto"
)

// Query describes one SELECT: the SQL template, bound arguments, and
// per-call overrides of the Client's defaults. A zero Compression
// (CompressionNone) means the Client's compression applies.
type Query struct {
	Body              string
	Args              []any
	AllowPlaceholders bool

	Database string
	QueryID  string
	Settings map[string]string
	Headers  map[string]string

	Compression    CompressionMode
	ValidationMode ValidationMode
	Logger         *zap.Logger
}

func (c *Client) resolveCompression(override CompressionMode, isSet bool) CompressionMode {
	if isSet {
		return override
	}
	return c.cfg.Compression
}

// Select runs q against the server and returns a RowCursor decoding rows
// into refl's row type T, requesting RowBinaryWithNamesAndTypes so the
// cursor can validate the server's schema against refl.Columns().
func Select[T any](ctx context.Context, c *Client, q Query, refl RowReflection[T]) (*RowCursor[T], error) {
	return selectWithFormat(ctx, c, q, refl, FormatRowBinaryWithNamesAndTypes)
}

// SelectUnvalidated is Select without the schema header: bare RowBinary,
// no column-name/type cross-check. Use when the caller trusts the query's
// shape (e.g. it was just written by the same process) and wants to save
// the header's handful of bytes.
func SelectUnvalidated[T any](ctx context.Context, c *Client, q Query, refl RowReflection[T]) (*RowCursor[T], error) {
	return selectWithFormat(ctx, c, q, refl, FormatRowBinary)
}

func selectWithFormat[T any](ctx context.Context, c *Client, q Query, refl RowReflection[T], format OutputFormat) (*RowCursor[T], error) {
	if c.IsClosed() {
		return nil, ErrClosed
	}
	lg := c.lg
	if q.Logger != nil {
		lg = q.Logger
	}

	var cols []proto.Column
	if refl != nil {
		cols = refl.Columns()
	}
	compression := q.Compression
	if compression == CompressionNone && c.cfg.Compression != CompressionNone {
		compression = c.cfg.Compression
	}

	spec, err := c.qb.buildSelect(q.Body, selectOptions{
		Database:          q.Database,
		QueryID:           q.QueryID,
		Settings:          q.Settings,
		Columns:           cols,
		Format:            format,
		AllowPlaceholders: q.AllowPlaceholders,
		Args:              q.Args,
		Compression:       compression,
		ExtraHeaders:      q.Headers,
	})
	if err != nil {
		return nil, err
	}

	if ce := lg.Check(zap.DebugLevel, "select"); ce != nil {
		ce.Write(zap.String("query", q.Body), zap.String("query_id", spec.QueryID))
	}

	reqCtx, cancel := context.WithCancel(ctx)
	httpResp, err := c.issue(reqCtx, spec)
	if err != nil {
		cancel()
		return nil, err
	}

	resp := newResponse(httpResp)
	if resp.state == stateFailed {
		cancel()
		resp.close()
		return nil, resp.err
	}

	raw := newRawCursor(resp, cancel, lg)
	bytesCur, err := newBytesCursor(raw, compression)
	if err != nil {
		raw.Close()
		return nil, err
	}

	validate := q.ValidationMode
	if validate == (ValidationMode{}) {
		validate = c.cfg.ValidationMode
	}
	return NewRowCursor(bytesCur, refl, format, validate), nil
}

// FetchRaw issues sql with an explicit, opaque format name and returns a
// RawCursor over the unmodified response bytes: no RowBinary decoding, no
// decompression layering beyond what the server itself was asked to send.
// An escape hatch for formats the typed path doesn't model (CSV,
// JSONEachRow, Pretty, ...).
func (c *Client) FetchRaw(ctx context.Context, sql string, format string) (*RawCursor, error) {
	if c.IsClosed() {
		return nil, ErrClosed
	}
	spec, err := c.qb.buildSelect(sql, selectOptions{Format: RawFormat(format)})
	if err != nil {
		return nil, err
	}
	reqCtx, cancel := context.WithCancel(ctx)
	httpResp, err := c.issue(reqCtx, spec)
	if err != nil {
		cancel()
		return nil, err
	}
	resp := newResponse(httpResp)
	if resp.state == stateFailed {
		cancel()
		resp.close()
		return nil, resp.err
	}
	return newRawCursor(resp, cancel, c.lg), nil
}

// issue turns a requestSpec into an *http.Response, classifying any
// transport-level failure (DNS, dial, TLS, context deadline before headers)
// as *NetworkErr.
func (c *Client) issue(ctx context.Context, spec requestSpec) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, strings.NewReader(spec.Body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header = spec.Header
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkErr{Err: err}
	}
	if ce := c.lg.Check(zap.DebugLevel, "issued request"); ce != nil {
		ce.Write(zap.String("query_id", spec.QueryID), zap.Duration("elapsed", time.Since(started)))
	}
	return resp, nil
}
