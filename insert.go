package ch

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/kokizzu/ch/compress"
	"github.com/kokizzu/ch/proto"
)

// insertWatermark is the default buffer size an InsertWriter accumulates
// before flushing to the transport.
const insertWatermark = 128 << 10

// InsertOptions configures one Insert/Inserter call: per-call overrides of
// the Client's defaults, mirroring Query's fields for the read side. A
// zero Compression (CompressionNone) means the Client's compression
// applies.
type InsertOptions struct {
	Database string
	QueryID  string
	Settings map[string]string
	Headers  map[string]string

	Compression CompressionMode
}

// InsertWriter streams a single POST body of RowBinary-encoded rows while
// the caller produces them. The caller's goroutine encodes rows and
// flushes them into an io.Pipe; an errgroup goroutine POSTs that pipe's
// read end, so backpressure comes for free from io.Pipe's synchronous
// Write/Read rendezvous.
type InsertWriter[T any] struct {
	refl        RowReflection[T]
	compression CompressionMode

	pw  *io.PipeWriter
	buf proto.Buffer

	total int64 // cumulative encoded bytes for this writer's lifetime, independent of flush

	g       *errgroup.Group
	gctx    context.Context
	cancel  context.CancelFunc
	httpRes chan httpResult

	ended  atomic.Bool
	closed atomic.Bool
	mu     sync.Mutex
	werr   error

	client *Client
}

type httpResult struct {
	resp *http.Response
	err  error
}

// Insert opens a new InsertWriter against table, encoding rows of type T
// per refl. The request is issued immediately; its body is this writer's
// pipe, so the server begins receiving bytes as soon as Write is called.
func Insert[T any](ctx context.Context, c *Client, table string, refl RowReflection[T], opt InsertOptions) (*InsertWriter[T], error) {
	if c.IsClosed() {
		return nil, ErrClosed
	}
	compression := opt.Compression
	if compression == CompressionNone && c.cfg.Compression != CompressionNone {
		compression = c.cfg.Compression
	}

	spec, err := c.qb.buildInsert(insertOptions{
		Database:     opt.Database,
		QueryID:      opt.QueryID,
		Settings:     opt.Settings,
		Table:        table,
		Columns:      refl.Columns(),
		Compression:  compression,
		ExtraHeaders: opt.Headers,
	})
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	reqCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(reqCtx)

	w := &InsertWriter[T]{
		refl:        refl,
		compression: compression,
		pw:          pw,
		g:           g,
		gctx:        gctx,
		cancel:      cancel,
		httpRes:     make(chan httpResult, 1),
		client:      c,
	}

	g.Go(func() error {
		req, err := http.NewRequestWithContext(gctx, spec.Method, spec.URL, pr)
		if err != nil {
			w.httpRes <- httpResult{err: errors.Wrap(err, "build insert request")}
			return err
		}
		req.Header = spec.Header
		resp, err := c.http.Do(req)
		w.httpRes <- httpResult{resp: resp, err: err}
		if err != nil {
			return &NetworkErr{Err: err}
		}
		return nil
	})

	return w, nil
}

// Write encodes row and appends it to the internal buffer, flushing to the
// transport once the buffer crosses the watermark. The row is encoded into
// the buffer before any flush; if that flush fails, the buffer (including
// this row) is discarded and the error is recorded for End to return.
func (w *InsertWriter[T]) Write(row *T) error {
	if w.closed.Load() {
		return ErrClosed
	}
	before := len(w.buf.Buf)
	w.refl.Encode(&w.buf, row)
	w.total += int64(len(w.buf.Buf) - before)
	if len(w.buf.Buf) < insertWatermark {
		return nil
	}
	return w.flush()
}

// BytesWritten returns the cumulative number of encoded bytes Write has
// appended since this writer was opened. Unlike the internal buffer's
// length, it survives every flush, so callers batching across multiple
// flushes (Inserter) can track a whole batch's size.
func (w *InsertWriter[T]) BytesWritten() int64 { return w.total }

func (w *InsertWriter[T]) flush() error {
	if len(w.buf.Buf) == 0 {
		return nil
	}
	payload := w.buf.Buf
	if w.compression == CompressionLZ4 {
		var framed proto.Buffer
		if err := compress.EncodeFrame(&framed, payload); err != nil {
			return w.fail(errors.Wrap(err, "lz4 encode insert buffer"))
		}
		payload = framed.Buf
	}
	_, err := w.pw.Write(payload)
	w.buf.Reset()
	if err != nil {
		return w.fail(errors.Wrap(err, "flush insert buffer"))
	}
	return nil
}

func (w *InsertWriter[T]) fail(err error) error {
	w.mu.Lock()
	if w.werr == nil {
		w.werr = err
	}
	w.mu.Unlock()
	return err
}

// End flushes any buffered rows, closes the request body, and awaits the
// server's response. A writer that is dropped without End or Abort keeps
// its request open until the context passed to Insert is canceled; its
// body is never completed, so nothing is committed.
func (w *InsertWriter[T]) End(ctx context.Context) (QueryMetrics, error) {
	if w.ended.Swap(true) {
		return QueryMetrics{}, errors.New("ch: insert writer already ended")
	}
	defer w.cancel()

	flushErr := w.flush()
	closeErr := w.pw.Close()

	w.mu.Lock()
	priorErr := w.werr
	w.mu.Unlock()
	if priorErr != nil {
		return QueryMetrics{}, priorErr
	}

	var res httpResult
	select {
	case res = <-w.httpRes:
	case <-ctx.Done():
		return QueryMetrics{}, ctx.Err()
	}
	_ = w.g.Wait() // propagate goroutine exit; the real error already travelled via httpRes

	if flushErr != nil {
		return QueryMetrics{}, flushErr
	}
	if closeErr != nil {
		return QueryMetrics{}, errors.Wrap(closeErr, "close insert body")
	}
	if res.err != nil {
		return QueryMetrics{}, &NetworkErr{Err: res.err}
	}

	resp := newResponse(res.resp)
	defer resp.close()
	if resp.state == stateFailed {
		return QueryMetrics{}, resp.err
	}
	// Drain the (normally empty) body so the connection can be reused.
	buf := make([]byte, 4096)
	for {
		_, more, err := resp.nextChunk(buf)
		if err != nil {
			return QueryMetrics{}, err
		}
		if !more {
			break
		}
	}

	m := QueryMetrics{ReceivedBytes: resp.receivedBytes}
	if s, ok, err := resp.summary(); err == nil && ok {
		m.Summary, m.HasSummary = s, true
	}
	return m, nil
}

// Abort cancels the underlying request without committing anything, the
// "dropped writer" path made explicit for callers that know upfront they
// won't call End.
func (w *InsertWriter[T]) Abort() {
	if w.closed.Swap(true) {
		return
	}
	w.cancel()
	w.pw.CloseWithError(ErrClosed)
}
