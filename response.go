package ch

import (
	"io"
	"net/http"
)

// responseState tags where a response currently sits: Pending until
// headers arrive, Streaming while the body is being read, Drained at a
// clean EOF, Failed otherwise. Transitions are total: every event from
// every state lands in exactly one of these four.
type responseState int

const (
	statePending responseState = iota
	stateStreaming
	stateDrained
	stateFailed
)

func (s responseState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateStreaming:
		return "streaming"
	case stateDrained:
		return "drained"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// response wraps one *http.Response and tracks its Pending/Streaming/
// Drained/Failed lifecycle, including the in-band failure ClickHouse
// reports after an already-200 status line.
type response struct {
	http *http.Response

	state         responseState
	err           error
	receivedBytes int64
}

// newResponse classifies an *http.Response's initial transition: 2xx goes
// to Streaming, anything else to Failed with the body buffered into the
// error (matching the pipeline table's "headers received, non-2xx" row).
func newResponse(httpResp *http.Response) *response {
	r := &response{http: httpResp}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 64<<10))
		httpResp.Body.Close()
		r.state = stateFailed
		r.err = &BadResponseErr{Code: httpResp.Status, Message: string(body)}
		return r
	}
	r.state = stateStreaming
	return r
}

// transportErr reports a failure that occurred before any response was
// obtained at all (DNS, dial, TLS, context cancellation, ...).
func transportErr(err error) *response {
	return &response{state: stateFailed, err: &NetworkErr{Err: err}}
}

// nextChunk pulls the next slice of body bytes. A clean EOF transitions to
// Drained; any other read error (including a context cancellation
// surfacing through the body reader) transitions to Failed, consulting the
// in-band X-ClickHouse-Exception-Code header/trailer first since ClickHouse
// reports query errors mid-body rather than via the status line.
func (r *response) nextChunk(buf []byte) ([]byte, bool, error) {
	if r.state == stateFailed {
		return nil, false, r.err
	}
	if r.state == stateDrained {
		return nil, false, nil
	}

	n, err := r.http.Body.Read(buf)
	r.receivedBytes += int64(n)
	chunk := buf[:n]

	if err == nil {
		return chunk, true, nil
	}
	if err != io.EOF {
		r.state = stateFailed
		if code, msg, ok := exceptionCode(r.http.Header); ok {
			r.err = &BadResponseErr{Code: code, Message: msg}
		} else if code, msg, ok := exceptionCode(r.http.Trailer); ok {
			r.err = &BadResponseErr{Code: code, Message: msg}
		} else {
			r.err = &NetworkErr{Err: err}
		}
		return chunk, n > 0, r.err
	}

	// Clean EOF: check both the header (set up front by some proxies) and
	// the trailer (set by ClickHouse itself after the body completes) for
	// an in-band exception before declaring the response Drained.
	if code, msg, ok := exceptionCode(r.http.Header); ok {
		r.state = stateFailed
		r.err = &BadResponseErr{Code: code, Message: msg}
		return chunk, n > 0, r.err
	}
	if code, msg, ok := exceptionCode(r.http.Trailer); ok {
		r.state = stateFailed
		r.err = &BadResponseErr{Code: code, Message: msg}
		return chunk, n > 0, r.err
	}

	r.state = stateDrained
	if n > 0 {
		return chunk, true, nil
	}
	return nil, false, nil
}

// Read implements io.Reader over the same state machine nextChunk drives,
// so a stdlib decompressor (gzip.NewReader, zlib.NewReader) can wrap a
// *response directly instead of going through the chunk-oriented cursor
// API. Used by BytesCursor for the Gzip/Zlib compression modes; LZ4 uses
// nextChunk/BufferedChunks instead because ClickHouse's LZ4 framing isn't
// something compress/gzip-shaped stdlib readers understand.
func (r *response) Read(p []byte) (int, error) {
	chunk, ok, err := r.nextChunk(p)
	if err != nil {
		return len(chunk), err
	}
	if !ok {
		return 0, io.EOF
	}
	return len(chunk), nil
}

func (r *response) close() error {
	if r.http == nil {
		return nil
	}
	return r.http.Body.Close()
}

func (r *response) summary() (Summary, bool, error) {
	if r.http == nil {
		return Summary{}, false, nil
	}
	return parseSummary(r.http.Header)
}
