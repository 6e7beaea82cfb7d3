package proto

// BufferedChunks is a FIFO of byte buffers presenting a single logical byte
// cursor. It is the primitive the cursor/transport pipeline and the
// RowBinary decoder are built on: bytes arrive as discrete, never-fully
// -buffered chunks off the wire (or off the LZ4 decoder), and the decoder
// needs random-ish access across whatever chunk boundaries happen to fall
// mid-value without forcing a copy of the whole pending tail on every call.
//
// Pushing an empty buffer is a no-op. Advance drops exhausted front buffers
// eagerly so Remaining/len(bufs) stay tight.
type BufferedChunks struct {
	bufs [][]byte
	head int // consumed offset within bufs[0]
	n    int // total remaining bytes across all bufs
}

// Push appends a chunk to the back of the deque.
func (c *BufferedChunks) Push(b []byte) {
	if len(b) == 0 {
		return
	}
	c.bufs = append(c.bufs, b)
	c.n += len(b)
}

// Remaining returns the total number of buffered-but-unconsumed bytes.
func (c *BufferedChunks) Remaining() int { return c.n }

// Peek returns the unconsumed portion of the front buffer. It may be shorter
// than Remaining() if more than one chunk is queued.
func (c *BufferedChunks) Peek() []byte {
	if len(c.bufs) == 0 {
		return nil
	}
	return c.bufs[0][c.head:]
}

// Advance drops n consumed bytes from the front of the deque, freeing any
// buffer it fully exhausts.
func (c *BufferedChunks) Advance(n int) {
	if n == 0 {
		return
	}
	if n > c.n {
		panic("proto: BufferedChunks.Advance: n exceeds remaining")
	}
	c.n -= n
	for n > 0 {
		front := c.bufs[0][c.head:]
		if len(front) > n {
			c.head += n
			return
		}
		n -= len(front)
		c.bufs[0] = nil
		c.bufs = c.bufs[1:]
		c.head = 0
	}
}

// CopyTo copies exactly len(dst) bytes starting at the current position into
// dst without advancing the cursor. It reports false if fewer than len(dst)
// bytes are currently buffered, in which case dst is left untouched.
func (c *BufferedChunks) CopyTo(dst []byte) bool {
	need := len(dst)
	if need == 0 {
		return true
	}
	if need > c.n {
		return false
	}
	idx, off, filled := 0, c.head, 0
	for filled < need {
		buf := c.bufs[idx][off:]
		m := copy(dst[filled:], buf)
		filled += m
		idx++
		off = 0
	}
	return true
}

// At returns exactly n bytes starting at logical offset off from the
// current front of the buffer, without advancing the cursor, or false if
// fewer than off+n bytes are buffered. When the requested
// range is contiguous within a single pushed chunk it returns a direct
// subslice of that chunk (no copy); otherwise it copies the crossing bytes
// into *scratch, growing it as required, and returns that.
//
// The decoder must treat a non-nil return as valid only until the next call
// that might reuse scratch.
func (c *BufferedChunks) At(off, n int, scratch *[]byte) ([]byte, bool) {
	if n == 0 {
		return nil, off <= c.n
	}
	if off+n > c.n {
		return nil, false
	}

	idx, pos, skip := 0, c.head, off
	for skip > 0 {
		avail := len(c.bufs[idx]) - pos
		if avail > skip {
			pos += skip
			skip = 0
			break
		}
		skip -= avail
		idx++
		pos = 0
	}

	first := c.bufs[idx][pos:]
	if len(first) >= n {
		return first[:n], true
	}

	if cap(*scratch) < n {
		*scratch = make([]byte, n)
	}
	buf := (*scratch)[:n]
	filled := copy(buf, first)
	idx++
	for filled < n {
		m := copy(buf[filled:], c.bufs[idx])
		filled += m
		idx++
	}
	return buf, true
}
