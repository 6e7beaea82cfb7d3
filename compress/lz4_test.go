package compress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kokizzu/ch/proto"
)

func encodeFrame(t *testing.T, src []byte) []byte {
	t.Helper()
	var buf proto.Buffer
	require.NoError(t, EncodeFrame(&buf, src))
	return buf.Buf
}

func TestLZ4_RoundTrip(t *testing.T) {
	for _, src := range [][]byte{
		nil,
		[]byte("x"),
		[]byte("hello, clickhouse"),
		make([]byte, 4096), // compressible run of zeros
	} {
		framed := encodeFrame(t, src)

		var chunks proto.BufferedChunks
		chunks.Push(framed)
		dec := NewDecoder(&chunks)

		got, err := dec.Next()
		require.NoError(t, err)
		require.Equal(t, src, got)
		require.Equal(t, 0, chunks.Remaining())
	}
}

func TestLZ4_NotEnoughData(t *testing.T) {
	framed := encodeFrame(t, []byte("hello, clickhouse"))

	for n := 0; n < len(framed); n++ {
		var chunks proto.BufferedChunks
		chunks.Push(framed[:n])
		dec := NewDecoder(&chunks)

		_, err := dec.Next()
		require.ErrorIs(t, err, proto.ErrNotEnoughData)
		require.Equal(t, n, chunks.Remaining())
	}
}

func TestLZ4_CorruptedChecksum(t *testing.T) {
	framed := encodeFrame(t, []byte("hello, clickhouse"))
	framed[0] ^= 0xFF // flip every bit of the first checksum byte

	var chunks proto.BufferedChunks
	chunks.Push(framed)
	dec := NewDecoder(&chunks)

	_, err := dec.Next()
	var corrupt *CorruptedDataErr
	require.ErrorAs(t, err, &corrupt)
}

func TestLZ4_UnsupportedMethod(t *testing.T) {
	framed := encodeFrame(t, []byte("hello"))
	framed[checksumSize] = 0x90 // not MethodLZ4; checksum now stale but method is checked first

	var chunks proto.BufferedChunks
	chunks.Push(framed)
	dec := NewDecoder(&chunks)

	_, err := dec.Next()
	var decompress *DecompressionErr
	require.ErrorAs(t, err, &decompress)
}

func TestLZ4_MultipleFramesInSequence(t *testing.T) {
	var all []byte
	all = append(all, encodeFrame(t, []byte("first"))...)
	all = append(all, encodeFrame(t, []byte("second frame"))...)

	var chunks proto.BufferedChunks
	chunks.Push(all)
	dec := NewDecoder(&chunks)

	first, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("first"), first)

	second, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("second frame"), second)

	require.Equal(t, 0, chunks.Remaining())
}
