package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_PutFixedStr(t *testing.T) {
	t.Run("ExactLength", func(t *testing.T) {
		var buf Buffer
		buf.PutFixedStr("hello", 5)
		require.Len(t, buf.Buf, 5)
		require.Equal(t, "hello", string(buf.Buf))
	})
	t.Run("PadsShort", func(t *testing.T) {
		var buf Buffer
		buf.PutFixedStr("hi", 5)
		require.Len(t, buf.Buf, 5)
		require.Equal(t, []byte("hi\x00\x00\x00"), buf.Buf)
	})
	t.Run("TruncatesLong", func(t *testing.T) {
		var buf Buffer
		buf.PutFixedStr("hello world", 5)
		require.Len(t, buf.Buf, 5)
		require.Equal(t, "hello", string(buf.Buf))
	})
	t.Run("RoundTrip", func(t *testing.T) {
		const n = 128
		var buf Buffer
		buf.PutFixedStr("foo", n)
		require.Len(t, buf.Buf, n)

		var chunks BufferedChunks
		chunks.Push(buf.Buf)
		dec := NewDecoder(&chunks)
		got, err := dec.FixedStr(n)
		require.NoError(t, err)
		dec.Commit()
		require.Equal(t, n, len(got))
		require.Equal(t, "foo", got[:3])
	})
}
