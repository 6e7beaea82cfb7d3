package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Push a handful of chunks, including blanks, and check that Advance drops
// exhausted fronts eagerly while CopyTo reads across whatever boundaries
// remain.
func TestBufferedChunks_Advance(t *testing.T) {
	var c BufferedChunks
	c.Push([]byte{1, 2, 3})
	c.Push(nil)
	c.Push([]byte{4, 5, 6})
	c.Push([]byte{7, 8, 9})
	c.Push(nil)

	require.Equal(t, 9, c.Remaining())

	c.Advance(1)
	require.Equal(t, 8, c.Remaining())

	c.Advance(4)
	require.Equal(t, 4, c.Remaining())

	c.Advance(4)
	require.Equal(t, 0, c.Remaining())
}

func TestBufferedChunks_CopyTo(t *testing.T) {
	var c BufferedChunks
	c.Push([]byte{1, 2, 3})
	c.Push(nil)
	c.Push([]byte{4, 5, 6})
	c.Push([]byte{7, 8, 9})
	c.Push(nil)

	result := make([]byte, 9)

	require.True(t, c.CopyTo(result[0:1]))
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 0}, result)

	require.True(t, c.CopyTo(result[0:5]))
	require.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0, 0}, result)

	// CopyTo never advances.
	require.Equal(t, 9, c.Remaining())
}

func TestBufferedChunks_At_CrossesBoundary(t *testing.T) {
	var c BufferedChunks
	c.Push([]byte{1, 2, 3})
	c.Push([]byte{4, 5, 6})

	var scratch []byte

	// Fully within the first chunk: zero-copy.
	b, ok := c.At(0, 2, &scratch)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2}, b)

	// Crosses the boundary: must copy.
	b, ok = c.At(2, 3, &scratch)
	require.True(t, ok)
	require.Equal(t, []byte{3, 4, 5}, b)

	// Not enough data yet.
	_, ok = c.At(0, 100, &scratch)
	require.False(t, ok)

	// At never advances the cursor.
	require.Equal(t, 6, c.Remaining())
}

func TestBufferedChunks_PushEmptyIsNoop(t *testing.T) {
	var c BufferedChunks
	c.Push(nil)
	c.Push([]byte{})
	require.Equal(t, 0, c.Remaining())
	require.Nil(t, c.Peek())
}
