package ch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kokizzu/ch/proto"
)

type blobRow struct{ Data string }

type blobRowReflection struct{}

func (blobRowReflection) Columns() []proto.Column {
	return []proto.Column{{Name: "data", Type: &proto.Type{Kind: proto.KindString}}}
}
func (blobRowReflection) Encode(buf *proto.Buffer, row *blobRow) { buf.PutStr(row.Data) }
func (blobRowReflection) Decode(dec *proto.Decoder, row *blobRow) error {
	v, err := dec.Str()
	row.Data = v
	return err
}

func TestInserter_MaxBytesThreshold(t *testing.T) {
	var commits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.Copy(io.Discard, r.Body)
		require.NoError(t, err)
		commits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithCompression(CompressionNone))
	require.NoError(t, err)

	ins, err := NewInserter[blobRow](context.Background(), c, "blobs", blobRowReflection{}, InsertOptions{},
		InserterThresholds{MaxBytes: 100000})
	require.NoError(t, err)
	defer ins.Close()

	blob := strings.Repeat("x", 70000)

	// A single row (~70KB encoded) stays under the 128KiB flush watermark
	// and well under the 100KB MaxBytes threshold: no commit yet.
	_, committed, err := ins.Write(context.Background(), &blobRow{Data: blob})
	require.NoError(t, err)
	require.False(t, committed)

	// The second row pushes the batch's cumulative size past both the
	// flush watermark (crossed mid-batch, resetting the live buffer) and
	// MaxBytes. The threshold must fire from the cumulative total, not
	// from the post-flush buffer length, which would read near zero here.
	quantum, committed, err := ins.Write(context.Background(), &blobRow{Data: blob})
	require.NoError(t, err)
	require.True(t, committed)
	require.GreaterOrEqual(t, quantum.Bytes, int64(100000))
	require.Equal(t, 2, quantum.Rows)
	require.Equal(t, 1, commits)

	// The batch counters reset after a commit.
	_, committed, err = ins.Write(context.Background(), &blobRow{Data: blob})
	require.NoError(t, err)
	require.False(t, committed)
}

func TestInserter_MaxRowsThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithCompression(CompressionNone))
	require.NoError(t, err)

	ins, err := NewInserter[idRow](context.Background(), c, "ids", idRowReflection{}, InsertOptions{},
		InserterThresholds{MaxRows: 3})
	require.NoError(t, err)
	defer ins.Close()

	var lastCommitted bool
	for i := uint32(0); i < 3; i++ {
		row := idRow{ID: i}
		_, committed, err := ins.Write(context.Background(), &row)
		require.NoError(t, err)
		lastCommitted = committed
	}
	require.True(t, lastCommitted)
}
