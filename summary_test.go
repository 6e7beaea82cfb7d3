package ch

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSummary(t *testing.T) {
	h := make(http.Header)
	h.Set("X-ClickHouse-Summary", `{"read_rows":"131","read_bytes":"524","written_rows":"0","written_bytes":"0","total_rows_to_read":"131","result_rows":"131","result_bytes":"524","elapsed_ns":"2501"}`)

	s, ok, err := parseSummary(h)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 131, s.ReadRows)
	require.EqualValues(t, 524, s.ReadBytes)
	require.EqualValues(t, 2501, s.ElapsedNS)
}

func TestParseSummary_Absent(t *testing.T) {
	_, ok, err := parseSummary(make(http.Header))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExceptionCode(t *testing.T) {
	h := make(http.Header)
	h.Set("X-ClickHouse-Exception-Code", "159")
	h.Set("X-ClickHouse-Exception-Message", "Code: 159. DB::Exception: Timeout exceeded: TIMEOUT_EXCEEDED")

	code, msg, ok := exceptionCode(h)
	require.True(t, ok)
	require.Equal(t, "159", code)
	require.Contains(t, msg, "TIMEOUT_EXCEEDED")
}
