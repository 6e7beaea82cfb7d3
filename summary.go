package ch

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
)

// Summary is the decoded X-ClickHouse-Summary response header: ClickHouse
// reports these as a JSON object whose integer fields are themselves JSON
// strings, so a plain json.Unmarshal into int64 fields won't do.
type Summary struct {
	ReadRows        uint64
	ReadBytes       uint64
	WrittenRows     uint64
	WrittenBytes    uint64
	TotalRowsToRead uint64
	ResultRows      uint64
	ResultBytes     uint64
	ElapsedNS       uint64
}

// summaryWire mirrors the header's JSON shape before the string->uint64
// conversion.
type summaryWire struct {
	ReadRows        string `json:"read_rows"`
	ReadBytes       string `json:"read_bytes"`
	WrittenRows     string `json:"written_rows"`
	WrittenBytes    string `json:"written_bytes"`
	TotalRowsToRead string `json:"total_rows_to_read"`
	ResultRows      string `json:"result_rows"`
	ResultBytes     string `json:"result_bytes"`
	ElapsedNS       string `json:"elapsed_ns"`
}

// parseSummary decodes the X-ClickHouse-Summary header, if present. A
// missing header is not an error: it returns a zero Summary and false.
func parseSummary(h http.Header) (Summary, bool, error) {
	raw := h.Get("X-ClickHouse-Summary")
	if raw == "" {
		return Summary{}, false, nil
	}
	var wire summaryWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Summary{}, false, errors.Wrap(err, "parse X-ClickHouse-Summary")
	}
	parse := func(s string) uint64 {
		var v uint64
		for _, c := range []byte(s) {
			if c < '0' || c > '9' {
				return v
			}
			v = v*10 + uint64(c-'0')
		}
		return v
	}
	return Summary{
		ReadRows:        parse(wire.ReadRows),
		ReadBytes:       parse(wire.ReadBytes),
		WrittenRows:     parse(wire.WrittenRows),
		WrittenBytes:    parse(wire.WrittenBytes),
		TotalRowsToRead: parse(wire.TotalRowsToRead),
		ResultRows:      parse(wire.ResultRows),
		ResultBytes:     parse(wire.ResultBytes),
		ElapsedNS:       parse(wire.ElapsedNS),
	}, true, nil
}

// exceptionCode reports the in-band X-ClickHouse-Exception-Code header, if
// the server set one. ClickHouse can answer with a 200 status line and
// still fail mid-body; this header (and X-ClickHouse-Exception-Message /
// the trailing plaintext) is how that failure surfaces.
func exceptionCode(h http.Header) (code, message string, ok bool) {
	code = h.Get("X-ClickHouse-Exception-Code")
	if code == "" {
		return "", "", false
	}
	return code, h.Get("X-ClickHouse-Exception-Message"), true
}
