package ch

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/kokizzu/ch/proto"
)

// CompressionMode negotiates both the Accept-Encoding/Content-Encoding
// headers and, where applicable, the on-the-wire LZ4 framing this module's
// own compress package understands.
type CompressionMode int

const (
	CompressionNone CompressionMode = iota
	CompressionLZ4
	CompressionGzip
	CompressionZlib
	CompressionBrotli
)

func (m CompressionMode) acceptEncoding() string {
	switch m {
	case CompressionLZ4:
		return "" // ClickHouse's LZ4 framing rides the `compress=1` query param, not Accept-Encoding.
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "deflate"
	case CompressionBrotli:
		return "br"
	default:
		return ""
	}
}

// requestSpec is the fully assembled, ready-to-issue description of one
// HTTP request: method, URL, headers, and a body. The transport
// (*http.Client) turns this into an *http.Request; keeping it as a plain
// struct first lets tests assert on the assembled query string without a
// real server.
type requestSpec struct {
	Method  string
	URL     string
	Header  http.Header
	Body    string // present for Select; empty for Insert, which streams its own body
	QueryID string
}

// queryBuilder composes a requestSpec from a SQL template, bound
// parameters, and the client's base configuration.
type queryBuilder struct {
	cfg      *Config
	database string
}

func newQueryBuilder(cfg *Config) *queryBuilder {
	return &queryBuilder{cfg: cfg, database: cfg.Database}
}

// selectOptions configures one SELECT's request assembly.
type selectOptions struct {
	Database          string
	QueryID           string
	Settings          map[string]string
	Columns           []proto.Column // nil for fetch_raw/fetch_bytes
	Format            OutputFormat
	AllowPlaceholders bool
	Args              []any
	Compression       CompressionMode
	ExtraHeaders      map[string]string
}

// buildSelect assembles the requestSpec for a SELECT: the SQL (after
// ?/?fields interpolation) as the POST body, with database/query_id/
// settings/compress carried on the query string.
func (qb *queryBuilder) buildSelect(sql string, opt selectOptions) (requestSpec, error) {
	body, err := bindTemplate(sql, opt.Columns, opt.Args, opt.AllowPlaceholders)
	if err != nil {
		return requestSpec{}, errors.Wrap(err, "build select")
	}
	body = appendFormat(body, opt.Format)

	database := opt.Database
	if database == "" {
		database = qb.database
	}
	queryID := opt.QueryID
	if queryID == "" {
		queryID = uuid.NewString()
	}

	q := url.Values{}
	if database != "" {
		q.Set("database", database)
	}
	q.Set("query_id", queryID)
	if opt.Compression == CompressionLZ4 {
		q.Set("compress", "1")
	}
	for k, v := range opt.Settings {
		q.Set(k, v)
	}
	for k, v := range qb.cfg.Options {
		if _, ok := opt.Settings[k]; !ok {
			q.Set(k, v)
		}
	}

	header := buildHeaders(qb.cfg, database, qb.cfg.User, qb.cfg.Password, "", opt.ExtraHeaders)
	if enc := opt.Compression.acceptEncoding(); enc != "" {
		header.Set("Accept-Encoding", enc)
	}

	return requestSpec{
		Method:  http.MethodPost,
		URL:     qb.cfg.BaseURL + "/?" + q.Encode(),
		Header:  header,
		Body:    body,
		QueryID: queryID,
	}, nil
}

// insertOptions configures an INSERT's request assembly.
type insertOptions struct {
	Database     string
	QueryID      string
	Settings     map[string]string
	Table        string
	Columns      []proto.Column
	Compression  CompressionMode
	ExtraHeaders map[string]string
}

// buildInsert assembles the RequestSpec for an INSERT. Its body is left
// empty here: the Insert Writer streams RowBinary-encoded rows directly to
// the transport rather than buffering them into this struct.
func (qb *queryBuilder) buildInsert(opt insertOptions) (requestSpec, error) {
	if opt.Table == "" {
		return requestSpec{}, errors.New("build insert: table is required")
	}
	cols := fieldNames(opt.Columns)
	sql := "INSERT INTO " + opt.Table
	if len(cols) > 0 {
		sql += " (" + strings.Join(quoteAll(cols), ", ") + ")"
	}
	sql += " FORMAT RowBinary"

	database := opt.Database
	if database == "" {
		database = qb.database
	}
	queryID := opt.QueryID
	if queryID == "" {
		queryID = uuid.NewString()
	}

	q := url.Values{}
	if database != "" {
		q.Set("database", database)
	}
	q.Set("query_id", queryID)
	q.Set("query", sql)
	for k, v := range opt.Settings {
		q.Set(k, v)
	}

	header := buildHeaders(qb.cfg, database, qb.cfg.User, qb.cfg.Password, "", opt.ExtraHeaders)
	if opt.Compression == CompressionLZ4 {
		q.Set("decompress", "1")
		header.Set("Content-Encoding", "lz4")
	}

	return requestSpec{
		Method:  http.MethodPost,
		URL:     qb.cfg.BaseURL + "/?" + q.Encode(),
		Header:  header,
		QueryID: queryID,
	}, nil
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = escapeIdentifier(n)
	}
	return out
}

// appendFormat appends a FORMAT clause to sql unless the caller already
// supplied their own FORMAT, in which case it's left untouched (FetchRaw
// passes its caller's format name in as format).
func appendFormat(sql string, format OutputFormat) string {
	trimmed := strings.TrimRight(sql, " \t\n;")
	upper := strings.ToUpper(trimmed)
	if strings.Contains(upper, "FORMAT ") {
		return trimmed
	}
	return trimmed + " FORMAT " + format.String()
}
