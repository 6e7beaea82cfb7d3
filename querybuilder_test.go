package ch

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kokizzu/ch/proto"
)

func newTestConfig() *Config {
	return &Config{BaseURL: "http://localhost:8123", Database: "default"}
}

func TestQueryBuilder_BuildSelect_AppendsFormat(t *testing.T) {
	qb := newQueryBuilder(newTestConfig())
	spec, err := qb.buildSelect("SELECT 1", selectOptions{Format: FormatRowBinaryWithNamesAndTypes})
	require.NoError(t, err)
	require.Equal(t, "SELECT 1 FORMAT RowBinaryWithNamesAndTypes", spec.Body)
	require.Equal(t, "POST", spec.Method)

	u, err := url.Parse(spec.URL)
	require.NoError(t, err)
	require.Equal(t, "default", u.Query().Get("database"))
	require.NotEmpty(t, u.Query().Get("query_id"))
}

func TestQueryBuilder_BuildSelect_LZ4SetsCompressParam(t *testing.T) {
	qb := newQueryBuilder(newTestConfig())
	spec, err := qb.buildSelect("SELECT 1", selectOptions{
		Format:      FormatRowBinary,
		Compression: CompressionLZ4,
	})
	require.NoError(t, err)
	u, err := url.Parse(spec.URL)
	require.NoError(t, err)
	require.Equal(t, "1", u.Query().Get("compress"))
}

func TestQueryBuilder_BuildSelect_DoesNotDoubleFormat(t *testing.T) {
	qb := newQueryBuilder(newTestConfig())
	spec, err := qb.buildSelect("SELECT 1 FORMAT JSON", selectOptions{Format: FormatRowBinary})
	require.NoError(t, err)
	require.Equal(t, "SELECT 1 FORMAT JSON", spec.Body)
}

func TestQueryBuilder_BuildInsert(t *testing.T) {
	qb := newQueryBuilder(newTestConfig())
	spec, err := qb.buildInsert(insertOptions{
		Table: "events",
		Columns: []proto.Column{
			{Name: "id", Type: &proto.Type{Kind: proto.KindUInt32}},
			{Name: "name", Type: &proto.Type{Kind: proto.KindString}},
		},
	})
	require.NoError(t, err)

	u, err := url.Parse(spec.URL)
	require.NoError(t, err)
	q := u.Query().Get("query")
	require.True(t, strings.HasPrefix(q, "INSERT INTO events (`id`, `name`) FORMAT RowBinary"))
}

func TestQueryBuilder_BuildInsert_RequiresTable(t *testing.T) {
	qb := newQueryBuilder(newTestConfig())
	_, err := qb.buildInsert(insertOptions{})
	require.Error(t, err)
}
