package ch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Grounded on the original source's sql/qualify.rs doctest examples, which
// were left as a todo!() there.
func TestUnqualifyTableName(t *testing.T) {
	cases := []struct {
		name       string
		wantDB     string
		wantTable  string
	}{
		{"my_database.my_table", "my_database", "my_table"},
		{"my_table", "", "my_table"},
		{"`db.schema`.table", "db.schema", "table"},
		{"db.`table.name`", "db", "table.name"},
		{"`my_db.my_table`", "", "my_db.my_table"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, table := unqualifyTableName(tc.name)
			require.Equal(t, tc.wantDB, db)
			require.Equal(t, tc.wantTable, table)
		})
	}
}
