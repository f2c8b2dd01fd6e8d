package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCSV = `first_name,last_name,id,last_seen,sex,followers_count,country_title,city_title,byear,can_write_private_message
Pappa,Hapa,470000405,01.08.2023,1,862,Brazil,São Paulo,1993,1
Maria,Silva,470000406,15.07.2023,2,1500,Portugal,Lisbon,1990,1
John,Doe,470000407,20.06.2023,1,320,USA,New York,1985,0
`

// loadCSV loads text and normalises its date columns.
func loadCSV(t *testing.T, text string) *Table {
	t.Helper()
	tbl, err := Load([]byte(text))
	require.NoError(t, err)
	return ParseDates(tbl)
}

func loadSample(t *testing.T) *Table {
	t.Helper()
	return loadCSV(t, sampleCSV)
}

// columnValues returns the canonical text of every cell of a column.
func columnValues(t *testing.T, tbl *Table, name string) []string {
	t.Helper()
	col, ok := tbl.Column(name)
	require.True(t, ok, "column %q missing", name)
	out := make([]string, col.Len())
	for i := range out {
		out[i] = col.String(i)
	}
	return out
}

func ptr(v float64) *float64 {
	return &v
}
