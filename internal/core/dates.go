package core

import "github.com/jackc/pgx/v5/pgtype"

// ParseDates converts the known date columns to KindDate. Values that no
// layout accepts become null; the rest of the row is kept. Absent columns are
// skipped, so this is safe to call on any table.
func ParseDates(t *Table) *Table {
	out := t
	for _, name := range DateColumns {
		col, ok := out.Column(name)
		if !ok || col.Kind == KindDate {
			continue
		}
		out = out.withColumn(toDateColumn(col))
	}
	return out
}

func toDateColumn(col *Column) *Column {
	n := col.Len()
	dates := make([]pgtype.Date, n)
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			continue
		}
		dates[i] = ToPgDate(col.String(i))
	}
	return NewDateColumn(col.Name, dates)
}
