package core

// table.go defines the in-memory table produced by the loader and narrowed
// by the filter pipeline.
//
// Tables are immutable. Every operation that changes rows or columns returns
// a new *Table and leaves its input untouched, so a loaded source table can be
// shared by concurrent requests. Cells are pgtype values: a null cell is
// Valid=false whatever the column kind.

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ColumnKind is the semantic type of a column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInt
	KindFloat
	KindDate
)

// String returns the lowercase name of the kind.
func (k ColumnKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// DateLayout is the canonical text form of date cells.
const DateLayout = "2006-01-02"

// Column is a named array of nullable cells. Only the slice matching Kind
// is populated.
type Column struct {
	Name  string
	Kind  ColumnKind
	Text  []pgtype.Text
	Int   []pgtype.Int8
	Float []pgtype.Float8
	Date  []pgtype.Date
}

// NewTextColumn builds a text column.
func NewTextColumn(name string, cells []pgtype.Text) *Column {
	return &Column{Name: name, Kind: KindText, Text: cells}
}

// NewIntColumn builds an integer column.
func NewIntColumn(name string, cells []pgtype.Int8) *Column {
	return &Column{Name: name, Kind: KindInt, Int: cells}
}

// NewFloatColumn builds a float column.
func NewFloatColumn(name string, cells []pgtype.Float8) *Column {
	return &Column{Name: name, Kind: KindFloat, Float: cells}
}

// NewDateColumn builds a date column.
func NewDateColumn(name string, cells []pgtype.Date) *Column {
	return &Column{Name: name, Kind: KindDate, Date: cells}
}

// Len returns the number of cells.
func (c *Column) Len() int {
	switch c.Kind {
	case KindInt:
		return len(c.Int)
	case KindFloat:
		return len(c.Float)
	case KindDate:
		return len(c.Date)
	default:
		return len(c.Text)
	}
}

// IsNull reports whether row i holds no value.
func (c *Column) IsNull(i int) bool {
	switch c.Kind {
	case KindInt:
		return !c.Int[i].Valid
	case KindFloat:
		return !c.Float[i].Valid
	case KindDate:
		return !c.Date[i].Valid
	default:
		return !c.Text[i].Valid
	}
}

// String returns the canonical text of row i, or "" when the cell is null.
// Integers print without decimals, floats in their shortest form and dates
// as YYYY-MM-DD.
func (c *Column) String(i int) string {
	if c.IsNull(i) {
		return ""
	}
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.Int[i].Int64, 10)
	case KindFloat:
		return formatFloat(c.Float[i].Float64)
	case KindDate:
		return c.Date[i].Time.Format(DateLayout)
	default:
		return c.Text[i].String
	}
}

// Number returns row i as a float64. Text cells are parsed when they hold a
// number; date and null cells are never numeric.
func (c *Column) Number(i int) (float64, bool) {
	switch c.Kind {
	case KindInt:
		v := c.Int[i]
		return float64(v.Int64), v.Valid
	case KindFloat:
		v := c.Float[i]
		return v.Float64, v.Valid
	case KindText:
		v := ToPgFloat8(c.Text[i].String)
		return v.Float64, c.Text[i].Valid && v.Valid
	default:
		return 0, false
	}
}

// Value returns row i as a plain Go value: nil, string, int64, float64 or
// time.Time.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.Kind {
	case KindInt:
		return c.Int[i].Int64
	case KindFloat:
		return c.Float[i].Float64
	case KindDate:
		return c.Date[i].Time
	default:
		return c.Text[i].String
	}
}

// take returns a new column holding rows in the given order.
func (c *Column) take(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindInt:
		out.Int = make([]pgtype.Int8, len(rows))
		for j, r := range rows {
			out.Int[j] = c.Int[r]
		}
	case KindFloat:
		out.Float = make([]pgtype.Float8, len(rows))
		for j, r := range rows {
			out.Float[j] = c.Float[r]
		}
	case KindDate:
		out.Date = make([]pgtype.Date, len(rows))
		for j, r := range rows {
			out.Date[j] = c.Date[r]
		}
	default:
		out.Text = make([]pgtype.Text, len(rows))
		for j, r := range rows {
			out.Text[j] = c.Text[r]
		}
	}
	return out
}

// Table is an ordered set of equal-length named columns.
type Table struct {
	Columns []*Column

	// Encoding is the text encoding the source bytes were decoded with.
	Encoding string

	index map[string]int
}

// NewTable validates that columns have unique names and equal lengths.
func NewTable(cols []*Column) (*Table, error) {
	t := &Table{Columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), cols[0].Len())
		}
		t.index[c.Name] = i
	}
	return t, nil
}

// Len returns the row count.
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Width returns the column count.
func (t *Table) Width() int {
	return len(t.Columns)
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns the canonical text of every cell in row i.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.String(i)
	}
	return row
}

// Filter returns the rows for which keep is true, in their original order.
// The receiver is returned unchanged when every row is kept.
func (t *Table) Filter(keep func(row int) bool) *Table {
	n := t.Len()
	rows := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	if len(rows) == n {
		return t
	}
	return t.take(rows)
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= t.Len() {
		return t
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.take(rows)
}

// Select returns a table restricted to the named columns, in table order.
// Unknown names are ignored.
func (t *Table) Select(names []string) *Table {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	cols := make([]*Column, 0, len(names))
	for _, c := range t.Columns {
		if want[c.Name] {
			cols = append(cols, c)
		}
	}
	return t.derive(cols)
}

// withColumn returns a copy of the table with the same-named column replaced.
func (t *Table) withColumn(col *Column) *Table {
	cols := make([]*Column, len(t.Columns))
	copy(cols, t.Columns)
	if i, ok := t.index[col.Name]; ok {
		cols[i] = col
	}
	return t.derive(cols)
}

func (t *Table) take(rows []int) *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.take(rows)
	}
	return t.derive(cols)
}

// derive builds a sibling table from already validated columns.
func (t *Table) derive(cols []*Column) *Table {
	out := &Table{Columns: cols, Encoding: t.Encoding, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		out.index[c.Name] = i
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// calendarDate truncates t to midnight UTC of its own calendar day.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
