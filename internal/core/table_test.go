package core

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_Validates(t *testing.T) {
	a := NewIntColumn("a", []pgtype.Int8{{Int64: 1, Valid: true}})
	b := NewTextColumn("b", []pgtype.Text{{String: "x", Valid: true}, {}})

	_, err := NewTable([]*Column{a, b})
	assert.ErrorContains(t, err, `column "b" has 2 rows`)

	_, err = NewTable([]*Column{a, a})
	assert.ErrorContains(t, err, `duplicate column "a"`)

	empty, err := NewTable(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0, empty.Width())
}

func TestColumn_CellAccess(t *testing.T) {
	col := NewFloatColumn("f", []pgtype.Float8{{Float64: 2.5, Valid: true}, {}, {Float64: 3, Valid: true}})

	assert.Equal(t, "2.5", col.String(0))
	assert.Equal(t, "", col.String(1))
	assert.Equal(t, "3", col.String(2))
	assert.Nil(t, col.Value(1))
	assert.Equal(t, 3.0, col.Value(2))

	_, ok := col.Number(1)
	assert.False(t, ok)

	text := NewTextColumn("t", []pgtype.Text{{String: "12", Valid: true}, {String: "abc", Valid: true}})
	v, ok := text.Number(0)
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)
	_, ok = text.Number(1)
	assert.False(t, ok)
}

func TestTable_FilterKeepsOrderAndSource(t *testing.T) {
	tbl := loadSample(t)

	out := tbl.Filter(func(row int) bool { return row != 1 })
	assert.Equal(t, []string{"Pappa", "John"}, columnValues(t, out, ColFirstName))
	assert.Equal(t, 3, tbl.Len(), "source must not change")

	assert.Same(t, tbl, tbl.Filter(func(int) bool { return true }))
	assert.Equal(t, 0, tbl.Filter(func(int) bool { return false }).Len())
}

func TestTable_SelectAndHead(t *testing.T) {
	tbl := loadSample(t)

	sel := tbl.Select([]string{ColID, ColFirstName, "missing"})
	assert.Equal(t, []string{ColFirstName, ColID}, sel.Names())
	assert.Equal(t, 3, sel.Len())
	assert.Equal(t, "utf-8", sel.Encoding)

	head := tbl.Head(2)
	assert.Equal(t, 2, head.Len())
	assert.Same(t, tbl, tbl.Head(10))
	assert.Same(t, tbl, tbl.Head(-1))
}

func TestTable_Row(t *testing.T) {
	tbl := loadSample(t)
	assert.Equal(t,
		[]string{"Maria", "Silva", "470000406", "2023-07-15", "2", "1500", "Portugal", "Lisbon", "1990", "1"},
		tbl.Row(1),
	)
}
