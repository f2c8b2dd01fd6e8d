package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findStep(t *testing.T, res *Result, key string) StepState {
	t.Helper()
	for _, st := range res.Steps {
		if st.Step.Key == key {
			return st
		}
	}
	t.Fatalf("step %q missing from result", key)
	return StepState{}
}

func TestRun_NoSelections(t *testing.T) {
	tbl := loadSample(t)
	res := Run(tbl, Selections{}, nil)

	assert.Same(t, tbl, res.Table)
	assert.Len(t, res.Steps, len(Steps))
	assert.Equal(t, 0, res.ActiveFilters())
	assert.Equal(t, Overview{Records: 3, Columns: 10, UniqueIDs: 3, HasIDColumn: true}, res.Source)
	assert.Equal(t, tbl.Names(), res.Display)

	sex := findStep(t, res, "sex")
	assert.True(t, sex.Present)
	assert.Equal(t, AllOption, sex.Selected)

	followers := findStep(t, res, "followers")
	assert.False(t, followers.Active)
	assert.Equal(t, Range{Min: 320, Max: 1500}, followers.Bounds)
	assert.Equal(t, followers.Bounds, followers.Value)
}

func TestRun_CascadingState(t *testing.T) {
	tbl := loadSample(t)
	res := Run(tbl, Selections{Sex: "male", Followers: &Range{Min: 300, Max: 1000}}, nil)

	assert.Equal(t, 2, res.Table.Len())
	assert.Equal(t, 2, res.ActiveFilters())
	assert.Equal(t, 3, res.Source.Records, "source overview ignores filters")

	country := findStep(t, res, "country")
	assert.False(t, country.Active)
	assert.Equal(t, AllOption, country.Selected)
	assert.Equal(t, []string{"Brazil", "USA"}, country.Options, "options come from rows left by earlier steps")

	followers := findStep(t, res, "followers")
	assert.True(t, followers.Active)
	assert.Equal(t, Range{Min: 320, Max: 862}, followers.Bounds)
	assert.Equal(t, Range{Min: 320, Max: 862}, followers.Value)

	require.NotNil(t, res.Summary.Followers)
	assert.Equal(t, "591", FormatWhole(res.Summary.Followers.Mean))
}

func TestRun_AbsentColumnsHideSteps(t *testing.T) {
	tbl := loadCSV(t, "first_name,followers_count\nA,1\n")
	res := Run(tbl, Selections{Country: "USA"}, nil)

	assert.False(t, findStep(t, res, "country").Present)
	assert.False(t, findStep(t, res, "sex").Present)
	assert.True(t, findStep(t, res, "first_name").Present)
	assert.Equal(t, 0, res.ActiveFilters())
}

func TestRun_CityHiddenWhenNoRowsRemain(t *testing.T) {
	tbl := loadSample(t)

	res := Run(tbl, Selections{Followers: &Range{Min: 0, Max: 1}}, nil)
	assert.Equal(t, 0, res.Table.Len())
	assert.False(t, findStep(t, res, "city").Present)

	res = Run(tbl, Selections{Country: "USA"}, nil)
	city := findStep(t, res, "city")
	assert.True(t, city.Present)
	assert.Equal(t, []string{"New York"}, city.Options)
}

func wideCSV(cols int) string {
	names := []string{ColFirstName, ColLastName, ColID, ColLastSeen, ColCountry}
	for i := len(names); i < cols; i++ {
		names = append(names, fmt.Sprintf("extra_%d", i))
	}
	row := make([]string, len(names))
	for i := range row {
		row[i] = "v"
	}
	return strings.Join(names, ",") + "\n" + strings.Join(row, ",") + "\n"
}

func TestDisplayColumns(t *testing.T) {
	narrow := loadCSV(t, wideCSV(WideTableColumns))
	assert.Equal(t, narrow.Names(), DisplayColumns(narrow, []string{ColID}))

	wide := loadCSV(t, wideCSV(WideTableColumns+2))
	assert.Equal(t, DefaultDisplayColumns, DisplayColumns(wide, nil))
	assert.Equal(t, []string{ColFirstName, "extra_7"}, DisplayColumns(wide, []string{"extra_7", ColFirstName}))
	assert.Equal(t, wide.Names(), DisplayColumns(wide, []string{"nope"}))
}

func TestRun_StaleExactSelectionShowsAll(t *testing.T) {
	tbl := loadCSV(t, "first_name,country_title\nAnna,Brazil\nBob,Portugal\n")
	res := Run(tbl, Selections{FirstName: "Bob", Country: "Brazil"}, nil)

	assert.Equal(t, 1, res.Table.Len())
	assert.Equal(t, 1, res.ActiveFilters())

	first := findStep(t, res, "first_name")
	assert.True(t, first.Active)
	assert.Equal(t, "Bob", first.Selected)

	country := findStep(t, res, "country")
	assert.False(t, country.Active)
	assert.Equal(t, AllOption, country.Selected)
	assert.Equal(t, []string{"Portugal"}, country.Options)
}
