package core

import (
	"sort"
	"strconv"
)

// TopCountriesLimit is how many countries the summary reports.
const TopCountriesLimit = 5

// Overview is the header metrics of a table.
type Overview struct {
	Records     int
	Columns     int
	UniqueIDs   int
	HasIDColumn bool
}

// GenderCount is the number of rows holding one coded gender value.
type GenderCount struct {
	Code  string
	Label string
	Count int
}

// ValueCount is the number of rows holding one value.
type ValueCount struct {
	Value string
	Count int
}

// NumberStats are the mean, minimum and maximum of a numeric column.
type NumberStats struct {
	Mean float64
	Min  float64
	Max  float64
}

// FormatWhole renders v rounded to a whole number.
func FormatWhole(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// Summary aggregates the current filtered table. A nil or empty field means
// the column it derives from is absent.
type Summary struct {
	Overview

	HasGender    bool
	Gender       []GenderCount
	HasCountries bool
	TopCountries []ValueCount
	Followers    *NumberStats
}

// Describe computes the header metrics of t.
func Describe(t *Table) Overview {
	o := Overview{Records: t.Len(), Columns: t.Width()}
	if col, ok := t.Column(ColID); ok {
		o.HasIDColumn = true
		seen := make(map[string]bool)
		for i := 0; i < col.Len(); i++ {
			if !col.IsNull(i) {
				seen[col.String(i)] = true
			}
		}
		o.UniqueIDs = len(seen)
	}
	return o
}

// Summarize derives the statistics shown for t. It never modifies t.
func Summarize(t *Table) Summary {
	s := Summary{Overview: Describe(t)}

	if col, ok := t.Column(ColSex); ok {
		s.HasGender = true
		for _, vc := range valueCounts(col) {
			s.Gender = append(s.Gender, GenderCount{
				Code:  vc.Value,
				Label: genderLabel(vc.Value),
				Count: vc.Count,
			})
		}
	}

	if col, ok := t.Column(ColCountry); ok {
		s.HasCountries = true
		counts := valueCounts(col)
		if len(counts) > TopCountriesLimit {
			counts = counts[:TopCountriesLimit]
		}
		s.TopCountries = counts
	}

	if col, ok := t.Column(ColFollowers); ok {
		s.Followers = numberStats(col)
	}
	return s
}

// genderLabel maps a coded value to Male, Female or Other.
func genderLabel(code string) string {
	v := ToPgFloat8(code)
	switch {
	case v.Valid && v.Float64 == 1:
		return "Male"
	case v.Valid && v.Float64 == 2:
		return "Female"
	default:
		return "Other"
	}
}

// valueCounts counts non-null values, most frequent first. Ties keep the
// order in which values first appear.
func valueCounts(col *Column) []ValueCount {
	index := make(map[string]int)
	var counts []ValueCount
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v := col.String(i)
		if j, ok := index[v]; ok {
			counts[j].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})
	return counts
}

// numberStats returns nil when col holds no numbers.
func numberStats(col *Column) *NumberStats {
	var sum float64
	n := 0
	var st NumberStats
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Number(i)
		if !ok {
			continue
		}
		if n == 0 || v < st.Min {
			st.Min = v
		}
		if n == 0 || v > st.Max {
			st.Max = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return nil
	}
	st.Mean = sum / float64(n)
	return &st
}
