package core

// filters.go declares the filter steps applied to a loaded table.
//
// Each step names its target column and knows how to build a row predicate
// from the user's Selections. A step is a no-op when its column is absent or
// its selection is unset, so adding a filter means adding one entry to Steps.

import (
	"math"
	"sort"
	"strings"
	"time"
)

// AllOption is the selection value meaning "do not filter".
const AllOption = "All"

// Range is an inclusive numeric interval. Open sides are ±Inf.
type Range struct {
	Min float64
	Max float64
}

// NewRange builds a range from optional bounds; a nil side is open.
func NewRange(min, max *float64) Range {
	r := Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if min != nil {
		r.Min = *min
	}
	if max != nil {
		r.Max = *max
	}
	return r
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Clamp narrows open or out-of-bounds sides of r to b.
func (r Range) Clamp(b Range) Range {
	out := r
	if math.IsInf(out.Min, -1) || out.Min < b.Min {
		out.Min = b.Min
	}
	if math.IsInf(out.Max, 1) || out.Max > b.Max {
		out.Max = b.Max
	}
	return out
}

// Selections holds one value per filter step. The zero value selects
// everything.
type Selections struct {
	FirstName string
	Sex       string
	Country   string
	City      string
	BirthYear *Range
	Followers *Range
	Message   string
}

// IsZero reports whether no step has a selection.
func (s Selections) IsZero() bool {
	return isUnset(s.FirstName) && isUnset(s.Sex) && isUnset(s.Country) &&
		isUnset(s.City) && s.BirthYear == nil && s.Followers == nil && isUnset(s.Message)
}

func isUnset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllOption)
}

// Predicate decides whether a row of col is kept.
type Predicate func(col *Column, row int) bool

// StepKind is the shape of a filter step's selection.
type StepKind int

const (
	// StepExact keeps rows equal to one chosen value of the column.
	StepExact StepKind = iota
	// StepChoice maps a named choice to a coded numeric value.
	StepChoice
	// StepRange keeps rows whose value lies in an inclusive range.
	StepRange
)

// Choice is one option of a StepChoice step.
type Choice struct {
	Value string
	Label string
	Code  float64
}

// FilterStep is one entry of the filter pipeline.
type FilterStep struct {
	Key    string
	Label  string
	Column string
	Kind   StepKind

	Choices []Choice

	// Fallback returns the bounds used when the column has no values.
	Fallback func() Range

	value    func(Selections) string
	rangeSel func(Selections) *Range
}

// Steps run in this order. Predicates are independent, so the order only
// matters for the option lists and bounds shown to the user.
var Steps = []*FilterStep{
	{
		Key: "first_name", Label: "First Name", Column: ColFirstName, Kind: StepExact,
		value: func(s Selections) string { return s.FirstName },
	},
	{
		Key: "sex", Label: "Gender", Column: ColSex, Kind: StepChoice,
		Choices: []Choice{
			{Value: "male", Label: "Male (1)", Code: 1},
			{Value: "female", Label: "Female (2)", Code: 2},
		},
		value: func(s Selections) string { return s.Sex },
	},
	{
		Key: "country", Label: "Country", Column: ColCountry, Kind: StepExact,
		value: func(s Selections) string { return s.Country },
	},
	{
		Key: "city", Label: "City", Column: ColCity, Kind: StepExact,
		value: func(s Selections) string { return s.City },
	},
	{
		Key: "byear", Label: "Birth Year", Column: ColBirthYear, Kind: StepRange,
		Fallback: func() Range { return Range{Min: 1900, Max: float64(time.Now().Year())} },
		rangeSel: func(s Selections) *Range { return s.BirthYear },
	},
	{
		Key: "followers", Label: "Followers Count", Column: ColFollowers, Kind: StepRange,
		Fallback: func() Range { return Range{Min: 0, Max: 10000} },
		rangeSel: func(s Selections) *Range { return s.Followers },
	},
	{
		Key: "message", Label: "Private Message", Column: ColPrivateMessage, Kind: StepChoice,
		Choices: []Choice{
			{Value: "can", Label: "Can send", Code: 1},
			{Value: "cannot", Label: "Cannot send", Code: 0},
		},
		value: func(s Selections) string { return s.Message },
	},
}

// stepByKey returns the step with the given key.
func stepByKey(key string) (*FilterStep, bool) {
	for _, s := range Steps {
		if s.Key == key {
			return s, true
		}
	}
	return nil, false
}

// Selected returns the raw selection value of an exact or choice step.
func (s *FilterStep) Selected(sel Selections) string {
	if s.value == nil {
		return ""
	}
	return strings.TrimSpace(s.value(sel))
}

// SelectedRange returns the range selection of a range step, or nil.
func (s *FilterStep) SelectedRange(sel Selections) *Range {
	if s.rangeSel == nil {
		return nil
	}
	return s.rangeSel(sel)
}

// Choice resolves a selection to one of the step's choices. Value and label
// both match, case-insensitively.
func (s *FilterStep) Choice(v string) (Choice, bool) {
	v = strings.TrimSpace(v)
	for _, c := range s.Choices {
		if strings.EqualFold(v, c.Value) || strings.EqualFold(v, c.Label) {
			return c, true
		}
	}
	return Choice{}, false
}

// Build returns the row predicate for sel, or nil when the step's selection
// is unset.
func (s *FilterStep) Build(sel Selections) Predicate {
	switch s.Kind {
	case StepExact:
		want := s.Selected(sel)
		if isUnset(want) {
			return nil
		}
		return func(col *Column, row int) bool {
			return !col.IsNull(row) && col.String(row) == want
		}
	case StepChoice:
		choice, ok := s.Choice(s.Selected(sel))
		if !ok {
			return nil
		}
		return func(col *Column, row int) bool {
			v, ok := col.Number(row)
			return ok && v == choice.Code
		}
	case StepRange:
		r := s.SelectedRange(sel)
		if r == nil {
			return nil
		}
		want := *r
		return func(col *Column, row int) bool {
			v, ok := col.Number(row)
			return ok && want.Contains(v)
		}
	}
	return nil
}

// Offers reports whether the selection of an exact step is one of the
// options t offers. A value no row holds any more, e.g. a first name
// excluded by an earlier step, resets to All instead of emptying the table.
// Choice and range steps always offer their selection.
func (s *FilterStep) Offers(t *Table, sel Selections) bool {
	if s.Kind != StepExact {
		return true
	}
	col, ok := t.Column(s.Column)
	if !ok {
		return false
	}
	want := s.Selected(sel)
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) && col.String(i) == want {
			return true
		}
	}
	return false
}

// Options returns the distinct non-null values of the step's column, sorted.
// Numeric columns sort by value. An empty table or absent column yields an
// empty list.
func (s *FilterStep) Options(t *Table) []string {
	col, ok := t.Column(s.Column)
	if !ok || t.Len() == 0 {
		return []string{}
	}

	type option struct {
		text string
		num  float64
	}
	seen := make(map[string]bool)
	var found []option
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v := col.String(i)
		if seen[v] {
			continue
		}
		seen[v] = true
		n, _ := col.Number(i)
		found = append(found, option{text: v, num: n})
	}

	numeric := col.Kind == KindInt || col.Kind == KindFloat
	sort.Slice(found, func(a, b int) bool {
		if numeric {
			return found[a].num < found[b].num
		}
		return found[a].text < found[b].text
	})

	opts := make([]string, len(found))
	for i, o := range found {
		opts[i] = o.text
	}
	return opts
}

// Bounds returns the observed whole-number min and max of the step's column,
// or the step's fallback when the column is absent or holds no numbers.
func (s *FilterStep) Bounds(t *Table) Range {
	fallback := Range{}
	if s.Fallback != nil {
		fallback = s.Fallback()
	}
	col, ok := t.Column(s.Column)
	if !ok {
		return fallback
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	found := false
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Number(i)
		if !ok {
			continue
		}
		found = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !found {
		return fallback
	}
	return Range{Min: math.Floor(lo), Max: math.Ceil(hi)}
}

// Apply runs every step over t and returns the narrowed table. Rows keep
// their order. With no selections the input table is returned as is.
func Apply(t *Table, sel Selections) *Table {
	if sel.IsZero() {
		return t
	}
	return applySteps(t, sel, nil)
}

// applySteps filters t step by step. visit, when set, sees each step with
// the table entering it.
func applySteps(t *Table, sel Selections, visit func(step *FilterStep, in *Table)) *Table {
	out := t
	for _, step := range Steps {
		if visit != nil {
			visit(step, out)
		}
		col, ok := out.Column(step.Column)
		if !ok {
			continue
		}
		pred := step.Build(sel)
		if pred == nil || !step.Offers(out, sel) {
			continue
		}
		out = out.Filter(func(row int) bool { return pred(col, row) })
	}
	return out
}
