package core

// pipeline.go is the pure entry point used by every transport:
//
//	Run(source, selections, display) -> filtered table, per-step UI state,
//	                                    summary, display columns
//
// Nothing here is cached. Every call recomputes from the immutable source.

// StepState describes one filter step as seen by the table entering it.
type StepState struct {
	Step *FilterStep

	// Present is false when the step's column is missing; the UI hides it.
	Present bool

	// Active is true when the selection narrowed (or could narrow) the rows.
	Active bool

	// Selected is the current value of an exact or choice step.
	Selected string

	// Options lists the values offered by an exact step.
	Options []string

	// Bounds are the observed or fallback bounds of a range step, and Value
	// is the selected range clamped to them.
	Bounds Range
	Value  Range
}

// Result is the output of one pipeline run.
type Result struct {
	Source  Overview
	Table   *Table
	Steps   []StepState
	Summary Summary
	Display []string
}

// Run applies sel to source and derives everything the presentation layer
// shows. display is the user's column choice for wide tables.
func Run(source *Table, sel Selections, display []string) *Result {
	res := &Result{Source: Describe(source)}

	res.Table = applySteps(source, sel, func(step *FilterStep, in *Table) {
		res.Steps = append(res.Steps, stepState(step, in, sel))
	})
	res.Summary = Summarize(res.Table)
	res.Display = DisplayColumns(res.Table, display)
	return res
}

func stepState(step *FilterStep, in *Table, sel Selections) StepState {
	st := StepState{Step: step, Present: in.Has(step.Column)}
	if !st.Present {
		return st
	}

	switch step.Kind {
	case StepExact:
		st.Selected = AllOption
		if want := step.Selected(sel); !isUnset(want) && step.Offers(in, sel) {
			st.Selected = want
			st.Active = true
		}
		st.Options = step.Options(in)
		// City is only offered while there are rows to choose from.
		if step.Column == ColCity && in.Len() == 0 {
			st.Present = false
		}
	case StepChoice:
		st.Selected = AllOption
		if c, ok := step.Choice(step.Selected(sel)); ok {
			st.Selected = c.Value
			st.Active = true
		}
	case StepRange:
		st.Bounds = step.Bounds(in)
		st.Value = st.Bounds
		if r := step.SelectedRange(sel); r != nil {
			st.Value = r.Clamp(st.Bounds)
			st.Active = true
		}
	}
	return st
}

// ActiveFilters counts the steps whose selection is in effect.
func (r *Result) ActiveFilters() int {
	n := 0
	for _, st := range r.Steps {
		if st.Present && st.Active {
			n++
		}
	}
	return n
}

// DisplayColumns picks the columns shown for t. Tables up to
// WideTableColumns wide show everything. Wider tables show the chosen
// columns in table order, defaulting to DefaultDisplayColumns; a choice that
// matches nothing shows everything.
func DisplayColumns(t *Table, chosen []string) []string {
	if t.Width() <= WideTableColumns {
		return t.Names()
	}
	if len(chosen) == 0 {
		chosen = DefaultDisplayColumns
	}
	cols := t.Select(chosen).Names()
	if len(cols) == 0 {
		return t.Names()
	}
	return cols
}
