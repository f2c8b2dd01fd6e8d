package templates

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvfilter/internal/core"
	"github.com/a-h/templ"
)

// DatasetParams is the data rendered by DatasetPage.
type DatasetParams struct {
	View *core.View

	// Query is the encoded selection query, without "?", appended to the
	// export links so downloads match the page.
	Query string
}

// DatasetPage shows the filter form, the filtered rows, their statistics
// and the export links of one dataset.
func DatasetPage(params DatasetParams) templ.Component {
	v := params.View
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(w)
		base := "/datasets/" + v.Dataset.ID.String()

		datasetHeader(p, v)
		p.raw(`<div class="layout"><aside class="card sidebar">`)
		filterForm(p, v, base)
		p.raw(`</aside><div class="content">`)
		dataTable(p, v)
		statistics(p, v.Result.Summary)
		exportLinks(p, base, params.Query)
		p.raw(`</div></div>`)
		return p.err
	})
	return Layout(v.Dataset.FileName, body)
}

func datasetHeader(p *page, v *core.View) {
	src := v.Result.Source
	p.raw(`<section class="card"><h1>`)
	p.text(v.Dataset.FileName)
	p.raw(`</h1><p class="hint">Loaded `)
	p.text(v.Dataset.LoadedAt.Format("2006-01-02 15:04:05"))
	p.raw(` using `)
	p.text(v.Dataset.Encoding())
	p.raw(` encoding.</p><div class="metrics">`)
	metric(p, "Total Records", itoa(src.Records))
	metric(p, "Columns", itoa(src.Columns))
	if src.HasIDColumn {
		metric(p, "Unique IDs", itoa(src.UniqueIDs))
	}
	p.raw(`</div></section>`)
}

func metric(p *page, label, value string) {
	p.raw(`<div class="metric"><span class="metric-label">`)
	p.text(label)
	p.raw(`</span><span class="metric-value">`)
	p.text(value)
	p.raw(`</span></div>`)
}

func filterForm(p *page, v *core.View, base string) {
	p.raw(`<h2>Filters</h2><form class="filters" method="get"`)
	p.attr("action", base)
	p.raw(`>`)
	for _, st := range v.Result.Steps {
		if !st.Present {
			continue
		}
		switch st.Step.Kind {
		case core.StepExact:
			exactField(p, st)
		case core.StepChoice:
			choiceField(p, st)
		case core.StepRange:
			rangeField(p, st)
		}
	}

	source := v.Dataset.Source
	if source.Width() > core.WideTableColumns {
		shown := make(map[string]bool, len(v.Result.Display))
		for _, name := range v.Result.Display {
			shown[name] = true
		}
		p.raw(`<label for="cols">Columns to display</label><select id="cols" name="cols" multiple size="8">`)
		for _, name := range source.Names() {
			option(p, name, name, shown[name])
		}
		p.raw(`</select>`)
	}
	p.raw(`<button type="submit">Apply Filters</button></form>`)

	p.raw(`<form method="post"`)
	p.attr("action", base+"/clear")
	p.raw(`>`)
	if source.Width() > core.WideTableColumns {
		p.raw(`<input type="hidden" name="cols"`)
		p.attr("value", strings.Join(v.Result.Display, ","))
		p.raw(`>`)
	}
	p.raw(`<button class="secondary" type="submit">Clear All Filters</button></form>`)

	p.raw(`<form method="post"`)
	p.attr("action", base+"/delete")
	p.raw(`><button class="danger" type="submit">Close File</button></form>`)
}

func exactField(p *page, st core.StepState) {
	id := st.Step.Key
	p.raw(`<label`)
	p.attr("for", id)
	p.raw(`>`)
	p.text(st.Step.Label)
	p.raw(`</label><select`)
	p.attr("id", id)
	p.attr("name", id)
	p.raw(`>`)
	option(p, core.AllOption, core.AllOption, !st.Active)
	for _, o := range st.Options {
		option(p, o, o, st.Active && o == st.Selected)
	}
	p.raw(`</select>`)
}

func choiceField(p *page, st core.StepState) {
	id := st.Step.Key
	p.raw(`<label`)
	p.attr("for", id)
	p.raw(`>`)
	p.text(st.Step.Label)
	p.raw(`</label><select`)
	p.attr("id", id)
	p.attr("name", id)
	p.raw(`>`)
	option(p, core.AllOption, core.AllOption, !st.Active)
	for _, c := range st.Step.Choices {
		option(p, c.Value, c.Label, st.Active && c.Value == st.Selected)
	}
	p.raw(`</select>`)
}

// rangeField leaves the inputs empty until a range is selected so that
// submitting the form untouched does not drop rows with missing values.
func rangeField(p *page, st core.StepState) {
	key := st.Step.Key
	lo, hi := formatNumber(st.Bounds.Min), formatNumber(st.Bounds.Max)

	p.raw(`<fieldset class="range"><legend>`)
	p.text(st.Step.Label)
	p.raw(`</legend>`)
	for _, side := range []struct {
		suffix, label, placeholder string
		value                      float64
	}{
		{"_min", "From", lo, st.Value.Min},
		{"_max", "To", hi, st.Value.Max},
	} {
		p.raw(`<label>`)
		p.text(side.label)
		p.raw(` <input type="number" step="any"`)
		p.attr("name", key+side.suffix)
		p.attr("min", lo)
		p.attr("max", hi)
		p.attr("placeholder", side.placeholder)
		if st.Active {
			p.attr("value", formatNumber(side.value))
		}
		p.raw(`></label>`)
	}
	p.raw(`</fieldset>`)
}

func option(p *page, value, label string, selected bool) {
	p.raw(`<option`)
	p.attr("value", value)
	p.flag("selected", selected)
	p.raw(`>`)
	p.text(label)
	p.raw(`</option>`)
}

func dataTable(p *page, v *core.View) {
	res := v.Result
	p.raw(`<section class="card"><h2>Filtered Data</h2><p>Showing `)
	p.text(itoa(res.Table.Len()))
	p.raw(` of `)
	p.text(itoa(res.Source.Records))
	p.raw(` records`)
	if n := res.ActiveFilters(); n > 0 {
		p.raw(` (`)
		p.text(itoa(n))
		p.raw(` active filters)`)
	}
	p.raw(`.</p>`)

	rows := v.Rows
	if rows.Len() == 0 {
		p.raw(`<p class="empty">No records match the selected filters.</p></section>`)
		return
	}

	p.raw(`<div class="table-wrap"><table><thead><tr>`)
	for _, name := range rows.Names() {
		p.cell("th", name)
	}
	p.raw(`</tr></thead><tbody>`)
	for i := 0; i < rows.Len(); i++ {
		p.raw(`<tr>`)
		for _, cell := range rows.Row(i) {
			p.cell("td", cell)
		}
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table></div>`)
	if v.Truncated {
		p.raw(`<p class="hint">Only the first `)
		p.text(itoa(rows.Len()))
		p.raw(` rows are shown. Downloads include every filtered row.</p>`)
	}
	p.raw(`</section>`)
}

func statistics(p *page, s core.Summary) {
	p.raw(`<section class="card"><h2>Statistics</h2><div class="metrics">`)
	metric(p, "Records", itoa(s.Records))
	metric(p, "Columns", itoa(s.Columns))
	if s.HasIDColumn {
		metric(p, "Unique IDs", itoa(s.UniqueIDs))
	}
	p.raw(`</div><div class="stats">`)

	if s.HasGender {
		p.raw(`<div><h3>Gender Distribution</h3><table><tbody>`)
		for _, g := range s.Gender {
			p.raw(`<tr>`)
			p.cell("td", g.Label+" ("+g.Code+")")
			p.cell("td", itoa(g.Count))
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table></div>`)
	}

	if s.HasCountries {
		p.raw(`<div><h3>Top Countries</h3><table><tbody>`)
		for _, c := range s.TopCountries {
			p.raw(`<tr>`)
			p.cell("td", c.Value)
			p.cell("td", itoa(c.Count))
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table></div>`)
	}

	if f := s.Followers; f != nil {
		p.raw(`<div><h3>Followers</h3><div class="metrics">`)
		metric(p, "Average", core.FormatWhole(f.Mean))
		metric(p, "Maximum", core.FormatWhole(f.Max))
		metric(p, "Minimum", core.FormatWhole(f.Min))
		p.raw(`</div></div>`)
	}
	p.raw(`</div></section>`)
}

func exportLinks(p *page, base, query string) {
	p.raw(`<section class="card"><h2>Export</h2><div class="exports">`)
	for _, f := range core.Formats {
		href := base + "/export/" + string(f)
		if query != "" {
			href += "?" + query
		}
		p.raw(`<a class="button" download`)
		p.attr("href", href)
		p.raw(`>`)
		p.text(f.Label())
		p.raw(`</a>`)
	}
	p.raw(`</div></section>`)
}

func formatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
