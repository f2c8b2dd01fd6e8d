package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// exampleHeader and exampleRows show the layout of a supported export.
var exampleHeader = []string{
	"first_name", "last_name", "id", "last_seen", "sex", "followers_count",
	"country_title", "city_title", "byear", "can_write_private_message",
}

var exampleRows = [][]string{
	{"Pappa", "Hapa", "470000405", "01.08.2023", "1", "862", "Brazil", "São Paulo", "1993", "1"},
	{"Maria", "Silva", "470000406", "15.07.2023", "2", "1500", "Portugal", "Lisbon", "1990", "1"},
	{"John", "Doe", "470000407", "20.06.2023", "1", "320", "USA", "New York", "1985", "0"},
}

// HomePage is the upload form and the expected file structure.
func HomePage(maxFileSize int64) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(w)
		p.raw(`<section class="card"><h1>`)
		p.text(AppTitle)
		p.raw(`</h1><p>Upload a CSV file to filter, summarize and export its rows.</p>`)
		p.raw(`<form class="upload" method="post" action="/datasets" enctype="multipart/form-data">`)
		p.raw(`<label for="file">Choose a CSV file</label>`)
		p.raw(`<input id="file" type="file" name="file" required`)
		p.attr("accept", ".csv,.gz,.xz,.bz2,text/csv")
		p.raw(`><p class="hint">Maximum size `)
		p.text(formatBytes(maxFileSize))
		p.raw(`. Gzip, bzip2 and xz compressed files are accepted.</p>`)
		p.raw(`<button type="submit">Upload</button></form></section>`)

		p.raw(`<section class="card"><h2>Expected CSV Structure:</h2>`)
		p.raw(`<div class="table-wrap"><table><thead><tr>`)
		for _, h := range exampleHeader {
			p.cell("th", h)
		}
		p.raw(`</tr></thead><tbody>`)
		for _, row := range exampleRows {
			p.raw(`<tr>`)
			for _, v := range row {
				p.cell("td", v)
			}
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table></div>`)
		p.raw(`<p class="hint">Dates in <code>last_seen</code> and <code>bdate</code> use day.month.year. `,
			`Files are read as UTF-8, then Latin-1, then Windows-1252.</p></section>`)
		return p.err
	})
	return Layout(AppTitle, body)
}
