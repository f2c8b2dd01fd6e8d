// Package templates renders the HTML pages of the web UI as templ components.
//
// Components are plain Go functions returning templ.Component. All dynamic
// text goes through templ.EscapeString.
package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// markup is HTML written without escaping. Only string constants convert
// to it implicitly, so dynamic text has to go through text or attr.
type markup string

// page accumulates markup and remembers the first write error.
type page struct {
	w   io.Writer
	err error
}

func newPage(w io.Writer) *page {
	return &page{w: w}
}

func (p *page) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// raw writes trusted markup.
func (p *page) raw(parts ...markup) {
	for _, m := range parts {
		p.write(string(m))
	}
}

// text writes escaped text.
func (p *page) text(s string) {
	p.write(templ.EscapeString(s))
}

// attr writes ` name="value"` with the value escaped.
func (p *page) attr(name markup, value string) {
	p.raw(" ", name, `="`)
	p.text(value)
	p.raw(`"`)
}

// flag writes a boolean attribute when on.
func (p *page) flag(name markup, on bool) {
	if on {
		p.raw(" ", name)
	}
}

func (p *page) component(ctx context.Context, c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

// cell writes a <td> or <th> with escaped content.
func (p *page) cell(tag markup, content string) {
	p.raw("<", tag, ">")
	p.text(content)
	p.raw("</", tag, ">")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// formatBytes renders a byte count with a binary unit, e.g. "100 MB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	s := strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + " " + string("KMGTPE"[exp]) + "B"
}
