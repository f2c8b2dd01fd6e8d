package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// AppTitle is shown in the header of every page.
const AppTitle = "CSV Filter Application"

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(w)
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw("<title>")
		if title != "" && title != AppTitle {
			p.text(title)
			p.raw(" - ")
		}
		p.text(AppTitle)
		p.raw("</title>")
		p.raw(`<link rel="stylesheet" href="/static/app.css"></head><body>`)
		p.raw(`<header class="topbar"><a class="brand" href="/">`)
		p.text(AppTitle)
		p.raw(`</a></header><main class="container">`)
		p.component(ctx, body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(w)
		p.raw(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		p.text(message)
		p.raw(`</p>`)
		if action != "" {
			p.raw(`<p class="alert-action">`)
			p.text(action)
			p.raw(`</p>`)
		}
		if code != "" {
			p.raw(`<p class="alert-code">Error code: <code>`)
			p.text(code)
			p.raw(`</code></p>`)
		}
		p.raw(`</div>`)
		return p.err
	})
}

// ErrorPage is a full page around ErrorAlert. detail is the underlying
// parser or decoder message, shown below the alert when set.
func ErrorPage(status int, message, action, code, detail string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(w)
		p.raw(`<section class="card"><h1>`)
		p.text(itoa(status))
		p.raw(`</h1>`)
		p.component(ctx, ErrorAlert(message, action, code))
		if detail != "" {
			p.raw(`<pre class="detail">`)
			p.text(detail)
			p.raw(`</pre>`)
		}
		p.raw(`<p><a class="button" href="/">Upload another file</a></p></section>`)
		return p.err
	})
	return Layout("Error", body)
}
