// Package shell renders the application shell: the page layout, the structural
// placeholder shown while the session gate is pending, the sidebar, the content
// frame and the error boundary.
//
// Every function here is a pure function of its arguments and returns a
// gomponents node; handlers decide which node to write.
package shell

import (
	"net/url"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Element ids and routes shared by the page and its fragments.
const (
	RootID        = "shell"
	FragmentRoute = "/shell/fragment"
	StylesheetURL = "/static/css/shell.css"
	HTMXScriptURL = "https://unpkg.com/htmx.org@2.0.4"
)

// FragmentURL returns the gated fragment URL for a page path.
func FragmentURL(path string) string {
	return FragmentRoute + "?" + url.Values{"path": {path}}.Encode()
}

// PageProps configures the full document.
type PageProps struct {
	Title string
	Body  g.Node
}

// Page renders the full HTML document around body.
func Page(p PageProps) g.Node {
	title := "Piragi"
	if p.Title != "" {
		title = p.Title + " · Piragi"
	}
	return html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(g.Text(title)),
				html.Link(html.Rel("stylesheet"), html.Href(StylesheetURL)),
				html.Script(html.Src(HTMXScriptURL), html.Defer()),
			),
			html.Body(
				html.Class("app"),
				p.Body,
			),
		),
	)
}

// Placeholder is the structural loading view: a fixed-width side region and a
// main region. On load it requests the gated fragment for path and swaps
// itself out in a single outerHTML swap.
func Placeholder(path string) g.Node {
	return html.Div(
		html.ID(RootID),
		html.Class("shell shell-placeholder"),
		g.Attr("aria-busy", "true"),
		g.Attr("hx-get", FragmentURL(path)),
		g.Attr("hx-trigger", "load"),
		g.Attr("hx-swap", "outerHTML"),
		html.Div(
			html.Class("shell-side"),
			skeleton("skeleton-title"),
			skeleton("skeleton-line"),
			skeleton("skeleton-line"),
			skeleton("skeleton-line"),
		),
		html.Div(
			html.Class("shell-main"),
			skeleton("skeleton-heading"),
			skeleton("skeleton-block"),
		),
	)
}

func skeleton(class string) g.Node {
	return html.Div(html.Class("skeleton " + class))
}

// Authenticated renders the sidebar beside the page content, replacing the placeholder.
func Authenticated(sidebar, content g.Node) g.Node {
	return html.Div(
		html.ID(RootID),
		html.Class("shell"),
		sidebar,
		html.Main(html.Class("shell-main"), content),
	)
}
