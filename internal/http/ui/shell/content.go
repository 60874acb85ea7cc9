package shell

import (
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// DashboardPath is the route that renders the dashboard cards.
const DashboardPath = "/"

// ContentProps configures the titled content frame.
type ContentProps struct {
	Path string
	// Trail is the breadcrumb, outermost first. The last entry is the heading.
	Trail []string
}

type dashboardCard struct {
	title, target, icon, blurb string
}

var dashboardCards = []dashboardCard{
	{"Chat", "/chat", "message-square", "Start a conversation with your knowledge base"},
	{"Documents", "/knowledge/documents", "file-text", "Manage your knowledge base documents"},
	{"Graph", "/knowledge/graph", "network", "Explore entities & relationships"},
	{"Knowledge", "/knowledge", "brain", "Full knowledge management"},
}

var quickStats = []string{"Documents", "Entities", "Relationships"}

// ContentFrame renders the page header with its breadcrumb and heading. The
// dashboard route also renders its overview cards.
func ContentFrame(p ContentProps) g.Node {
	trail := p.Trail
	if len(trail) == 0 {
		trail = []string{"Dashboard"}
	}
	heading := trail[len(trail)-1]

	return g.Group{
		html.Header(
			html.Class("content-header"),
			html.Nav(
				html.Class("breadcrumb"),
				g.Attr("aria-label", "Breadcrumb"),
				html.Ol(g.Map(indexed(trail), func(c crumb) g.Node {
					last := c.index == len(trail)-1
					return html.Li(
						html.Class("breadcrumb-item"),
						g.If(last, g.Attr("aria-current", "page")),
						g.Text(c.title),
					)
				})),
			),
		),
		html.Section(
			html.Class("content"),
			html.H1(html.Class("content-title"), g.Text(heading)),
			g.If(p.Path == DashboardPath, dashboard()),
		),
	}
}

type crumb struct {
	index int
	title string
}

func indexed(titles []string) []crumb {
	out := make([]crumb, len(titles))
	for i, t := range titles {
		out[i] = crumb{index: i, title: t}
	}
	return out
}

func dashboard() g.Node {
	return g.Group{
		html.Div(
			html.Class("card-grid card-grid-4"),
			g.Map(dashboardCards, func(c dashboardCard) g.Node {
				return html.A(
					html.Href(c.target),
					html.Class("card card-link"),
					html.Div(
						html.Class("card-header"),
						html.H3(html.Class("card-title"), g.Text(c.title)),
						icon(c.icon),
					),
					html.P(html.Class("card-body muted"), g.Text(c.blurb)),
				)
			}),
		),
		html.Div(
			html.Class("card-grid card-grid-2"),
			html.Div(
				html.Class("card"),
				html.H3(html.Class("card-title"), g.Text("Recent Activity")),
				html.P(html.Class("card-body muted"), g.Text("No recent activity")),
			),
			html.Div(
				html.Class("card"),
				html.H3(html.Class("card-title"), g.Text("Quick Stats")),
				html.Dl(
					html.Class("card-body stats"),
					g.Map(quickStats, func(label string) g.Node {
						return html.Div(
							html.Class("stat"),
							html.Dt(html.Class("muted"), g.Text(label)),
							html.Dd(g.Text("--")),
						)
					}),
				),
			),
		),
	}
}

// NotFound is the body of the 404 page.
func NotFound(path string) g.Node {
	return html.Div(
		html.Class("not-found"),
		html.H1(g.Text("Page not found")),
		html.P(html.Class("muted"), g.Textf("Nothing lives at %s.", path)),
		html.A(html.Href(DashboardPath), html.Class("button"), g.Text("Back to dashboard")),
	)
}
