package shell

import (
	"strings"

	"github.com/piragi/knowledge-shell/internal/service"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// SidebarProps configures the sidebar view.
type SidebarProps struct {
	Sidebar service.Sidebar
	// LogoutAction is the form action for the sign-out control. Empty hides it.
	LogoutAction string
	CSRFToken    string
}

// Sidebar renders the brand header, the navigation groups in order and the
// user footer.
func Sidebar(p SidebarProps) g.Node {
	return html.Aside(
		html.Class("shell-side sidebar"),
		html.Header(
			html.Class("sidebar-header"),
			html.A(
				html.Href(service.BrandTarget),
				html.Class("brand"),
				html.Span(html.Class("brand-mark"), g.Text(brandInitial())),
				html.Span(
					html.Class("brand-text"),
					html.Span(html.Class("brand-name"), g.Text(service.BrandName)),
					html.Span(html.Class("brand-tagline"), g.Text(service.BrandTagline)),
				),
			),
		),
		html.Nav(
			html.Class("sidebar-content"),
			g.Attr("aria-label", "Main"),
			g.Map(p.Sidebar.Groups, navGroup),
		),
		userFooter(p),
	)
}

func brandInitial() string {
	return strings.ToUpper(service.BrandName[:1])
}

func navGroup(group service.SidebarGroup) g.Node {
	classes := "nav-group"
	if group.Pinned {
		classes += " nav-group-pinned"
	}
	return html.Section(
		html.Class(classes),
		html.Data("group", group.Name),
		g.If(group.Label != "", html.H2(html.Class("nav-group-label"), g.Text(group.Label))),
		html.Ul(
			html.Class("nav-list"),
			g.Map(group.Items, navItem),
		),
	)
}

func navItem(item service.SidebarItem) g.Node {
	hasChildren := len(item.Children) > 0
	return html.Li(
		html.Class("nav-item"),
		g.If(hasChildren && item.Expanded, html.Data("expanded", "true")),
		navLink(item, "nav-link"),
		g.If(hasChildren, html.Ul(
			html.Class("nav-sublist"),
			g.If(!item.Expanded, g.Attr("hidden")),
			g.Map(item.Children, func(child service.SidebarItem) g.Node {
				return html.Li(html.Class("nav-subitem"), navLink(child, "nav-sublink"))
			}),
		)),
	)
}

func navLink(item service.SidebarItem, class string) g.Node {
	if item.Current {
		class += " is-current"
	}
	return html.A(
		html.Href(item.Target),
		html.Class(class),
		g.If(item.Current, g.Attr("aria-current", "page")),
		g.If(item.Icon != "", icon(item.Icon)),
		html.Span(g.Text(item.Title)),
	)
}

func icon(name string) g.Node {
	return html.Span(
		html.Class("icon icon-"+name),
		g.Attr("aria-hidden", "true"),
	)
}

func userFooter(p SidebarProps) g.Node {
	user := p.Sidebar.User
	return html.Footer(
		html.Class("sidebar-footer"),
		html.Div(
			html.Class("user"),
			avatar(user),
			html.Div(
				html.Class("user-text"),
				html.Span(html.Class("user-name"), g.Text(user.Name)),
				g.If(user.Email != "", html.Span(html.Class("user-email"), g.Text(user.Email))),
			),
		),
		g.If(p.LogoutAction != "", html.Form(
			html.Method("post"),
			html.Action(p.LogoutAction),
			g.If(p.CSRFToken != "", html.Input(
				html.Type("hidden"),
				html.Name(CSRFFieldName),
				html.Value(p.CSRFToken),
			)),
			html.Button(html.Type("submit"), html.Class("button button-ghost"), g.Text("Sign out")),
		)),
	)
}

// CSRFFieldName is the form field carrying the CSRF token on the sign-out form.
const CSRFFieldName = "csrf_token"

func avatar(user service.SidebarUser) g.Node {
	if user.Avatar != "" {
		return html.Img(
			html.Class("avatar"),
			html.Src(user.Avatar),
			html.Alt(user.Name),
		)
	}
	return html.Span(html.Class("avatar avatar-fallback"), g.Text(initials(user.Name)))
}

// initials returns up to two uppercase initials of name.
func initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r := []rune(part)
		b.WriteString(strings.ToUpper(string(r[0])))
		if b.Len() >= 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "U"
	}
	return b.String()
}
