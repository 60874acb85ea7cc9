package shell

import (
	"errors"
	"strings"
	"testing"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/domain/gate"
	"github.com/piragi/knowledge-shell/internal/domain/nav"
	"github.com/piragi/knowledge-shell/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	if n == nil {
		return ""
	}
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func bob() domainauth.Identity {
	return domainauth.Identity{UserID: "u-bob", Email: domainauth.StringPtr("bob@co.io")}
}

func composed(t *testing.T) service.Sidebar {
	t.Helper()
	model, err := nav.Default()
	require.NoError(t, err)
	return service.Compose(model, bob())
}

func TestFragmentURL(t *testing.T) {
	assert.Equal(t, "/shell/fragment?path=%2Fknowledge%2Fgraph", FragmentURL("/knowledge/graph"))
	assert.Equal(t, "/shell/fragment?path=%2F", FragmentURL("/"))
}

func TestPlaceholder(t *testing.T) {
	out := render(t, Placeholder("/chat"))

	assert.Contains(t, out, `id="shell"`)
	assert.Contains(t, out, `hx-get="/shell/fragment?path=%2Fchat"`)
	assert.Contains(t, out, `hx-trigger="load"`)
	assert.Contains(t, out, `hx-swap="outerHTML"`)
	assert.Contains(t, out, `class="shell-side"`)
	assert.Contains(t, out, `class="shell-main"`)
	assert.NotContains(t, out, "sidebar-footer")
}

func TestPage(t *testing.T) {
	out := render(t, Page(PageProps{Title: "Graph", Body: Placeholder("/knowledge/graph")}))

	assert.True(t, strings.HasPrefix(strings.ToLower(out), "<!doctype html>"))
	assert.Contains(t, out, "<title>Graph · Piragi</title>")
	assert.Contains(t, out, StylesheetURL)
	assert.Contains(t, out, "shell-placeholder")
}

func TestGate(t *testing.T) {
	children := func(id domainauth.Identity) g.Node {
		return g.Text("protected:" + domainauth.DisplayName(id))
	}
	identity := bob()

	tests := []struct {
		name        string
		state       gate.State
		contains    []string
		notContains []string
	}{
		{
			name:        "pending shows only the placeholder",
			state:       gate.PendingState(),
			contains:    []string{"shell-placeholder"},
			notContains: []string{"protected:"},
		},
		{
			name:        "authenticated shows only the children",
			state:       gate.State{Status: gate.Authenticated, Identity: &identity},
			contains:    []string{"protected:bob"},
			notContains: []string{"shell-placeholder"},
		},
		{
			name:        "failed shows the error boundary",
			state:       gate.State{Status: gate.Failed, Err: errors.New("down")},
			contains:    []string{`role="alert"`, "Try again", `hx-get="/shell/fragment?path=%2Fdocs"`},
			notContains: []string{"protected:", "shell-placeholder"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, Gate(tt.state, "/docs", children))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}

	t.Run("unauthenticated renders nothing", func(t *testing.T) {
		called := false
		n := Gate(gate.State{Status: gate.Unauthenticated}, "/", func(domainauth.Identity) g.Node {
			called = true
			return g.Text("x")
		})
		assert.Empty(t, render(t, n))
		assert.False(t, called)
	})
}

func TestSidebar(t *testing.T) {
	sb := composed(t).WithActivePath("/knowledge/graph")

	out := render(t, Sidebar(SidebarProps{Sidebar: sb, LogoutAction: "/auth/logout", CSRFToken: "tok"}))

	assert.Contains(t, out, "Piragi")
	assert.Contains(t, out, "RAG Platform")
	assert.Contains(t, out, `<span class="user-name">bob</span>`)
	assert.Contains(t, out, `<span class="user-email">bob@co.io</span>`)
	assert.Contains(t, out, `avatar-fallback">B</span>`)
	assert.Contains(t, out, `href="/knowledge/graph" class="nav-sublink is-current" aria-current="page"`)
	assert.Contains(t, out, `action="/auth/logout"`)
	assert.Contains(t, out, `value="tok"`)

	home := strings.Index(out, `data-group="home"`)
	main := strings.Index(out, `data-group="main"`)
	secondary := strings.Index(out, `data-group="secondary"`)
	require.True(t, home >= 0 && main >= 0 && secondary >= 0)
	assert.Less(t, home, main)
	assert.Less(t, main, secondary)
}

func TestSidebar_AvatarAndNoLogout(t *testing.T) {
	sb := service.Sidebar{User: service.SidebarUser{Name: "Ann Lee", Avatar: "https://img/a.png"}}

	out := render(t, Sidebar(SidebarProps{Sidebar: sb}))

	assert.Contains(t, out, `src="https://img/a.png"`)
	assert.Contains(t, out, `alt="Ann Lee"`)
	assert.NotContains(t, out, "<form")
	assert.NotContains(t, out, "user-email")
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", initials("Ann Lee"))
	assert.Equal(t, "AB", initials("ann bea cole"))
	assert.Equal(t, "U", initials(""))
	assert.Equal(t, "B", initials("bob"))
}

func TestContentFrame(t *testing.T) {
	t.Run("dashboard", func(t *testing.T) {
		out := render(t, ContentFrame(ContentProps{Path: "/", Trail: []string{"Dashboard"}}))
		assert.Contains(t, out, "<h1 class=\"content-title\">Dashboard</h1>")
		assert.Contains(t, out, `href="/knowledge/documents"`)
		assert.Contains(t, out, "Recent Activity")
		assert.Contains(t, out, "Quick Stats")
	})

	t.Run("nested page", func(t *testing.T) {
		out := render(t, ContentFrame(ContentProps{Path: "/knowledge/graph", Trail: []string{"Knowledge", "Graph"}}))
		assert.Contains(t, out, "<h1 class=\"content-title\">Graph</h1>")
		assert.Contains(t, out, `<li class="breadcrumb-item">Knowledge</li>`)
		assert.Contains(t, out, `<li class="breadcrumb-item" aria-current="page">Graph</li>`)
		assert.NotContains(t, out, "Quick Stats")
	})

	t.Run("empty trail falls back", func(t *testing.T) {
		out := render(t, ContentFrame(ContentProps{Path: "/x"}))
		assert.Contains(t, out, ">Dashboard</h1>")
	})
}

func TestSignedOut(t *testing.T) {
	out := render(t, SignedOut("/auth/login"))
	assert.Contains(t, out, `href="/auth/login"`)
	assert.Contains(t, out, "signed out")
}
