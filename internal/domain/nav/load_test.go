package nav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestDefault_Shape(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	assert.Equal(t, SupportedVersion, m.Version())

	groups := m.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, "home", groups[0].Name)
	assert.Equal(t, "Home", groups[0].Label)
	assert.Equal(t, []string{"Dashboard"}, titles(groups[0].Items))

	assert.Equal(t, "main", groups[1].Name)
	assert.Equal(t, []string{"Chat", "Knowledge", "Settings"}, titles(groups[1].Items))
	assert.True(t, groups[1].Items[0].IsActiveHint)
	assert.Equal(t, []string{"Dashboard", "Documents", "Graph", "Search"}, titles(groups[1].Items[1].Children))
	assert.Equal(t, []string{"General", "Embeddings", "Chunking", "Stores"}, titles(groups[1].Items[2].Children))

	assert.Equal(t, "secondary", groups[2].Name)
	assert.True(t, groups[2].Pinned)
	assert.Equal(t, []string{"Documentation", "Support", "Feedback"}, titles(groups[2].Items))
	assert.False(t, groups[2].Items[1].Navigable())
}

func TestGroups_ReturnsCopies(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	groups := m.Groups()
	groups[1].Items[1].Children[0].Title = "mutated"
	groups[0].Items = nil

	again := m.Groups()
	assert.Equal(t, "Dashboard", again[1].Items[1].Children[0].Title)
	assert.Len(t, again[0].Items, 1)
}

func TestTrail(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	tests := []struct {
		path string
		want []string
		ok   bool
	}{
		{"/", []string{"Dashboard"}, true},
		{"/chat", []string{"Chat"}, true},
		{"/knowledge", []string{"Knowledge", "Dashboard"}, true},
		{"/knowledge/graph", []string{"Knowledge", "Graph"}, true},
		{"/knowledge/settings/stores", []string{"Settings", "Stores"}, true},
		{"/docs", []string{"Documentation"}, true},
		{"#", nil, false},
		{"/nope", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := m.Trail(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargets(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	targets := m.Targets()
	assert.Equal(t, "/", targets[0])
	assert.Contains(t, targets, "/knowledge/settings/chunking")
	assert.NotContains(t, targets, "#")
	assert.Len(t, targets, 11)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"bad version", "version: 2\ngroups:\n  - name: a\n    items:\n      - {title: A, target: /}\n", "unsupported version"},
		{"no groups", "version: 1\ngroups: []\n", "at least one group"},
		{"missing title", "version: 1\ngroups:\n  - name: a\n    items:\n      - {target: /}\n", "title is required"},
		{"missing target", "version: 1\ngroups:\n  - name: a\n    items:\n      - {title: A}\n", "target is required"},
		{"duplicate group", "version: 1\ngroups:\n  - name: a\n    items: [{title: A, target: /}]\n  - name: a\n    items: [{title: B, target: /b}]\n", "duplicate group name"},
		{"pinned not last", "version: 1\ngroups:\n  - name: a\n    pinned: true\n    items: [{title: A, target: /}]\n  - name: b\n    items: [{title: B, target: /b}]\n", "pinned group must be last"},
		{"no pinned group", "version: 1\ngroups:\n  - name: a\n    items: [{title: A, target: /}]\n", "exactly one group must be pinned"},
		{"two pinned groups", "version: 1\ngroups:\n  - name: a\n    pinned: true\n    items: [{title: A, target: /}]\n  - name: b\n    pinned: true\n    items: [{title: B, target: /b}]\n", "at most one group may be pinned"},
		{"too deep", "version: 1\ngroups:\n  - name: a\n    items:\n      - title: A\n        target: /a\n        children:\n          - title: B\n            target: /b\n            children:\n              - {title: C, target: /c}\n", "nesting deeper"},
		{"not yaml", "version: [", "parse navigation config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParse_ValidationErrorsWrapSentinel(t *testing.T) {
	_, err := Parse([]byte("version: 1\ngroups: []\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadOrDefault(t *testing.T) {
	m, err := LoadOrDefault("  ")
	require.NoError(t, err)
	assert.Len(t, m.Groups(), 3)

	dir := t.TempDir()
	path := filepath.Join(dir, "nav.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\ngroups:\n  - name: only\n    pinned: true\n    items: [{title: Home, target: /}]\n"), 0o600))

	custom, err := LoadOrDefault(path)
	require.NoError(t, err)
	require.Len(t, custom.Groups(), 1)
	assert.Equal(t, "only", custom.Groups()[0].Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	data, err := Marshal(m)
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, m.Groups(), again.Groups())
}
