package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/lekha/history"
	"github.com/sonnes/lekha/layout"
	"github.com/sonnes/lekha/render"
	htmlrender "github.com/sonnes/lekha/render/html"
	"github.com/sonnes/lekha/render/markdown"
)

func TestFormatExtension(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"html", ".html"},
		{"markdown", ".md"},
		{"json", ".json"},
		{"txt", ".txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ext, formatExtension(tt.format))
	}
}

func TestExportAllHTML(t *testing.T) {
	root := filepath.Join(t.TempDir(), "projects")
	require.NoError(t, os.MkdirAll(root, 0o755))
	writeFixtureSession(t, root, "-work-app", "sess-1.jsonl", "/work/app", "exported answer", 2)

	s := history.NewStore(
		layout.Layout{CLI: layout.CLIClaude, Kind: layout.ProjectsDir, Root: root},
		history.Options{Workers: 2})
	a := &app{renderers: map[string]func() render.Renderer{
		"html": func() render.Renderer { return htmlrender.New() },
	}}

	dir := t.TempDir()
	require.NoError(t, a.exportAll(context.Background(), s, "claude", dir, "html", nil))

	page, err := os.ReadFile(filepath.Join(dir, "sess-1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "exported answer")

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "sess-1.html", "index links the static page")
}

func TestExportOneMarkdown(t *testing.T) {
	root := filepath.Join(t.TempDir(), "projects")
	require.NoError(t, os.MkdirAll(root, 0o755))
	writeFixtureSession(t, root, "-work-app", "sess-1.jsonl", "/work/app", "exported answer", 2)

	s := history.NewStore(
		layout.Layout{CLI: layout.CLIClaude, Kind: layout.ProjectsDir, Root: root},
		history.Options{Workers: 2})
	a := &app{renderers: map[string]func() render.Renderer{
		"markdown": func() render.Renderer { return markdown.New() },
	}}

	dir := t.TempDir()
	require.NoError(t, a.exportOne(context.Background(), s, "sess-1", dir, "markdown", nil))

	page, err := os.ReadFile(filepath.Join(dir, "sess-1.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "exported answer")
}
