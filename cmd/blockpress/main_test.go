package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const sampleDoc = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Go basics"}]},
	{"type":"paragraph","content":[{"type":"text","text":"Learning Go is fun."}]}
]}`

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "blockpress dev\n", out)
}

func TestRenderFromStdin(t *testing.T) {
	out, err := run(t, sampleDoc, "render")
	require.NoError(t, err)
	assert.Equal(t, `<h2 id="go-basics">Go basics</h2><p>Learning Go is fun.</p>`+"\n", out)
}

func TestRenderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o600))
	out, err := run(t, "", "render", path)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Learning Go is fun.</p>")

	_, err = run(t, "", "render", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	out, err := run(t, sampleDoc, "score", "--title", "Go basics for beginners", "--keyword", "go")
	require.NoError(t, err)
	assert.Contains(t, out, "focus-keyword-in-title")
	assert.Contains(t, out, "overall: ")
}

func TestMaintenanceCommands(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "blockpress.yaml")
	require.NoError(t, os.WriteFile(config, []byte(
		"admin_password: pw\n"+
			"session_secret: s\n"+
			"database_path: "+filepath.Join(dir, "blog.db")+"\n"+
			"search_index_path: "+filepath.Join(dir, "search.bleve")+"\n"+
			"log:\n  level: error\n  console:\n    enabled: true\n"), 0o600))

	out, err := run(t, "", "migrate", "-c", config)
	require.NoError(t, err)
	assert.Contains(t, out, "database ready")

	out, err = run(t, "", "seed", "-c", config)
	require.NoError(t, err)
	assert.Contains(t, out, `created post "Welcome to blockpress"`)

	out, err = run(t, "", "reindex", "-c", config)
	require.NoError(t, err)
	assert.Equal(t, "indexed 1 posts\n", out)

	out, err = run(t, "", "health", "-c", config)
	require.NoError(t, err)
	assert.Contains(t, out, "1 documents")
	assert.Contains(t, out, "All checks passed!")
}

func TestUnknownConfigKey(t *testing.T) {
	config := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(config, []byte("nonsense: true\n"), 0o600))
	_, err := run(t, "", "migrate", "-c", config)
	assert.Error(t, err)
}
