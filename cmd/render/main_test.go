package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "title": "Child health",
  "chapters": [{
    "title": "Immunisation",
    "pages": [{"items": [
      {"type": "heading1", "text": "Schedule"},
      {"type": "table", "table": {"header": [[{"text": "Age"}]], "rows": [[{"text": "Birth"}]]}},
      {"type": "hologram"}
    ]}]
  }]
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHTML(t *testing.T) {
	out, err := run(t, "html", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "Schedule")
	assert.Contains(t, out, `data-items-per-page="5"`)
	assert.Contains(t, out, "Unsupported content type: hologram")
}

func TestHTMLToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.html")
	_, err := run(t, "html", writeSample(t), "-o", target)
	require.NoError(t, err)
	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Immunisation")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, `0/-1/-1/0 item 2: unsupported type "hologram"`)
	assert.Contains(t, out, "1 pages, 1 unsupported items")
}

func TestMissingFile(t *testing.T) {
	_, err := run(t, "html", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
