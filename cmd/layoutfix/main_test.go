package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/cospatch/pkg/layout"
)

const page = "<html><head><style>\nbody { margin: 0; }\n</style></head><body>\n<main></main>\n</body></html>\n"

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		content    string // written to index.html when not empty
		args       func(dir string) []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "success",
			content:    page,
			args:       func(dir string) []string { return []string{filepath.Join(dir, "index.html"), "--out", filepath.Join(dir, "out.html")} },
			wantCode:   0,
			wantStdout: "Patched file written:\n  ",
		},
		{
			name:       "missing_input",
			args:       func(dir string) []string { return []string{filepath.Join(dir, "nope.html")} },
			wantCode:   2,
			wantStderr: "ERROR: file not found: ",
		},
		{
			name:       "no_arguments",
			args:       func(dir string) []string { return []string{} },
			wantCode:   2,
			wantStderr: "ERROR: accepts 1 arg(s), received 0",
		},
		{
			name:       "unknown_flag",
			content:    page,
			args:       func(dir string) []string { return []string{filepath.Join(dir, "index.html"), "--bogus"} },
			wantCode:   2,
			wantStderr: "ERROR: unknown flag: --bogus",
		},
		{
			name:       "no_style_block",
			content:    "<html><body></body></html>",
			args:       func(dir string) []string { return []string{filepath.Join(dir, "index.html"), "--out", filepath.Join(dir, "out.html")} },
			wantCode:   1,
			wantStderr: "no </style> tag found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(tt.content), 0o644))
			}

			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			code := run(context.Background(), tt.args(dir), stdout, stderr)

			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr.String())
			assert.Contains(t, stdout.String(), tt.wantStdout)
			assert.Contains(t, stderr.String(), tt.wantStderr)

			if tt.wantCode != 0 {
				assert.NoFileExists(t, filepath.Join(dir, "out.html"))
			}
		})
	}
}

func TestRunTwice(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "index.html")
	first := filepath.Join(dir, "first.html")
	second := filepath.Join(dir, "second.html")
	require.NoError(t, os.WriteFile(in, []byte(page), 0o644))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{in, "--out", first}, &stdout, &stderr), stderr.String())
	require.Equal(t, 0, run(context.Background(), []string{first, "--out", second}, &stdout, &stderr), stderr.String())

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Equal(t, 1, strings.Count(string(b), layout.JSEnd))
}

func TestRunDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "app.html")
	require.NoError(t, os.WriteFile(in, []byte(page), 0o644))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{in}, &stdout, &stderr), stderr.String())

	matches, err := filepath.Glob(filepath.Join(dir, "app.fixed.*.html"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, stdout.String(), matches[0])
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "plain.html", expandHome("plain.html"))
	assert.Equal(t, "", expandHome(""))
	assert.Equal(t, filepath.Join(home, "site", "index.html"), expandHome("~/site/index.html"))
}
