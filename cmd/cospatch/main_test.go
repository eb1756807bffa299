package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/cospatch/cmd/cospatch/opts"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd(&opts.RootOpts{})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "🚀 cospatch version info:")
	assert.Contains(t, out.String(), "Go:")
}

func TestFormatVersion(t *testing.T) {
	got := FormatVersion(&VersionInfo{
		Version:   "v1.2.3",
		GoVersion: "go1.23.5",
		Platform:  "linux/amd64",
		Revision:  "abc123",
		Time:      "2025-03-14T09:26:53Z",
		Modified:  true,
	})

	assert.Contains(t, got, "Version:   v1.2.3\n")
	assert.Contains(t, got, "Revision:  abc123 (modified)\n")
	assert.Contains(t, got, "Platform:  linux/amd64\n")
}

func TestRootFlags(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("const limit = 10;\n"), 0o644))
	patches := filepath.Join(t.TempDir(), "demo.hcl")
	require.NoError(t, os.WriteFile(patches, []byte(`
name = "demo"

target "app.js" {
  patch "LIMIT" {
    search  = "const limit = 10;"
    replace = "const limit = 50;"
  }
}
`), 0o644))

	o := &opts.RootOpts{}
	cmd := newRootCmd(o)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--debug", "--patches", patches, "apply", "--dir", dir, "--no-pause"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.True(t, o.Debug)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	data, err := os.ReadFile(filepath.Join(dir, "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "const limit = 50;\n", string(data))
}
