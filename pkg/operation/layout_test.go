package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/cospatch/pkg/layout"
)

const page = "<html><head><style>\nbody { margin: 0; }\n</style></head><body>\n<main></main>\n</body></html>\n"

func TestDefaultOutputPath(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		input string
		want  string
	}{
		{"/srv/app/index.html", "/srv/app/index.fixed.20250314-092653.html"},
		{"/srv/app/page.v2.htm", "/srv/app/page.v2.fixed.20250314-092653.htm"},
		{"/srv/app/noext", "/srv/app/noext.fixed.20250314-092653"},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultOutputPath(tt.input, at))
		})
	}
}

func TestLayoutOperation(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	dir := t.TempDir()
	in := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(in, []byte(page), 0o644))

	op := NewLayoutOperation(LayoutOptions{Input: in, Clock: fixedClock})
	require.NoError(t, op.Execute(ctx))

	want := filepath.Join(dir, "index.fixed.20250314-092653.html")
	assert.Equal(t, want, op.Written())

	out, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(out), layout.CSSBegin))
	assert.Equal(t, 1, strings.Count(string(out), layout.JSBegin))

	original, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, page, string(original), "input must never be modified")

	// running on its own output gives the same bytes
	again := filepath.Join(dir, "again.html")
	require.NoError(t, NewLayoutOperation(LayoutOptions{Input: want, Output: again}).Execute(ctx))
	second, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(second))
}

func TestLayoutOperationErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		input   func(dir string) string
		wantErr error
	}{
		{
			name:    "missing_input",
			input:   func(dir string) string { return filepath.Join(dir, "nope.html") },
			wantErr: ErrInputNotFound,
		},
		{
			name:    "input_is_directory",
			input:   func(dir string) string { return dir },
			wantErr: ErrInputNotFound,
		},
		{
			name:    "no_style_close",
			content: "<html><body></body></html>",
			wantErr: layout.ErrNoStyleClose,
		},
		{
			name:    "no_body_close",
			content: "<html><style></style></html>",
			wantErr: layout.ErrNoBodyClose,
		},
		{
			name:    "no_html_close",
			content: "<style></style><body></body>",
			wantErr: layout.ErrIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "index.html")
			if tt.input != nil {
				in = tt.input(dir)
			} else {
				require.NoError(t, os.WriteFile(in, []byte(tt.content), 0o644))
			}
			out := filepath.Join(dir, "out.html")

			op := NewLayoutOperation(LayoutOptions{Input: in, Output: out})
			err := op.Execute(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoFileExists(t, out, "nothing is written on failure")
			assert.Empty(t, op.Written())
		})
	}
}
