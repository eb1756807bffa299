// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestFormatFileLine(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		info FileInfo
		want string
	}{
		{
			name: "modified_file",
			info: FileInfo{Path: "index.html", Status: StatusModified, Applied: 3, Skipped: 1},
			want: "    ✓ index.html" + strings.Repeat(" ", 35) + " modified   applied=3 skipped=1 failed=0",
		},
		{
			name: "failed_patch_marks_line",
			info: FileInfo{Path: "a.js", Status: StatusModified, Applied: 1, Failed: 1},
			want: "    ✗ a.js" + strings.Repeat(" ", 41) + " modified   applied=1 skipped=0 failed=1",
		},
		{
			name: "missing_file",
			info: FileInfo{Path: "b.js", Status: StatusMissing, Skipped: 2},
			want: "    ? b.js" + strings.Repeat(" ", 41) + " missing    applied=0 skipped=2 failed=0",
		},
		{
			name: "preview_file",
			info: FileInfo{Path: "c.js", Status: StatusPreview, Applied: 1},
			want: "    ~ c.js" + strings.Repeat(" ", 41) + " preview    applied=1 skipped=0 failed=0",
		},
		{
			name: "error_appended",
			info: FileInfo{Path: "d.js", Status: StatusUnchanged, Error: errors.New("permission denied")},
			want: "    ✗ d.js" + strings.Repeat(" ", 41) + " unchanged  applied=0 skipped=0 failed=0 error=permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFileLine(tt.info))
		})
	}
}

func TestFormatFileTable(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	out, err := FormatFileTable([]FileInfo{
		{Path: "index.html", Status: StatusModified, Applied: 9, Backup: "index.html.20250314_092653.bak"},
		{Path: "netlify/functions/tasks_createone.js", Status: StatusMissing, Skipped: 3},
	})
	require.NoError(t, err)

	var header, indexRow, missingRow string
	for _, l := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(l, "Backup"):
			header = l
		case strings.Contains(l, "tasks_createone.js"):
			missingRow = l
		case strings.Contains(l, "index.html"):
			indexRow = l
		}
	}
	assert.Contains(t, header, "File")
	assert.Contains(t, indexRow, "modified")
	assert.Contains(t, indexRow, "index.html.20250314_092653.bak")
	assert.Contains(t, missingRow, "missing")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(missingRow), "-"), "missing backup shown as dash")
}
