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

package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		patch      Patch
		want       string
		wantStatus Status
		wantMethod Method
		wantError  string
	}{
		{
			name:    "replace_exact",
			content: "function f() {\n return 1;\n}",
			patch: Patch{
				ID:      "f",
				Search:  "function f() {\n return 1;\n}",
				Replace: "function f() {\n return 2;\n}",
				Mode:    ModeReplace,
			},
			want:       "function f() {\n return 2;\n}",
			wantStatus: StatusApplied,
			wantMethod: MethodExact,
		},
		{
			name:    "replace_leaves_surroundings_untouched",
			content: "head\n    if (a) {\n        run();\n    }\ntail",
			patch: Patch{
				ID:      "cond",
				Search:  "if (a) {\n    run();\n}",
				Replace: "if (b) {\n    run();\n}",
			},
			want:       "head\n    if (b) {\n    run();\n}\ntail",
			wantStatus: StatusApplied,
			wantMethod: MethodLineStripped,
		},
		{
			name:    "replace_reindented",
			content: "head\n    if (a) {\n        run();\n    }\ntail",
			patch: Patch{
				ID:       "cond",
				Search:   "if (a) {\n    run();\n}",
				Replace:  "if (b) {\n    run();\n}",
				Reindent: true,
			},
			want:       "head\n    if (b) {\n        run();\n    }\ntail",
			wantStatus: StatusApplied,
			wantMethod: MethodLineStripped,
		},
		{
			name:    "remove_and_replace_alias",
			content: "a\nold\nb",
			patch: Patch{
				ID:      "alias",
				Search:  "old",
				Replace: "new",
				Mode:    "remove_and_replace",
			},
			want:       "a\nnew\nb",
			wantStatus: StatusApplied,
			wantMethod: MethodExact,
		},
		{
			name:    "insert_after",
			content: "a\nanchor\nb",
			patch: Patch{
				ID:      "after",
				Search:  "anchor",
				Replace: "added",
				Mode:    ModeInsertAfter,
			},
			want:       "a\nanchor\nadded\nb",
			wantStatus: StatusApplied,
			wantMethod: MethodExact,
		},
		{
			name:    "insert_before",
			content: "a\nanchor\nb",
			patch: Patch{
				ID:      "before",
				Search:  "anchor",
				Replace: "added",
				Mode:    ModeInsertBefore,
			},
			want:       "a\nadded\nanchor\nb",
			wantStatus: StatusApplied,
			wantMethod: MethodExact,
		},
		{
			name:    "insert_before_keeps_indentation",
			content: "{\n    anchor();\n}",
			patch: Patch{
				ID:      "before",
				Search:  "anchor();",
				Replace: "added();",
				Mode:    ModeInsertBefore,
			},
			want:       "{\n    added();\n    anchor();\n}",
			wantStatus: StatusApplied,
			wantMethod: MethodExact,
		},
		{
			name:    "insert_after_keeps_indentation",
			content: "{\n    anchor();\n}",
			patch: Patch{
				ID:      "after",
				Search:  "anchor();",
				Replace: "added();",
				Mode:    ModeInsertAfter,
			},
			want:       "{\n    anchor();\n    added();\n}",
			wantStatus: StatusApplied,
			wantMethod: MethodExact,
		},
		{
			name:    "already_applied",
			content: "function f() {\n return 2;\n}",
			patch: Patch{
				ID:      "f",
				Search:  "function f() {\n return 1;\n}",
				Replace: "function f() {\n return 2;\n}",
			},
			want:       "function f() {\n return 2;\n}",
			wantStatus: StatusAlreadyApplied,
		},
		{
			name:    "not_found",
			content: "nothing to see here",
			patch: Patch{
				ID:      "missing",
				Search:  "function g() {\n return 3;\n}",
				Replace: "function g() {\n return 4;\n}",
			},
			want:       "nothing to see here",
			wantStatus: StatusNotFound,
		},
		{
			name:    "invalid_mode",
			content: "anchor",
			patch: Patch{
				ID:      "bad",
				Search:  "anchor",
				Replace: "x",
				Mode:    "sideways",
			},
			want:      "anchor",
			wantError: `patch bad: unknown patch mode "sideways"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, res, err := Apply(tt.content, tt.patch)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				assert.Equal(t, tt.want, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "content")
			assert.Equal(t, tt.wantStatus, res.Status, "status")
			if tt.wantStatus == StatusApplied {
				assert.Equal(t, tt.wantMethod, res.Match.Method, "method")
				assert.Equal(t, tt.content[res.Match.Start:res.Match.End], res.MatchedText)
			}
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	patches := []Patch{
		{ID: "replace", Search: "const a = 1;", Replace: "const a = 2;\nconst b = 3;"},
		{ID: "before", Search: "run();", Replace: "setup();\nprepare();", Mode: ModeInsertBefore},
		{ID: "after", Search: "run();", Replace: "teardown();\nreport();", Mode: ModeInsertAfter},
	}
	content := "function main() {\n    const a = 1;\n    run();\n}\n"

	first := content
	for _, p := range patches {
		var err error
		first, _, err = Apply(first, p)
		require.NoError(t, err)
	}
	require.NotEqual(t, content, first)

	second := first
	for _, p := range patches {
		var res Result
		var err error
		second, res, err = Apply(second, p)
		require.NoError(t, err)
		assert.Equal(t, StatusAlreadyApplied, res.Status, "patch %s", p.ID)
	}
	assert.Equal(t, first, second)
}

func TestAlreadyApplied(t *testing.T) {
	p := Patch{
		Search:  "keep();",
		Replace: "keep();\none();\ntwo();\nthree();\nfour();",
	}

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "none_present", content: "keep();", want: false},
		{name: "one_of_three", content: "keep();\none();", want: false},
		{name: "two_of_three", content: "keep();\none();\nthree();", want: true},
		{name: "only_fourth_present", content: "keep();\nfour();", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := AlreadyApplied(tt.content, p)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no_unique_lines", func(t *testing.T) {
		_, got := AlreadyApplied("a\nb", Patch{Search: "a\nb", Replace: "a"})
		assert.False(t, got)
	})

	t.Run("single_unique_line", func(t *testing.T) {
		evidence, got := AlreadyApplied("// shared helper", Patch{Search: "func x() {}", Replace: "// shared helper"})
		assert.True(t, got)
		assert.Equal(t, []string{"// shared helper"}, evidence)
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeReplace},
		{in: "replace", want: ModeReplace},
		{in: "REPLACE", want: ModeReplace},
		{in: "remove_and_replace", want: ModeReplace},
		{in: "insert_before", want: ModeInsertBefore},
		{in: " insert_after ", want: ModeInsertAfter},
		{in: "append", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "applied", StatusApplied.String())
	assert.Equal(t, "already-applied", StatusAlreadyApplied.String())
	assert.Equal(t, "not-found", StatusNotFound.String())
}
