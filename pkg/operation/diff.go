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

package operation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// previewContext is how many unchanged lines are kept around each change
const previewContext = 2

// 🔍 Preview renders a line diff of before and after. Removed lines start
// with "- ", added lines with "+ " and unchanged context with two spaces.
// Long unchanged runs are elided.
func Preview(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(a, b, false), lines)

	var sb strings.Builder
	write := func(prefix string, chunk []string) {
		for _, line := range chunk {
			sb.WriteString(prefix + line + "\n")
		}
	}

	for i, d := range diffs {
		chunk := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			write("- ", chunk)
		case diffmatchpatch.DiffInsert:
			write("+ ", chunk)
		default:
			head, tail := previewContext, previewContext
			if i == 0 {
				head = 0
			}
			if i == len(diffs)-1 {
				tail = 0
			}
			if len(chunk) <= head+tail {
				write("  ", chunk)
				continue
			}
			write("  ", chunk[:head])
			sb.WriteString("  ...\n")
			write("  ", chunk[len(chunk)-tail:])
		}
	}

	return sb.String()
}
