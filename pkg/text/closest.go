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
	"strings"

	"github.com/agext/levenshtein"
)

// 💡 Candidate is the content line that looks most like a search snippet
type Candidate struct {
	Line  int     // 1-based line number
	Text  string  // stripped line text
	Score float64 // similarity in [0, 1]
}

// Closest finds the content line most similar to the first non-blank line of
// search. It only exists to give a useful hint after Find fails, so lines whose
// length is wildly different are not scored.
func Closest(content, search string) (Candidate, bool) {
	want := strippedLines(search)
	if len(want) == 0 {
		return Candidate{}, false
	}
	first := want[0]

	var best Candidate
	for i, l := range strings.Split(content, "\n") {
		got := strings.TrimSpace(l)
		if got == "" || !comparableLength(len(first), len(got)) {
			continue
		}
		if score := levenshtein.Similarity(first, got, nil); score > best.Score {
			best = Candidate{Line: i + 1, Text: got, Score: score}
		}
	}

	return best, best.Score > 0
}

func comparableLength(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return b <= 2*a
}
