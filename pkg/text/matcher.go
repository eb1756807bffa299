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
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 🔍 Method names the strategy that located a match
type Method string

const (
	MethodExact        Method = "exact"
	MethodLineStripped Method = "line-stripped"
	MethodRegexFuzzy   Method = "regex-fuzzy"
	MethodCollapsed    Method = "collapsed"
)

// 🎯 Match is a located span of content, [Start, End) in bytes
type Match struct {
	Start  int
	End    int
	Method Method

	// Indent is the whitespace between the start of the line and Start, or
	// empty when anything else precedes the match on its line
	Indent string
}

type strategy struct {
	method Method
	find   func(content, search string) (start, end int, ok bool)
}

// strategies are tried in order; the first hit wins
var strategies = []strategy{
	{MethodExact, findExact},
	{MethodLineStripped, findLineStripped},
	{MethodRegexFuzzy, findRegexFuzzy},
	{MethodCollapsed, findCollapsed},
}

// Find locates search in content, tolerating indentation and whitespace
// differences. An empty search never matches.
func Find(content, search string) (Match, bool) {
	search = strings.TrimSpace(search)
	if search == "" {
		return Match{}, false
	}

	for _, s := range strategies {
		start, end, ok := s.find(content, search)
		if !ok {
			continue
		}
		return Match{
			Start:  start,
			End:    end,
			Method: s.method,
			Indent: indentAt(content, start),
		}, true
	}

	return Match{}, false
}

func findExact(content, search string) (int, int, bool) {
	idx := strings.Index(content, search)
	if idx < 0 {
		return 0, 0, false
	}
	return idx, idx + len(search), true
}

type line struct {
	text string
	off  int
}

func splitLines(content string) []line {
	raw := strings.Split(content, "\n")
	out := make([]line, len(raw))
	off := 0
	for i, l := range raw {
		out[i] = line{text: l, off: off}
		off += len(l) + 1
	}
	return out
}

// findLineStripped compares stripped lines, skipping blank content lines
// inside the run. The span excludes the leading indentation of the first
// line and the trailing whitespace of the last.
func findLineStripped(content, search string) (int, int, bool) {
	want := strippedLines(search)
	if len(want) == 0 {
		return 0, 0, false
	}

	lines := splitLines(content)
	for i := range lines {
		if strings.TrimSpace(lines[i].text) != want[0] {
			continue
		}

		last, si := i, 0
		for j := i; si < len(want) && j < len(lines); j++ {
			got := strings.TrimSpace(lines[j].text)
			if got == "" {
				continue
			}
			if got != want[si] {
				break
			}
			last = j
			si++
		}
		if si < len(want) {
			continue
		}

		start := lines[i].off + leadingWidth(lines[i].text)
		end := lines[last].off + len(strings.TrimRightFunc(lines[last].text, unicode.IsSpace))
		return start, end, true
	}

	return 0, 0, false
}

var horizontalSpace = regexp.MustCompile(`[ \t]+`)

// fuzzyPattern turns a snippet into a regular expression where each line may
// carry any indentation and inner runs of spaces may be any whitespace.
func fuzzyPattern(search string) string {
	lines := strings.Split(strings.TrimSpace(search), "\n")
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		stripped := strings.TrimSpace(l)
		if stripped == "" {
			parts = append(parts, `\s*`)
			continue
		}
		quoted := regexp.QuoteMeta(stripped)
		quoted = horizontalSpace.ReplaceAllLiteralString(quoted, `\s+`)
		parts = append(parts, `[ \t]*`+quoted)
	}
	return strings.Join(parts, `[ \t\r]*\n`)
}

func findRegexFuzzy(content, search string) (int, int, bool) {
	re, err := regexp.Compile(fuzzyPattern(search))
	if err != nil {
		return 0, 0, false
	}

	loc := re.FindStringIndex(content)
	if loc == nil {
		return 0, 0, false
	}

	start, end := loc[0], loc[1]
	for start < end && (content[start] == ' ' || content[start] == '\t') {
		start++
	}
	return start, end, true
}

// findCollapsed is the coarse last resort. Whitespace runs are collapsed in
// both texts; when the search is present in that form, the span runs from its
// first distinctive token to the end of the line holding its last one. Both
// tokens are looked up inside the region the collapsed hit maps back to, so a
// repeat of either token elsewhere in the file cannot stretch the span.
func findCollapsed(content, search string) (int, int, bool) {
	collapsedSearch, _ := collapseWhitespace(search)
	collapsedContent, offsets := collapseWhitespace(content)

	idx := strings.Index(collapsedContent, collapsedSearch)
	if idx < 0 || collapsedSearch == "" {
		return 0, 0, false
	}

	tokens := distinctiveTokens(search)
	if len(tokens) == 0 {
		return 0, 0, false
	}

	regionStart := offsets[idx]
	regionEnd := offsets[idx+len(collapsedSearch)-1] + 1

	first := strings.Index(content[regionStart:regionEnd], tokens[0])
	if first < 0 {
		return 0, 0, false
	}
	first += regionStart

	lastToken := tokens[len(tokens)-1]
	last := strings.LastIndex(content[first:regionEnd], lastToken)
	if last < 0 {
		return 0, 0, false
	}
	end := first + last + len(lastToken)

	if eol := strings.IndexByte(content[end:], '\n'); eol >= 0 {
		end += eol
		if end > 0 && content[end-1] == '\r' {
			end--
		}
	} else {
		end = len(content)
	}

	return first, end, true
}

// collapseWhitespace replaces each whitespace run with one space. offsets[i]
// is the byte offset in s of byte i of the collapsed string.
func collapseWhitespace(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s))

	inSpace := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				offsets = append(offsets, i)
			}
			inSpace = true
			i += size
			continue
		}
		inSpace = false
		b.WriteString(s[i : i+size])
		for k := 0; k < size; k++ {
			offsets = append(offsets, i+k)
		}
		i += size
	}

	return b.String(), offsets
}

// distinctiveTokens are whitespace separated words longer than three runes
func distinctiveTokens(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		if utf8.RuneCountInString(tok) > 3 {
			out = append(out, tok)
		}
	}
	return out
}

func leadingWidth(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

func indentAt(content string, pos int) string {
	lineStart := strings.LastIndexByte(content[:pos], '\n') + 1
	prefix := content[lineStart:pos]
	if strings.Trim(prefix, " \t") != "" {
		return ""
	}
	return prefix
}
