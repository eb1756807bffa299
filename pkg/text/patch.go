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

	"gitlab.com/tozd/go/errors"
)

// ✏️ Mode controls how a patch edits the matched span
type Mode string

const (
	ModeReplace      Mode = "replace"       // swap the span for the replacement
	ModeInsertBefore Mode = "insert_before" // keep the span, put the replacement on the line above
	ModeInsertAfter  Mode = "insert_after"  // keep the span, put the replacement on the line below
)

// ParseMode normalises a mode name. An empty name means replace, and
// remove_and_replace is accepted as an older spelling of replace.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeReplace), "remove_and_replace":
		return ModeReplace, nil
	case string(ModeInsertBefore):
		return ModeInsertBefore, nil
	case string(ModeInsertAfter):
		return ModeInsertAfter, nil
	}
	return "", errors.Errorf("unknown patch mode %q", s)
}

// 🩹 Patch is a single named edit against one file
type Patch struct {
	// ID is the human readable name used in logs
	ID string `json:"id" yaml:"id"`

	// Search is the snippet to locate; it does not need to match byte for byte
	Search string `json:"search" yaml:"search"`

	// Replace is the text to put in place of (or next to) the match
	Replace string `json:"replace" yaml:"replace"`

	// Mode is one of replace, insert_before or insert_after
	Mode Mode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Reindent shifts replacement lines to the indentation of a fuzzy match
	Reindent bool `json:"reindent,omitempty" yaml:"reindent,omitempty"`
}

// 📊 Status is the outcome of applying one patch
type Status int

const (
	StatusNotFound Status = iota
	StatusApplied
	StatusAlreadyApplied
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusAlreadyApplied:
		return "already-applied"
	default:
		return "not-found"
	}
}

// 📋 Result describes what Apply did
type Result struct {
	Status Status

	// Match is the located span; zero unless Status is StatusApplied
	Match Match

	// MatchedText is the content that was matched before editing
	MatchedText string

	// Evidence lists the replacement lines already present when Status is StatusAlreadyApplied
	Evidence []string
}

// alreadyAppliedProbe is how many unique replacement lines are checked
const alreadyAppliedProbe = 3

// Apply edits content according to p. It never does I/O; the caller decides
// what to log and whether to write. The returned content equals the input
// unless the status is StatusApplied.
func Apply(content string, p Patch) (string, Result, error) {
	mode, err := ParseMode(string(p.Mode))
	if err != nil {
		return content, Result{}, errors.Errorf("patch %s: %w", p.ID, err)
	}

	if evidence, ok := AlreadyApplied(content, p); ok {
		return content, Result{Status: StatusAlreadyApplied, Evidence: evidence}, nil
	}

	m, ok := Find(content, p.Search)
	if !ok {
		return content, Result{Status: StatusNotFound}, nil
	}

	replacement := strings.TrimSpace(p.Replace)
	if p.Reindent && m.Method != MethodExact {
		replacement = reindent(replacement, m.Indent)
	}

	var out string
	switch mode {
	case ModeInsertAfter:
		out = content[:m.End] + "\n" + m.Indent + replacement + content[m.End:]
	case ModeInsertBefore:
		out = content[:m.Start] + replacement + "\n" + m.Indent + content[m.Start:]
	default:
		out = content[:m.Start] + replacement + content[m.End:]
	}

	return out, Result{
		Status:      StatusApplied,
		Match:       m,
		MatchedText: content[m.Start:m.End],
	}, nil
}

// AlreadyApplied reports whether the replacement of p is already in content.
// Only replacement lines that do not also appear in the search text count,
// and of those the first few are probed; a majority of the probe (at least
// two, or all of them when fewer exist) must be present.
func AlreadyApplied(content string, p Patch) ([]string, bool) {
	searchLines := make(map[string]struct{})
	for _, line := range strippedLines(p.Search) {
		searchLines[line] = struct{}{}
	}

	var unique []string
	for _, line := range strippedLines(p.Replace) {
		if _, ok := searchLines[line]; ok {
			continue
		}
		unique = append(unique, line)
	}
	if len(unique) == 0 {
		return nil, false
	}

	probe := unique[:min(alreadyAppliedProbe, len(unique))]
	var found []string
	for _, line := range probe {
		if strings.Contains(content, line) {
			found = append(found, line)
		}
	}

	return found, len(found) >= min(2, len(probe))
}

// strippedLines returns the non-blank lines of s with surrounding whitespace removed
func strippedLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// reindent moves lines after the first onto indent, keeping their
// indentation relative to each other. The first line already sits after
// the match's own indentation.
func reindent(s, indent string) string {
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}

	minLead := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if lead := leadingWidth(line); minLead < 0 || lead < minLead {
			minLead = lead
		}
	}
	if minLead < 0 {
		return s
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = indent + lines[i][minLead:]
	}
	return strings.Join(lines, "\n")
}
