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

// Package layout injects the ComplianceOS layout patch (a CSS block and a JS
// block, each fenced by marker comments) into a single-file HTML app.
package layout

import (
	_ "embed"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	CSSBegin = "/* === COS_LAYOUT_PATCH_BEGIN === */"
	CSSEnd   = "/* === COS_LAYOUT_PATCH_END === */"
	JSBegin  = "/* === COS_LAYOUT_PATCH_JS_BEGIN === */"
	JSEnd    = "/* === COS_LAYOUT_PATCH_JS_END === */"

	// jsLegacyBegin opened the JS block in files patched before the marker
	// was a single comment
	jsLegacyBegin = "/* === COS_LAYOUT_PATCH_JS_BEGIN ===\n"
)

var (
	ErrNoStyleClose = errors.Base("no </style> tag found; the file must include an inline <style> block")
	ErrNoBodyClose  = errors.Base("no </body> tag found")
	ErrIncomplete   = errors.Base("output does not look like a complete HTML document (missing </html>)")
)

var (
	//go:embed assets/cos_layout.css
	cssAsset string

	//go:embed assets/cos_layout.js
	jsAsset string

	styleClose = regexp.MustCompile(`(?i)</style\s*>`)
	bodyClose  = regexp.MustCompile(`(?i)</body\s*>`)
	htmlClose  = regexp.MustCompile(`(?i)</html>`)
)

// 🧱 Block is one fenced region. Body starts with Begin and ends with End; it is
// written as Prefix+Body+Suffix right before the first Anchor match.
type Block struct {
	Name    string
	Begin   string
	End     string
	Body    string
	Prefix  string
	Suffix  string
	Anchor  *regexp.Regexp
	Missing error    // returned when Anchor does not match
	Aliases []string // other begin markers that still open this block
}

// CSSBlock is the stylesheet half of the layout patch
func CSSBlock() Block {
	return Block{
		Name:    "css",
		Begin:   CSSBegin,
		End:     CSSEnd,
		Body:    strings.TrimSpace(cssAsset),
		Prefix:  "\n\n",
		Suffix:  "\n\n",
		Anchor:  styleClose,
		Missing: ErrNoStyleClose,
	}
}

// JSBlock is the script half of the layout patch
func JSBlock() Block {
	return Block{
		Name:    "js",
		Begin:   JSBegin,
		End:     JSEnd,
		Body:    strings.TrimSpace(jsAsset),
		Prefix:  "\n\n<script>\n",
		Suffix:  "\n</script>\n\n",
		Anchor:  bodyClose,
		Missing: ErrNoBodyClose,
		Aliases: []string{jsLegacyBegin},
	}
}

// Validate checks the body is fenced by the block's own markers
func (b Block) Validate() error {
	switch {
	case b.Begin == "" || b.End == "":
		return errors.Errorf("block %s: markers are required", b.Name)
	case !strings.HasPrefix(b.Body, b.Begin):
		return errors.Errorf("block %s: body does not start with %q", b.Name, b.Begin)
	case !strings.HasSuffix(b.Body, b.End):
		return errors.Errorf("block %s: body does not end with %q", b.Name, b.End)
	case b.Anchor == nil:
		return errors.Errorf("block %s: anchor is required", b.Name)
	}
	return nil
}

// stripPattern matches the block from any begin marker to the nearest end
// marker, along with the framing Inject puts around it
func (b Block) stripPattern() *regexp.Regexp {
	begins := make([]string, 0, 1+len(b.Aliases))
	for _, m := range append([]string{b.Begin}, b.Aliases...) {
		begins = append(begins, regexp.QuoteMeta(m))
	}

	var sb strings.Builder
	sb.WriteString(`(?s)`)
	if b.Prefix != "" {
		sb.WriteString(`(?:` + regexp.QuoteMeta(b.Prefix) + `)?`)
	}
	sb.WriteString(`(?:` + strings.Join(begins, "|") + `)`)
	sb.WriteString(`.*?`)
	sb.WriteString(regexp.QuoteMeta(b.End))
	if b.Suffix != "" {
		sb.WriteString(`(?:` + regexp.QuoteMeta(b.Suffix) + `)?`)
	}
	return regexp.MustCompile(sb.String())
}

// 💉 Injector places a fixed list of blocks into HTML documents
type Injector struct {
	blocks []Block
}

// New creates an injector for the given blocks, inserted in order
func New(blocks ...Block) (*Injector, error) {
	for _, b := range blocks {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	return &Injector{blocks: blocks}, nil
}

// Default returns the injector for the ComplianceOS layout patch
func Default() *Injector {
	in, err := New(CSSBlock(), JSBlock())
	if err != nil {
		panic(err)
	}
	return in
}

// Blocks returns the blocks in insertion order
func (in *Injector) Blocks() []Block {
	return in.blocks
}

// Patched reports whether html already carries any of the blocks
func (in *Injector) Patched(html string) bool {
	for _, b := range in.blocks {
		if strings.Contains(html, b.Begin) {
			return true
		}
		for _, alias := range b.Aliases {
			if strings.Contains(html, alias) {
				return true
			}
		}
	}
	return false
}

// Strip removes every region of every block, leaving the rest untouched
func (in *Injector) Strip(html string) string {
	for _, b := range in.blocks {
		html = b.stripPattern().ReplaceAllLiteralString(html, "")
	}
	return html
}

// Inject strips any earlier copies of the blocks, then inserts each one before
// its anchor. Running it on its own output returns the same bytes.
func (in *Injector) Inject(html string) (string, error) {
	out := in.Strip(html)

	for _, b := range in.blocks {
		loc := b.Anchor.FindStringIndex(out)
		if loc == nil {
			if b.Missing != nil {
				return "", errors.WithStack(b.Missing)
			}
			return "", errors.Errorf("block %s: anchor %s not found", b.Name, b.Anchor)
		}
		out = out[:loc[0]] + b.Prefix + b.Body + b.Suffix + out[loc[0]:]
	}

	if !htmlClose.MatchString(out) {
		return "", errors.WithStack(ErrIncomplete)
	}

	return out, nil
}

// Inject applies the default layout patch
func Inject(html string) (string, error) {
	return Default().Inject(html)
}
