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

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cospatch/pkg/text"
)

//go:embed patchsets/complianceos.yaml
var defaultPatchSet []byte

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.Base("invalid patch set")

// 🔌 Parser is the interface for patch set parsers
type Parser interface {
	// 📝 Parse parses the patch set from bytes
	Parse(ctx context.Context, data []byte) (*PatchSet, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📄 Target is one file (or doublestar glob) inside the selected folder and the
// patches applied to it in order
type Target struct {
	Path     string       `json:"path" yaml:"path"`
	Phase    string       `json:"phase,omitempty" yaml:"phase,omitempty"`
	Required bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Patches  []text.Patch `json:"patches" yaml:"patches"`
}

// IsGlob reports whether the target path names more than one file
func (t Target) IsGlob() bool {
	return strings.ContainsAny(t.Path, "*?[{")
}

// 📚 PatchSet is an ordered list of targets
type PatchSet struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Targets     []Target `json:"targets" yaml:"targets"`
}

// 🎯 Load loads a patch set from a file
func Load(ctx context.Context, filename string) (*PatchSet, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", filename).Msg("loading patch set")

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Errorf("reading patch set file: %w", err)
	}

	p := GetParser(filename)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", filename)
	}

	ps, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing patch set: %w", err)
	}

	if err := ps.Validate(); err != nil {
		return nil, errors.Errorf("validating patch set: %w", err)
	}

	logger.Debug().Str("name", ps.Name).Int("targets", len(ps.Targets)).Int("patches", ps.PatchCount()).Msg("patch set loaded")

	return ps, nil
}

// Default returns the built-in ComplianceOS patch set
func Default(ctx context.Context) (*PatchSet, error) {
	ps, err := (&YAMLParser{}).Parse(ctx, defaultPatchSet)
	if err != nil {
		return nil, errors.Errorf("parsing built-in patch set: %w", err)
	}
	if err := ps.Validate(); err != nil {
		return nil, errors.Errorf("validating built-in patch set: %w", err)
	}
	return ps, nil
}

// 🔍 Validate checks if the patch set is usable. Modes are normalised in place.
func (ps *PatchSet) Validate() error {
	if strings.TrimSpace(ps.Name) == "" {
		return errors.Errorf("%w: name is required", ErrInvalid)
	}
	if len(ps.Targets) == 0 {
		return errors.Errorf("%w: at least one target is required", ErrInvalid)
	}

	seen := map[string]string{}
	for i := range ps.Targets {
		t := &ps.Targets[i]
		if err := validateTargetPath(t.Path); err != nil {
			return errors.Errorf("%w: target %d: %s", ErrInvalid, i, err.Error())
		}

		for j := range t.Patches {
			p := &t.Patches[j]
			if strings.TrimSpace(p.ID) == "" {
				return errors.Errorf("%w: %s: patch %d has no id", ErrInvalid, t.Path, j)
			}
			if prev, ok := seen[p.ID]; ok {
				return errors.Errorf("%w: duplicate patch id %q (in %s and %s)", ErrInvalid, p.ID, prev, t.Path)
			}
			seen[p.ID] = t.Path

			if strings.TrimSpace(p.Search) == "" {
				return errors.Errorf("%w: patch %s: search text is blank", ErrInvalid, p.ID)
			}
			mode, err := text.ParseMode(string(p.Mode))
			if err != nil {
				return errors.Errorf("%w: patch %s: %s", ErrInvalid, p.ID, err.Error())
			}
			p.Mode = mode
		}
	}

	return nil
}

func validateTargetPath(p string) error {
	switch {
	case strings.TrimSpace(p) == "":
		return errors.New("path is required")
	case path.IsAbs(p) || strings.HasPrefix(p, `\`) || (len(p) > 1 && p[1] == ':'):
		return errors.Errorf("path %q must be relative to the selected folder", p)
	case !doublestar.ValidatePattern(p):
		return errors.Errorf("path %q is not a valid pattern", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return errors.Errorf("path %q must not leave the selected folder", p)
		}
	}
	return nil
}

// PatchCount returns the number of patches across all targets
func (ps *PatchSet) PatchCount() int {
	n := 0
	for _, t := range ps.Targets {
		n += len(t.Patches)
	}
	return n
}

// 📝 String returns a string representation of the patch set
func (ps *PatchSet) String() string {
	return fmt.Sprintf("%s (%d targets, %d patches)", ps.Name, len(ps.Targets), ps.PatchCount())
}
