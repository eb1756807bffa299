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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cospatch/pkg/text"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
//	name = "complianceos"
//
//	target "index.html" {
//	  phase    = "PHASE 1: UI PATCHES (index.html)"
//	  required = true
//
//	  patch "UI-5C: mountCreatePanel accept oneOnly" {
//	    search  = "function mountCreatePanel() {"
//	    replace = "function mountCreatePanel({ oneOnly = false } = {}) {"
//	  }
//	}
//
// Template sequences are live in HCL strings, so a literal `${` in a
// snippet is written `$${`.
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclPatch struct {
	ID       string `hcl:"id,label"`
	Search   string `hcl:"search"`
	Replace  string `hcl:"replace"`
	Mode     string `hcl:"mode,optional"`
	Reindent bool   `hcl:"reindent,optional"`
}

type hclTarget struct {
	Path     string     `hcl:"path,label"`
	Phase    string     `hcl:"phase,optional"`
	Required bool       `hcl:"required,optional"`
	Patches  []hclPatch `hcl:"patch,block"`
}

type hclPatchSet struct {
	Name        string      `hcl:"name"`
	Description string      `hcl:"description,optional"`
	Targets     []hclTarget `hcl:"target,block"`
}

// 📝 Parse parses the patch set from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*PatchSet, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "patchset.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var raw hclPatchSet
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	ps := &PatchSet{
		Name:        raw.Name,
		Description: raw.Description,
	}
	for _, t := range raw.Targets {
		target := Target{
			Path:     t.Path,
			Phase:    t.Phase,
			Required: t.Required,
		}
		for _, hp := range t.Patches {
			target.Patches = append(target.Patches, text.Patch{
				ID:       hp.ID,
				Search:   hp.Search,
				Replace:  hp.Replace,
				Mode:     text.Mode(hp.Mode),
				Reindent: hp.Reindent,
			})
		}
		ps.Targets = append(ps.Targets, target)
	}

	return ps, nil
}
