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

package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cospatch/cmd/cospatch/opts"
	"github.com/walteh/cospatch/pkg/config"
)

// NewListCmd creates the list command
func NewListCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the targets and patches of the patch set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := o.PatchSet(cmd.Context())
			if err != nil {
				return err
			}

			table, err := RenderPatchSet(ps)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), table)
			return nil
		},
	}

	return cmd
}

// RenderPatchSet renders one row per patch, grouped by target
func RenderPatchSet(ps *config.PatchSet) (string, error) {
	data := pterm.TableData{{"#", "Target", "Patch", "Mode", "Required"}}

	n := 0
	for _, t := range ps.Targets {
		target := t.Path
		required := ""
		if t.Required {
			required = "yes"
		}
		for _, p := range t.Patches {
			n++
			data = append(data, []string{strconv.Itoa(n), target, p.ID, string(p.Mode), required})
			// only the first row of a target names it
			target, required = "", ""
		}
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering patch set: %w", err)
	}

	return ps.String() + "\n\n" + table + "\n", nil
}
