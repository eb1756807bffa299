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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cospatch/cmd/cospatch/opts"
	"github.com/walteh/cospatch/pkg/log"
	"github.com/walteh/cospatch/pkg/operation"
)

// ApplyFlags are the flags of the apply command
type ApplyFlags struct {
	Dir     string
	DryRun  bool
	NoPause bool
}

// NewApplyCmd creates the apply command
func NewApplyCmd(o *opts.RootOpts) *cobra.Command {
	flags := &ApplyFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the patch set to a project folder",
		Long: `Apply backs up and patches every target file of the patch set inside the
project folder, then prints a summary and saves the full log in the folder.
It will:
1. Validate the folder structure
2. Apply each patch with exact, line-stripped, regex and collapsed matching
3. Skip patches that are already applied
4. Write each file once, only when it changed

Patches that cannot be located are reported but never stop the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			l := o.Logger(ctx, out)
			ctx = log.NewContext(ctx, l)

			ps, err := o.PatchSet(ctx)
			if err != nil {
				return err
			}

			folder := flags.Dir
			if folder == "" {
				l.Step("Asking for the project folder...")
				folder, err = promptFolder()
				if err != nil {
					return errors.Errorf("reading folder: %w", err)
				}
			}
			if folder == "" {
				l.Fail("No folder selected. Exiting.")
				return nil
			}
			if abs, err := filepath.Abs(folder); err == nil {
				folder = abs
			}

			applyOpts := operation.ApplyOptions{
				Folder:   folder,
				PatchSet: ps,
				DryRun:   flags.DryRun,
			}
			zerolog.Ctx(ctx).Debug().Stringer("run", applyOpts).Msg("starting apply")
			op := operation.NewApplyOperation(applyOpts)

			if err := operation.NewRunner(zerolog.Ctx(ctx)).Run(ctx, op); err != nil {
				return err
			}

			if !flags.NoPause && isTerminal(cmd.InOrStdin()) {
				pause(out, cmd.InOrStdin())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Dir, "dir", "", "project folder (contains index.html and netlify/functions/); prompted for when empty")
	cmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, "show what would change without writing anything")
	cmd.Flags().BoolVar(&flags.NoPause, "no-pause", false, "do not wait for Enter before exiting")

	return cmd
}

func promptFolder() (string, error) {
	folder, err := pterm.DefaultInteractiveTextInput.
		Show("Project folder (contains index.html and netlify/functions/)")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(folder), nil
}

// isTerminal reports whether r is an interactive terminal
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func pause(out io.Writer, in io.Reader) {
	fmt.Fprint(out, "\nPress Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
