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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cospatch/pkg/operation"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks bad arguments, which exit like a missing input
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var out string
	var debug bool

	cmd := &cobra.Command{
		Use:   "layoutfix <html_file>",
		Short: "Inject the ComplianceOS layout patch into a single-file HTML app",
		Long: `layoutfix writes a copy of an HTML file with the layout CSS placed before
</style> and the layout script placed before </body>. Blocks from earlier runs
are replaced, so running it on its own output changes nothing. The input file
is never modified.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()
			ctx := logger.WithContext(cmd.Context())

			op := operation.NewLayoutOperation(operation.LayoutOptions{
				Input:  expandHome(args[0]),
				Output: expandHome(out),
			})
			if err := op.Execute(ctx); err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Patched file written:\n  %s\n", op.Written())
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file path (default: <name>.fixed.<timestamp><ext> beside the input)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	return cmd
}

// run executes the command and maps its error to an exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "ERROR: %v\n", err)

	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintln(stderr, cmd.UsageString())
		return exitUsage
	}
	if errors.Is(err, operation.ErrInputNotFound) {
		return exitUsage
	}
	return exitError
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
