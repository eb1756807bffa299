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
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/cospatch/cmd/cospatch/commands"
	"github.com/walteh/cospatch/cmd/cospatch/opts"
)

func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cospatch",
		Short: "Apply the ComplianceOS pending changes to a project folder",
		Long: `cospatch applies an ordered list of search/replace patches to the files of a
project folder. Each patch is located with a cascade of increasingly tolerant
matchers, patches already present are skipped, and every file is backed up
before it is written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := setupLogging(cmd.Context(), o)
			cmd.SetContext(ctx)
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewApplyCmd(o),
		commands.NewListCmd(o),
		newVersionCmd(),
	)

	return cmd
}

func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.PatchFile, "patches", "p", "", "patch set file (.yaml, .json or .hcl); defaults to the built-in set")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

func setupLogging(ctx context.Context, o *opts.RootOpts) context.Context {
	zerolog.SetGlobalLevel(o.Level())
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}
