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

package opts

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cospatch/pkg/config"
	"github.com/walteh/cospatch/pkg/log"
)

// RootOpts holds the persistent flags shared by every command
type RootOpts struct {
	PatchFile string // empty means the built-in patch set
	Debug     bool
}

// PatchSet loads the patch set named by the flags
func (o *RootOpts) PatchSet(ctx context.Context) (*config.PatchSet, error) {
	if o.PatchFile == "" {
		return config.Default(ctx)
	}
	ps, err := config.Load(ctx, o.PatchFile)
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", o.PatchFile, err)
	}
	return ps, nil
}

// Level is the zerolog level selected by --debug
func (o *RootOpts) Level() zerolog.Level {
	if o.Debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Logger creates the run log, writing to console and mirroring to the
// context's zerolog logger
func (o *RootOpts) Logger(ctx context.Context, console io.Writer) *log.Logger {
	return log.New(console, o.Level()).WithZerolog(*zerolog.Ctx(ctx))
}
