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

package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cospatch/pkg/layout"
	"github.com/walteh/cospatch/pkg/status"
)

// OutputTimeFormat is the timestamp inside default layout output names
const OutputTimeFormat = "20060102-150405"

// 🔧 LayoutOptions configures a layout fix
type LayoutOptions struct {
	Input  string           // HTML file to read; never modified
	Output string           // Defaults to DefaultOutputPath beside the input
	Clock  func() time.Time // Defaults to time.Now
}

// 🧩 LayoutOperation writes a copy of an HTML file with the layout patch injected
type LayoutOperation struct {
	opts    LayoutOptions
	written string
}

// NewLayoutOperation creates a layout operation
func NewLayoutOperation(opts LayoutOptions) *LayoutOperation {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &LayoutOperation{opts: opts}
}

// DefaultOutputPath returns <stem>.fixed.<timestamp><ext> beside input
func DefaultOutputPath(input string, t time.Time) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + ".fixed." + t.Format(OutputTimeFormat) + ext
}

// Written returns the path of the file written by the last successful Execute
func (op *LayoutOperation) Written() string {
	return op.written
}

// 🏃 Execute reads the input, injects the layout blocks and writes the output.
// Nothing is written when any step fails.
func (op *LayoutOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	in, err := filepath.Abs(op.opts.Input)
	if err != nil {
		return errors.Errorf("resolving input path: %w", err)
	}

	fi, err := os.Stat(in)
	if err != nil || !fi.Mode().IsRegular() {
		return errors.Errorf("%w: %s", ErrInputNotFound, in)
	}

	raw, err := os.ReadFile(in)
	if err != nil {
		return errors.Errorf("reading input: %w", err)
	}

	out := op.opts.Output
	if out == "" {
		out = DefaultOutputPath(in, op.opts.Clock())
	}
	out, err = filepath.Abs(out)
	if err != nil {
		return errors.Errorf("resolving output path: %w", err)
	}

	inj := layout.Default()
	logger.Debug().Str("input", in).Bool("already_patched", inj.Patched(string(raw))).Msg("injecting layout patch")

	fixed, err := inj.Inject(string(raw))
	if err != nil {
		return errors.Errorf("injecting layout patch: %w", err)
	}

	mgr := status.New(filepath.Dir(out), logger)
	if err := mgr.WriteFileAtomic(ctx, filepath.Base(out), []byte(fixed)); err != nil {
		return errors.Errorf("writing output: %w", err)
	}

	op.written = out
	logger.Debug().Str("output", out).Int("bytes", len(fixed)).Msg("layout patch written")
	return nil
}

var _ Operation = (*LayoutOperation)(nil)
