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
	"fmt"
	"os"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cospatch/pkg/config"
	"github.com/walteh/cospatch/pkg/log"
	"github.com/walteh/cospatch/pkg/status"
	"github.com/walteh/cospatch/pkg/text"
)

// 🔧 ApplyOptions configures an apply run
type ApplyOptions struct {
	Folder   string           // Folder the target paths are relative to
	PatchSet *config.PatchSet // Patches to apply
	DryRun   bool             // Log what would change without touching the folder
	Clock    func() time.Time // Defaults to time.Now
}

// 📝 ApplyOperation applies a patch set to the files of one folder, logging
// every step. Per-patch failures are logged and counted, never returned.
type ApplyOperation struct {
	opts ApplyOptions
	mgr  *status.Manager
}

// NewApplyOperation creates an apply operation
func NewApplyOperation(opts ApplyOptions) *ApplyOperation {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &ApplyOperation{opts: opts}
}

// Files returns what the last run did to each target file
func (op *ApplyOperation) Files(ctx context.Context) []status.FileInfo {
	if op.mgr == nil {
		return nil
	}
	return op.mgr.ListFiles(ctx)
}

// resolved is a target together with the files it names in the folder
type resolved struct {
	target config.Target
	files  []string
}

// step is one unit of the run: a file with every patch that names it, or a
// target that matched nothing
type step struct {
	phase   string
	file    string // target path when missing is set
	missing bool
	patches []text.Patch
}

// plan orders the run so each file is visited once. A file named by several
// targets keeps the position and phase of the first, and its patch lists are
// concatenated in target order.
func plan(targets []resolved) []step {
	var steps []step
	byFile := make(map[string]int)
	byMissing := make(map[string]int)

	add := func(index map[string]int, key string, missing bool, t config.Target) {
		if i, ok := index[key]; ok {
			steps[i].patches = append(steps[i].patches, t.Patches...)
			return
		}
		index[key] = len(steps)
		patches := make([]text.Patch, len(t.Patches))
		copy(patches, t.Patches)
		steps = append(steps, step{phase: t.Phase, file: key, missing: missing, patches: patches})
	}

	for _, rt := range targets {
		if len(rt.files) == 0 {
			add(byMissing, rt.target.Path, true, rt.target)
			continue
		}
		for _, f := range rt.files {
			add(byFile, f, false, rt.target)
		}
	}

	return steps
}

// 🏃 Execute runs the patch set against the folder
func (op *ApplyOperation) Execute(ctx context.Context) error {
	l := log.FromContext(ctx)
	ps := op.opts.PatchSet
	if ps == nil {
		return errors.New("no patch set to apply")
	}

	op.mgr = status.New(op.opts.Folder, zerolog.Ctx(ctx)).WithClock(op.opts.Clock)
	started := op.mgr.Now()

	l.Section("PATCH SET: " + strings.ToUpper(ps.Name))
	if ps.Description != "" {
		l.Info(ps.Description)
	}
	l.Infof("Started at: %s", started.Format(time.DateTime))
	l.Blank()

	fi, err := os.Stat(op.opts.Folder)
	if err != nil || !fi.IsDir() {
		l.Failf("Folder not found: %s", op.opts.Folder)
		return errors.Errorf("%w: %s", ErrFolderNotFound, op.opts.Folder)
	}

	l.Infof("Selected folder: %s", op.mgr.BaseDir())
	if op.opts.DryRun {
		l.Info("Dry run: no backups, no writes")
	}
	l.Blank()

	targets, err := op.validate(ctx, l)
	if err != nil {
		return err
	}
	l.Blank()

	phase := ""
	for _, st := range plan(targets) {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("apply cancelled: %w", err)
		}

		if st.phase != "" && st.phase != phase {
			phase = st.phase
			l.Section(phase)
		}

		if st.missing {
			op.skipMissing(ctx, l, st.file, st.patches)
			continue
		}
		op.applyFile(ctx, l, st.file, st.patches)
	}

	l.Summary()

	table, err := status.FormatFileTable(op.mgr.ListFiles(ctx))
	if err != nil {
		l.Warnf("Could not render file table: %v", err)
	} else {
		l.Blank()
		l.Raw(table)
	}

	if op.opts.DryRun {
		l.Info("Dry run: log file not written")
		return nil
	}

	logPath, err := op.mgr.WriteLog(ctx, status.LogName(started), l.Lines())
	if err != nil {
		l.Warnf("Could not save log file: %v", err)
		return nil
	}
	l.Infof("Full log saved to: %s", logPath)

	return nil
}

// validate resolves every target against the folder
func (op *ApplyOperation) validate(ctx context.Context, l *log.Logger) ([]resolved, error) {
	l.Step("Validating folder structure...")
	dedent := l.Indent()

	targets := make([]resolved, 0, len(op.opts.PatchSet.Targets))
	for _, t := range op.opts.PatchSet.Targets {
		rt := resolved{target: t}
		if t.IsGlob() {
			matches, err := op.mgr.Glob(ctx, t.Path)
			if err != nil {
				dedent()
				return nil, errors.Errorf("resolving %s: %w", t.Path, err)
			}
			rt.files = matches
			l.Detailf("%s: %d match(es)", t.Path, len(matches))
		} else {
			exists, err := op.mgr.FileExists(ctx, t.Path)
			if err != nil {
				dedent()
				return nil, errors.Errorf("resolving %s: %w", t.Path, err)
			}
			if exists {
				rt.files = []string{path.Clean(t.Path)}
				l.Detailf("%s: FOUND", t.Path)
			} else {
				l.Detailf("%s: NOT FOUND", t.Path)
			}
		}
		targets = append(targets, rt)
	}
	dedent()

	var missing []string
	for _, rt := range targets {
		if len(rt.files) > 0 {
			continue
		}
		if rt.target.Required {
			l.Failf("%s not found in selected folder!", rt.target.Path)
			continue
		}
		missing = append(missing, rt.target.Path)
	}
	if len(missing) > 0 {
		l.Warnf("Missing files: [%s]", strings.Join(missing, ", "))
		l.Warn("Will skip patches for missing files.")
	}

	return targets, nil
}

func (op *ApplyOperation) skipMissing(ctx context.Context, l *log.Logger, path string, patches []text.Patch) {
	l.Blank()
	l.Section("File: " + path)
	l.Warnf("File not found: %s, skipping all patches for this file", op.mgr.AbsPath(path))
	for _, p := range patches {
		l.Skipf("Skipped (file missing): %s", p.ID)
	}
	op.mgr.TrackFile(ctx, status.FileInfo{
		Path:    path,
		Status:  status.StatusMissing,
		Skipped: len(patches),
	})
}

// applyFile runs every patch against one file and writes it at most once
func (op *ApplyOperation) applyFile(ctx context.Context, l *log.Logger, rel string, patches []text.Patch) {
	info := status.FileInfo{Path: rel, Status: status.StatusUnchanged}
	var final []byte
	defer func() {
		op.mgr.TrackFile(ctx, info)
		if final != nil {
			op.mgr.SetChecksum(rel, final)
		}
	}()

	l.Blank()
	l.Section("File: " + rel)

	raw, err := op.mgr.ReadFile(ctx, rel)
	if err != nil {
		l.Failf("Cannot read %s: %v", rel, err)
		info.Error = err
		return
	}
	original := string(raw)
	l.Detailf("Reading: %s", op.mgr.AbsPath(rel))
	l.Detailf("Read %d chars, %d lines", utf8.RuneCountInString(original), strings.Count(original, "\n"))

	if !op.opts.DryRun {
		l.Stepf("Creating backup of %s...", rel)
		dedent := l.Indent()
		backup, err := op.mgr.BackupFile(ctx, rel)
		if err != nil {
			dedent()
			l.Failf("Could not back up %s: %v", rel, err)
			for _, p := range patches {
				l.Skipf("Skipped (no backup): %s", p.ID)
			}
			info.Skipped = len(patches)
			info.Error = err
			return
		}
		l.Detailf("Backup created: %s", backup)
		dedent()
		info.Backup = backup
	}
	l.Blank()

	content := original
	for _, p := range patches {
		var st text.Status
		content, st = applyPatch(l, content, p)
		switch st {
		case text.StatusApplied:
			info.Applied++
		case text.StatusAlreadyApplied:
			info.Skipped++
		default:
			info.Failed++
		}
	}

	switch {
	case content == original:
		l.Infof("No changes to %s", rel)
	case op.opts.DryRun:
		info.Status = status.StatusPreview
		l.Infof("Dry run: %s would be written with %d applied patch(es)", rel, info.Applied)
		l.Raw(Preview(original, content))
	default:
		changed, err := op.mgr.WriteFileIfChanged(ctx, rel, raw, []byte(content))
		if err != nil {
			l.Failf("Could not write %s: %v", rel, err)
			info.Error = err
			return
		}
		if changed {
			info.Status = status.StatusModified
			l.Detailf("Written %d chars to %s", utf8.RuneCountInString(content), op.mgr.AbsPath(rel))
			l.OKf("%s written with all applied patches", rel)
		}
	}

	final = []byte(content)
}

// applyPatch applies one patch and logs how it went
func applyPatch(l *log.Logger, content string, p text.Patch) (string, text.Status) {
	l.Stepf("Patch: %s", p.ID)
	dedent := l.Indent()
	defer func() {
		dedent()
		l.Blank()
	}()

	out, res, err := text.Apply(content, p)
	if err != nil {
		l.Failf("Patch %s: %v", p.ID, err)
		return content, text.StatusNotFound
	}

	switch res.Status {
	case text.StatusAlreadyApplied:
		l.Skipf("Already applied: %s", p.ID)
		for _, line := range res.Evidence {
			l.Detailf("Found: %s", truncate(line, 80))
		}
	case text.StatusApplied:
		l.Detailf("Found match using method: %s at chars %d-%d", res.Match.Method, res.Match.Start, res.Match.End)
		l.Detailf("Matched text preview: %q", truncate(res.MatchedText, 100))
		l.OKf("Applied via %s: %s", methodLabel(res.Match.Method), p.ID)
	default:
		l.Failf("ALL strategies failed for patch: %s", p.ID)
		l.Detailf("Search text (first 120 chars): %s", truncate(strings.TrimSpace(p.Search), 120))
		if c, ok := text.Closest(content, p.Search); ok {
			l.Detailf("Closest line %d (%.0f%% similar): %s", c.Line, c.Score*100, truncate(c.Text, 100))
		}
	}

	return out, res.Status
}

func methodLabel(m text.Method) string {
	switch m {
	case text.MethodExact:
		return "exact match"
	case text.MethodLineStripped:
		return "line-stripped match"
	case text.MethodRegexFuzzy:
		return "regex fuzzy"
	case text.MethodCollapsed:
		return "collapsed whitespace"
	default:
		return string(m)
	}
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

var _ Operation = (*ApplyOperation)(nil)

// String describes the run for debug logs
func (o ApplyOptions) String() string {
	name := "<none>"
	if o.PatchSet != nil {
		name = o.PatchSet.String()
	}
	return fmt.Sprintf("apply %s to %s (dry-run=%t)", name, o.Folder, o.DryRun)
}
