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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🏷️ Tag marks the kind of a log line
type Tag string

const (
	TagInfo    Tag = "INFO "
	TagOK      Tag = " OK  "
	TagWarn    Tag = "WARN "
	TagFail    Tag = "FAIL "
	TagSkip    Tag = "SKIP "
	TagStep    Tag = "STEP "
	TagDetail  Tag = "    >"
	TagSection Tag = "═══"
)

// 🎨 Display configuration
const (
	indentUnit   = "  "
	sectionWidth = 60
)

var tagColors = map[Tag]*color.Color{
	TagInfo:    color.New(color.FgCyan),
	TagOK:      color.New(color.FgGreen),
	TagWarn:    color.New(color.FgYellow),
	TagFail:    color.New(color.FgRed, color.Bold),
	TagSkip:    color.New(color.FgHiBlack),
	TagStep:    color.New(color.FgBlue),
	TagDetail:  color.New(color.Faint),
	TagSection: color.New(color.FgMagenta, color.Bold),
}

// 📊 Counts tallies the counted tags
type Counts struct {
	Success int
	Skip    int
	Warn    int
	Fail    int
}

// 🎯 Logger writes the tagged, indented run log. Every line goes to the
// console (coloured), is kept for persisting, and is mirrored to zerolog.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	indent  int
	lines   []string
	counts  Counts
}

// 🏭 New creates a new logger. Tagged lines go to console; the structured
// mirror goes to stderr at the given level.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔧 WithZerolog swaps the structured mirror
func (l *Logger) WithZerolog(zlog zerolog.Logger) *Logger {
	l.zlog = zlog
	return l
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func (l *Logger) emit(tag Tag, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := strings.Repeat(indentUnit, l.indent)
	l.lines = append(l.lines, fmt.Sprintf("[%s] %s%s", tag, prefix, msg))

	fmt.Fprintf(l.console, "[%s] %s%s\n", tagColors[tag].Sprint(string(tag)), prefix, msg)

	ev := l.zlog.Debug()
	switch tag {
	case TagWarn:
		ev = l.zlog.Warn()
	case TagFail:
		ev = l.zlog.Error()
	}
	ev.Str("tag", strings.TrimSpace(string(tag))).Int("indent", l.indent).Msg(msg)
}

// 📝 Info logs an informational line
func (l *Logger) Info(msg string) { l.emit(TagInfo, msg) }

// 📝 Step logs the start of a unit of work
func (l *Logger) Step(msg string) { l.emit(TagStep, msg) }

// 📝 Detail logs a supporting detail
func (l *Logger) Detail(msg string) { l.emit(TagDetail, msg) }

// 📝 OK logs a success and counts it
func (l *Logger) OK(msg string) {
	l.emit(TagOK, msg)
	l.count(func(c *Counts) { c.Success++ })
}

// 📝 Warn logs a warning and counts it
func (l *Logger) Warn(msg string) {
	l.emit(TagWarn, msg)
	l.count(func(c *Counts) { c.Warn++ })
}

// 📝 Fail logs a failure and counts it
func (l *Logger) Fail(msg string) {
	l.emit(TagFail, msg)
	l.count(func(c *Counts) { c.Fail++ })
}

// 📝 Skip logs a skipped item and counts it
func (l *Logger) Skip(msg string) {
	l.emit(TagSkip, msg)
	l.count(func(c *Counts) { c.Skip++ })
}

func (l *Logger) Infof(format string, args ...interface{})   { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Stepf(format string, args ...interface{})   { l.Step(fmt.Sprintf(format, args...)) }
func (l *Logger) Detailf(format string, args ...interface{}) { l.Detail(fmt.Sprintf(format, args...)) }
func (l *Logger) OKf(format string, args ...interface{})     { l.OK(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...interface{})   { l.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Failf(format string, args ...interface{})   { l.Fail(fmt.Sprintf(format, args...)) }
func (l *Logger) Skipf(format string, args ...interface{})   { l.Skip(fmt.Sprintf(format, args...)) }

func (l *Logger) count(fn func(*Counts)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.counts)
}

// 📝 Blank logs an empty line
func (l *Logger) Blank() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, "")
	fmt.Fprintln(l.console)
}

// 📝 Raw writes pre-formatted text (a table, a diff) to the console and the
// kept log without a tag. The kept copy has colour codes removed.
func (l *Logger) Raw(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	text = strings.TrimRight(text, "\n")
	plain := pterm.RemoveColorFromString(text)
	l.lines = append(l.lines, strings.Split(plain, "\n")...)
	fmt.Fprintln(l.console, text)
}

// 📝 Section logs a framed title
func (l *Logger) Section(title string) {
	sep := strings.Repeat("═", sectionWidth)
	l.Blank()
	l.emit(TagSection, sep)
	l.emit(TagSection, "  "+title)
	l.emit(TagSection, sep)
}

// Indent nests following lines one level deeper until the returned func runs
func (l *Logger) Indent() (dedent func()) {
	l.mu.Lock()
	l.indent++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.indent > 0 {
				l.indent--
			}
		})
	}
}

// Counts returns the tallies so far
func (l *Logger) Counts() Counts {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts
}

// Lines returns a copy of every line logged so far, without colour
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// 📝 Summary logs the final tallies and the overall verdict
func (l *Logger) Summary() {
	c := l.Counts()

	l.Blank()
	l.Section("FINAL SUMMARY")
	l.Infof("Successful replacements : %d", c.Success)
	l.Infof("Skipped (already done?) : %d", c.Skip)
	l.Infof("Warnings                : %d", c.Warn)
	l.Infof("Failures                : %d", c.Fail)

	if c.Fail > 0 {
		l.Fail("SOME PATCHES FAILED, review log above!")
	} else {
		l.OK("ALL PATCHES APPLIED SUCCESSFULLY")
	}

	l.zlog.Info().
		Int("success", c.Success).
		Int("skip", c.Skip).
		Int("warn", c.Warn).
		Int("fail", c.Fail).
		Msg("run complete")
}
