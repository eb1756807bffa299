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

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 45 // Base width for filename
)

func statusSymbol(s FileStatus, failed bool) string {
	switch {
	case failed:
		return color.RedString("✗")
	case s == StatusModified:
		return color.GreenString("✓")
	case s == StatusPreview:
		return color.CyanString("~")
	case s == StatusMissing:
		return color.YellowString("?")
	default:
		return color.HiBlackString("-")
	}
}

// 🎯 FormatFileLine formats the outcome for one file as a single line
func FormatFileLine(info FileInfo) string {
	line := fmt.Sprintf("%s%s %-*s %-10s applied=%d skipped=%d failed=%d",
		strings.Repeat(" ", fileIndent),
		statusSymbol(info.Status, info.Failed > 0 || info.Error != nil),
		nameWidth,
		info.Path,
		info.Status,
		info.Applied,
		info.Skipped,
		info.Failed,
	)
	if info.Error != nil {
		line += " error=" + info.Error.Error()
	}
	return line
}

// 📋 FormatFileTable renders the per-file outcomes as a table
func FormatFileTable(files []FileInfo) (string, error) {
	data := pterm.TableData{{"", "File", "Status", "Applied", "Skipped", "Failed", "Backup"}}
	for _, f := range files {
		backup := f.Backup
		if backup == "" {
			backup = "-"
		}
		data = append(data, []string{
			statusSymbol(f.Status, f.Failed > 0 || f.Error != nil),
			f.Path,
			f.Status.String(),
			fmt.Sprint(f.Applied),
			fmt.Sprint(f.Skipped),
			fmt.Sprint(f.Failed),
			backup,
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering file table: %w", err)
	}
	return out, nil
}
