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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupTimeFormat is the timestamp inside backup and log file names
const BackupTimeFormat = "20060102_150405"

const logPrefix = "patch_log_"

// 📊 FileStatus is the outcome of a run for one target file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusMissing              // Target not found in the folder
	StatusUnchanged            // Read, but nothing was written
	StatusModified             // Written with applied patches
	StatusPreview              // Would be written (dry run)
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusUnchanged:
		return "unchanged"
	case StatusModified:
		return "modified"
	case StatusPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// 📄 FileInfo records what a run did to one file
type FileInfo struct {
	Path     string     // Path relative to the base directory
	Status   FileStatus // Outcome
	Applied  int        // Patches applied
	Skipped  int        // Patches already present (or skipped)
	Failed   int        // Patches whose anchor was not found
	Backup   string     // Backup path, if one was taken
	Checksum string     // SHA-256 of the final content
	Error    error      // Any error associated with this file
}

// 🔧 Manager does every file system operation of a run, rooted at one folder,
// and remembers what happened to each file
type Manager struct {
	baseDir string          // Base directory for all operations
	logger  *zerolog.Logger // Logger for status updates
	now     func() time.Time

	// Status tracking
	mu    sync.RWMutex
	files map[string]FileInfo
	order []string
}

// 🏭 New creates a new status manager
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir: filepath.Clean(baseDir),
		logger:  logger,
		now:     time.Now,
		files:   make(map[string]FileInfo),
	}
}

// WithClock replaces the clock used for backup and log names
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// BaseDir returns the folder the manager is rooted at
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Now returns the manager's current time
func (m *Manager) Now() time.Time {
	return m.now()
}

// 🔒 AbsPath returns the absolute path for a given relative path
func (m *Manager) AbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, filepath.FromSlash(path))
}

// 🔍 calculateChecksum generates a SHA-256 hash of the content
func calculateChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ReadFile reads a file below the base directory
func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.AbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// FileExists reports whether path is a regular file
func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	fi, err := os.Stat(m.AbsPath(path))
	if err == nil {
		return fi.Mode().IsRegular(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

// Glob returns the regular files below the base directory that match a
// doublestar pattern, sorted. Files the tool writes itself (backups, run logs
// and temp files) never match.
func (m *Manager) Glob(ctx context.Context, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(m.baseDir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("matching %q: %w", pattern, err)
	}
	files := matches[:0]
	for _, match := range matches {
		if !isOwnFile(match) {
			files = append(files, match)
		}
	}
	sort.Strings(files)
	return files, nil
}

// isOwnFile reports whether path is a backup, run log or temp file
func isOwnFile(path string) bool {
	base := filepath.Base(filepath.FromSlash(path))
	return strings.HasSuffix(base, ".bak") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasPrefix(base, logPrefix)
}

// WriteFileAtomic replaces path through a temp file in the same directory.
// An existing file keeps its permissions.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.AbsPath(path)

	perm := os.FileMode(0o644)
	if fi, err := os.Stat(absPath); err == nil {
		perm = fi.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()
	defer os.Remove(tempPath) // no-op once renamed

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return errors.Errorf("setting permissions: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, absPath); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	m.logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return nil
}

// WriteFileIfChanged writes updated only when it differs from original
func (m *Manager) WriteFileIfChanged(ctx context.Context, path string, original, updated []byte) (bool, error) {
	if string(original) == string(updated) {
		return false, nil
	}
	if err := m.WriteFileAtomic(ctx, path, updated); err != nil {
		return false, err
	}
	return true, nil
}

// BackupName returns the backup path for path at time t
func BackupName(path string, t time.Time) string {
	return path + "." + t.Format(BackupTimeFormat) + ".bak"
}

// maxBackupAttempts bounds the numbered names tried when a backup name is taken
const maxBackupAttempts = 100

// backupNameN is BackupName with a sequence number, used when that name exists
func backupNameN(path string, t time.Time, n int) string {
	return fmt.Sprintf("%s.%s.%d.bak", path, t.Format(BackupTimeFormat), n)
}

// BackupFile copies path to a timestamped sibling, keeping permissions and
// modification time, and returns the backup's path. A missing file is an error.
// An existing backup is never overwritten; a numbered name is used instead.
func (m *Manager) BackupFile(ctx context.Context, path string) (string, error) {
	absPath := m.AbsPath(path)

	fi, err := os.Stat(absPath)
	if err != nil {
		return "", errors.Errorf("checking file existence: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return "", errors.Errorf("backing up %s: not a regular file", path)
	}

	now := m.now()
	backupPath := BackupName(absPath, now)
	for n := 1; ; n++ {
		err := copyFile(absPath, backupPath, fi.Mode().Perm())
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) || n > maxBackupAttempts {
			return "", errors.Errorf("creating backup: %w", err)
		}
		backupPath = backupNameN(absPath, now, n)
	}
	if err := os.Chtimes(backupPath, fi.ModTime(), fi.ModTime()); err != nil {
		return "", errors.Errorf("preserving backup times: %w", err)
	}

	m.logger.Debug().Str("path", path).Str("backup", backupPath).Msg("backup created")
	return backupPath, nil
}

// LogName returns the run log file name for time t
func LogName(t time.Time) string {
	return logPrefix + t.Format(BackupTimeFormat) + ".txt"
}

// WriteLog persists the run log lines under the base directory and returns the
// full path
func (m *Manager) WriteLog(ctx context.Context, name string, lines []string) (string, error) {
	absPath := m.AbsPath(name)
	if err := os.WriteFile(absPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return "", errors.Errorf("writing log file: %w", err)
	}
	return absPath, nil
}

// TrackFile records the outcome for a file, replacing any earlier record
func (m *Manager) TrackFile(ctx context.Context, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[info.Path]; !ok {
		m.order = append(m.order, info.Path)
	}
	m.files[info.Path] = info

	ev := m.logger.Debug()
	if info.Error != nil {
		ev = m.logger.Warn().Err(info.Error)
	}
	ev.Str("path", info.Path).
		Str("status", info.Status.String()).
		Int("applied", info.Applied).
		Int("skipped", info.Skipped).
		Int("failed", info.Failed).
		Msg(FormatFileLine(info))
}

// SetChecksum records the checksum of a tracked file's final content
func (m *Manager) SetChecksum(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info, ok := m.files[path]; ok {
		info.Checksum = calculateChecksum(content)
		m.files[path] = info
	}
}

// GetFileInfo returns the tracked record for path
func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns tracked records in the order they were first tracked
func (m *Manager) ListFiles(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.order))
	for _, p := range m.order {
		files = append(files, m.files[p])
	}
	return files
}

func copyFile(src, dst string, perm os.FileMode) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return errors.Errorf("copying file: %w", err)
	}

	if err := destination.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	if err := os.Chmod(dst, perm); err != nil {
		return errors.Errorf("setting permissions: %w", err)
	}

	return nil
}
