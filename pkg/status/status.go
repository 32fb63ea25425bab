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
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 📊 FileStatus represents the outcome for one processed file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusChanged              // Occurrences replaced and file rewritten
	StatusUnchanged            // Text file, no occurrences found
	StatusSkipped              // Binary or filtered file, never opened for writing
	StatusErrored              // Read, classify, or write failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusChanged:
		return "changed"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains the per-file outcome fed to the manager
type FileInfo struct {
	Path         string     // Path relative to the run root
	Status       FileStatus // Outcome for this file
	Replacements int        // Occurrences replaced (0 unless StatusChanged)
	Reason       string     // Optional detail, e.g. "binary" or "glob filter"
	Err          error      // Set when Status is StatusErrored
}

// ⚠️ FileError is one collected per-path failure
type FileError struct {
	Path string
	Err  error
}

// 🧮 Summary is the aggregate result of a run
type Summary struct {
	FilesScanned      int
	FilesChanged      int
	TotalReplacements int
	Errors            []FileError
}

// 🔧 Manager aggregates per-file outcomes into a run summary. It is the
// single accumulation point for the worker pool: all mutation happens under
// one mutex, workers share nothing else.
type Manager struct {
	logger    *zerolog.Logger
	console   io.Writer
	formatter FileFormatter
	verbose   bool

	mu      sync.Mutex
	summary Summary
}

// 🏭 NewManager creates a status manager writing per-file lines and the final
// summary to console. Per-file lines for unchanged and skipped files only
// appear when verbose is set; changed files and errors always print.
func NewManager(console io.Writer, logger *zerolog.Logger, verbose bool) *Manager {
	return &Manager{
		logger:    logger,
		console:   console,
		formatter: NewDefaultFileFormatter(),
		verbose:   verbose,
	}
}

// 📝 Track records the outcome for one file
func (m *Manager) Track(ctx context.Context, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary.FilesScanned++
	switch info.Status {
	case StatusChanged:
		m.summary.FilesChanged++
		m.summary.TotalReplacements += info.Replacements
	case StatusErrored:
		m.summary.Errors = append(m.summary.Errors, FileError{Path: info.Path, Err: info.Err})
	}

	if m.verbose || info.Status == StatusErrored || info.Status == StatusChanged {
		fmt.Fprintln(m.console, m.formatter.FormatFileOperation(info))
	}

	m.logger.Debug().
		Str("path", info.Path).
		Str("status", info.Status.String()).
		Int("replacements", info.Replacements).
		Err(info.Err).
		Msg("file processed")
}

// 📝 TrackWalkError records a traversal failure for a subtree. It does not
// count toward files scanned.
func (m *Manager) TrackWalkError(ctx context.Context, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary.Errors = append(m.summary.Errors, FileError{Path: path, Err: err})
	fmt.Fprintln(m.console, m.formatter.FormatError(path, err))

	m.logger.Warn().Str("path", path).Err(err).Msg("traversal error")
}

// 🧮 Summary returns a copy of the aggregate so far
func (m *Manager) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.summary
	out.Errors = append([]FileError(nil), m.summary.Errors...)
	return out
}

// 📝 PrintSummary writes the human-readable run summary
func (m *Manager) PrintSummary(ctx context.Context) {
	s := m.Summary()

	fmt.Fprintf(m.console, "\n%s %d scanned, %s, %s\n",
		color.New(color.Bold).Sprint("done:"),
		s.FilesScanned,
		color.GreenString("%d changed", s.FilesChanged),
		color.CyanString("%d replacements", s.TotalReplacements),
	)

	if len(s.Errors) > 0 {
		fmt.Fprintf(m.console, "%s\n", color.RedString("%d paths errored:", len(s.Errors)))
		for _, fe := range s.Errors {
			fmt.Fprintln(m.console, m.formatter.FormatError(fe.Path, fe.Err))
		}
	}

	m.logger.Info().
		Int("scanned", s.FilesScanned).
		Int("changed", s.FilesChanged).
		Int("replacements", s.TotalReplacements).
		Int("errors", len(s.Errors)).
		Msg("run complete")
}
