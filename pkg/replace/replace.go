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

// Package replace performs literal find-and-replace on file content and
// rewrites changed files atomically.
package replace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Result describes an in-memory replacement pass.
type Result struct {
	Content     []byte // content after replacement
	Occurrences int    // number of replacements performed
	Changed     bool   // whether Content differs from the input
}

// 📄 Outcome describes the result of substituting in one file on disk.
type Outcome struct {
	Path        string
	Occurrences int
	Changed     bool
	Err         error
}

// 🔄 Replacer applies literal string substitution. Matching is exact
// byte-sequence matching: no regex metacharacters, no escapes. Safe for
// concurrent use across distinct files.
type Replacer struct {
	// DryRun counts occurrences without writing any file back.
	DryRun bool
}

// 🏭 New creates a Replacer.
func New(dryRun bool) *Replacer {
	return &Replacer{DryRun: dryRun}
}

// ReplaceBytes substitutes every non-overlapping leftmost occurrence of find
// with repl. The scan resumes after the inserted replacement text, so matches
// are never searched for inside text a replacement produced: find="a",
// repl="aa" on "a" yields "aa" with exactly one occurrence.
func (r *Replacer) ReplaceBytes(content []byte, find, repl string) Result {
	text := string(content)
	count := strings.Count(text, find)
	if count == 0 {
		return Result{Content: content}
	}
	return Result{
		Content:     []byte(strings.ReplaceAll(text, find, repl)),
		Occurrences: count,
		Changed:     true,
	}
}

// 🏃 ReplaceFile reads path, substitutes find with repl, and writes the file
// back only when something changed. Unchanged files are never written, which
// preserves their modification time. find must be non-empty.
func (r *Replacer) ReplaceFile(ctx context.Context, path, find, repl string) Outcome {
	outcome := Outcome{Path: path}

	if find == "" {
		outcome.Err = errors.New("find text must not be empty")
		return outcome
	}

	content, err := os.ReadFile(path)
	if err != nil {
		outcome.Err = errors.Errorf("reading file: %w", err)
		return outcome
	}

	result := r.ReplaceBytes(content, find, repl)
	outcome.Occurrences = result.Occurrences
	if !result.Changed {
		return outcome
	}

	if r.DryRun {
		outcome.Changed = true
		zerolog.Ctx(ctx).Debug().
			Str("path", path).
			Int("occurrences", result.Occurrences).
			Msg("dry run, skipping write")
		return outcome
	}

	info, err := os.Stat(path)
	if err != nil {
		outcome.Err = errors.Errorf("stating file: %w", err)
		return outcome
	}

	if err := writeFileAtomic(path, result.Content, info.Mode().Perm()); err != nil {
		outcome.Err = errors.Errorf("writing file: %w", err)
		return outcome
	}

	outcome.Changed = true
	return outcome
}

// 💾 writeFileAtomic writes content to a temporary file in the same directory
// and renames it over path. The target is never observed in a partially
// written state, and no temporary artifact persists after success or failure.
func writeFileAtomic(path string, content []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
