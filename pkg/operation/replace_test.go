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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fr/pkg/classify"
	"github.com/walteh/fr/pkg/config"
	"github.com/walteh/fr/pkg/replace"
	"github.com/walteh/fr/pkg/status"
	"github.com/walteh/fr/pkg/walk"
)

// makeTree creates files under root; keys are slash-separated relative paths
func makeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
}

// runReplace executes a full pipeline run over root with real collaborators
func runReplace(t *testing.T, root string, cfg *config.Config, find, repl string) status.Summary {
	t.Helper()

	logger := zerolog.Nop()
	require.NoError(t, cfg.Validate())

	op, err := New(Options{
		Config:     cfg,
		Find:       find,
		Replace:    repl,
		Walker:     walk.New(root),
		Classifier: classify.New(),
		Replacer:   replace.New(cfg.DryRun),
		StatusMgr:  status.NewManager(&bytes.Buffer{}, &logger, cfg.Verbose),
	})
	require.NoError(t, err)

	summary, err := op.Execute(context.Background())
	require.NoError(t, err)
	return summary
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestNew_Validation(t *testing.T) {
	cfg := config.Default()
	logger := zerolog.Nop()
	walker := walk.New(".")
	classifier := classify.New()
	replacer := replace.New(false)
	mgr := status.NewManager(&bytes.Buffer{}, &logger, false)

	tests := []struct {
		name      string
		opts      Options
		wantError string
	}{
		{
			name:      "missing_config",
			opts:      Options{Find: "a", Walker: walker, Classifier: classifier, Replacer: replacer, StatusMgr: mgr},
			wantError: "config is required",
		},
		{
			name:      "unvalidated_zero_workers",
			opts:      Options{Config: &config.Config{}, Find: "a", Walker: walker, Classifier: classifier, Replacer: replacer, StatusMgr: mgr},
			wantError: "workers must be >= 1",
		},
		{
			name:      "empty_find",
			opts:      Options{Config: cfg, Walker: walker, Classifier: classifier, Replacer: replacer, StatusMgr: mgr},
			wantError: "find text must not be empty",
		},
		{
			name:      "missing_walker",
			opts:      Options{Config: cfg, Find: "a", Classifier: classifier, Replacer: replacer, StatusMgr: mgr},
			wantError: "walker is required",
		},
		{
			name:      "missing_classifier",
			opts:      Options{Config: cfg, Find: "a", Walker: walker, Replacer: replacer, StatusMgr: mgr},
			wantError: "classifier is required",
		},
		{
			name:      "missing_replacer",
			opts:      Options{Config: cfg, Find: "a", Walker: walker, Classifier: classifier, StatusMgr: mgr},
			wantError: "replacer is required",
		},
		{
			name:      "missing_status_manager",
			opts:      Options{Config: cfg, Find: "a", Walker: walker, Classifier: classifier, Replacer: replacer},
			wantError: "status manager is required",
		},
		{
			name: "complete_options",
			opts: Options{Config: cfg, Find: "a", Walker: walker, Classifier: classifier, Replacer: replacer, StatusMgr: mgr},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := New(tt.opts)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, op)
		})
	}
}

func TestOperation_Execute(t *testing.T) {
	t.Run("ignored_and_binary_files_survive_untouched", func(t *testing.T) {
		root := t.TempDir()
		makeTree(t, root, map[string][]byte{
			".gitignore": []byte("skip.txt\n"),
			"a/x.txt":    []byte("hello world\n"),
			"a/skip.txt": []byte("hello\n"),
			"bin.dat":    append([]byte("hello"), 0x00, 0x01, 0x02),
		})

		summary := runReplace(t, root, config.Default(), "hello", "goodbye")

		assert.Equal(t, "goodbye world\n", readFile(t, filepath.Join(root, "a", "x.txt")))
		assert.Equal(t, "hello\n", readFile(t, filepath.Join(root, "a", "skip.txt")), "ignored file is never touched")
		assert.Equal(t, append([]byte("hello"), 0x00, 0x01, 0x02), []byte(readFile(t, filepath.Join(root, "bin.dat"))), "binary file is never touched")

		assert.Equal(t, 1, summary.FilesChanged)
		assert.Equal(t, 1, summary.TotalReplacements)
		assert.Equal(t, 3, summary.FilesScanned, ".gitignore, a/x.txt and bin.dat")
		assert.Empty(t, summary.Errors)
	})

	t.Run("nested_ignore_file_scopes_its_directory", func(t *testing.T) {
		root := t.TempDir()
		makeTree(t, root, map[string][]byte{
			"a/x.txt":      []byte("hello world"),
			"a/.gitignore": []byte("skip.txt\n"),
			"a/skip.txt":   []byte("hello world"),
		})

		summary := runReplace(t, root, config.Default(), "hello", "hi")

		assert.Equal(t, "hi world", readFile(t, filepath.Join(root, "a", "x.txt")))
		assert.Equal(t, "hello world", readFile(t, filepath.Join(root, "a", "skip.txt")))
		assert.Equal(t, 1, summary.FilesChanged)
		assert.Equal(t, 1, summary.TotalReplacements)
	})

	t.Run("counts_every_occurrence", func(t *testing.T) {
		root := t.TempDir()
		makeTree(t, root, map[string][]byte{
			"a.txt": []byte("foo foo foo"),
			"b.txt": []byte("foo"),
			"c.txt": []byte("bar"),
		})

		summary := runReplace(t, root, config.Default(), "foo", "baz")

		assert.Equal(t, 3, summary.FilesScanned)
		assert.Equal(t, 2, summary.FilesChanged)
		assert.Equal(t, 4, summary.TotalReplacements)
	})

	t.Run("dry_run_changes_nothing_on_disk", func(t *testing.T) {
		root := t.TempDir()
		makeTree(t, root, map[string][]byte{
			"a.txt": []byte("hello hello"),
		})

		cfg := config.Default()
		cfg.DryRun = true
		summary := runReplace(t, root, cfg, "hello", "bye")

		assert.Equal(t, 1, summary.FilesChanged)
		assert.Equal(t, 2, summary.TotalReplacements)
		assert.Equal(t, "hello hello", readFile(t, filepath.Join(root, "a.txt")))
	})

	t.Run("skip_globs_filter_files", func(t *testing.T) {
		root := t.TempDir()
		makeTree(t, root, map[string][]byte{
			"keep.txt":        []byte("hello"),
			"docs/note.md":    []byte("hello"),
			"docs/deep/a.md":  []byte("hello"),
			"docs/deep/a.txt": []byte("hello"),
		})

		cfg := config.Default()
		cfg.Skip = []string{"**/*.md"}
		summary := runReplace(t, root, cfg, "hello", "bye")

		assert.Equal(t, 2, summary.FilesChanged)
		assert.Equal(t, "hello", readFile(t, filepath.Join(root, "docs", "note.md")))
		assert.Equal(t, "bye", readFile(t, filepath.Join(root, "keep.txt")))
		assert.Equal(t, "bye", readFile(t, filepath.Join(root, "docs", "deep", "a.txt")))
	})

	t.Run("only_globs_restrict_files", func(t *testing.T) {
		root := t.TempDir()
		makeTree(t, root, map[string][]byte{
			"src/a.go":  []byte("hello"),
			"src/b.txt": []byte("hello"),
			"main.go":   []byte("hello"),
		})

		cfg := config.Default()
		cfg.Only = []string{"src/**"}
		summary := runReplace(t, root, cfg, "hello", "bye")

		assert.Equal(t, 2, summary.FilesChanged)
		assert.Equal(t, "hello", readFile(t, filepath.Join(root, "main.go")))
		assert.Equal(t, "bye", readFile(t, filepath.Join(root, "src", "a.go")))
	})

	t.Run("unreadable_file_is_collected_not_fatal", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission bits not enforced for root")
		}

		root := t.TempDir()
		makeTree(t, root, map[string][]byte{
			"good.txt":   []byte("hello"),
			"locked.txt": []byte("hello"),
		})
		require.NoError(t, os.Chmod(filepath.Join(root, "locked.txt"), 0o000))

		summary := runReplace(t, root, config.Default(), "hello", "bye")

		assert.Equal(t, 1, summary.FilesChanged)
		require.Len(t, summary.Errors, 1)
		assert.Equal(t, "locked.txt", summary.Errors[0].Path)
		assert.Equal(t, "bye", readFile(t, filepath.Join(root, "good.txt")))
	})

	t.Run("empty_tree", func(t *testing.T) {
		summary := runReplace(t, t.TempDir(), config.Default(), "hello", "bye")
		assert.Zero(t, summary.FilesScanned)
		assert.Zero(t, summary.FilesChanged)
		assert.Empty(t, summary.Errors)
	})

	t.Run("single_worker_still_processes_everything", func(t *testing.T) {
		root := t.TempDir()
		makeTree(t, root, map[string][]byte{
			"a.txt": []byte("hello"),
			"b.txt": []byte("hello"),
			"c.txt": []byte("hello"),
		})

		cfg := config.Default()
		cfg.Workers = 1
		summary := runReplace(t, root, cfg, "hello", "bye")

		assert.Equal(t, 3, summary.FilesChanged)
	})
}
