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

// Package walk performs a depth-first pre-order traversal of a file tree,
// pruning entries excluded by gitignore rules and yielding surviving regular
// files.
package walk

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/fr/pkg/ignore"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind classifies a filesystem entry.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindOther
)

// 📄 Entry is one regular file that survived ignore filtering.
type Entry struct {
	Path    string // absolute path (symlinks resolved to their target)
	RelPath string // path relative to the walk root
	Kind    Kind   // KindFile, or KindSymlink for files reached via a link
	Depth   int    // 0 for direct children of the root
}

// ⚠️ Error is a non-fatal problem encountered for one path during the walk.
type Error struct {
	Path string
	Err  error
}

// Func receives each surviving file in deterministic pre-order.
type Func func(Entry)

// 🚶 Walker traverses a tree rooted at an explicit path. The root is a
// parameter, never ambient process state, so walks are restartable and
// testable against any directory.
type Walker struct {
	root string
}

// 🏭 New creates a walker rooted at root.
func New(root string) *Walker {
	return &Walker{root: filepath.Clean(root)}
}

// 🏃 Walk traverses the tree. For each directory it loads that directory's
// ignore rules (if present), composes them with inherited rules, prunes
// excluded directories without descending, and yields surviving regular
// files to fn. The root itself is never subject to rule exclusion.
//
// Unreadable subtrees are reported in the returned slice and the walk
// continues past them; only an inaccessible root is a fatal error.
func (w *Walker) Walk(ctx context.Context, fn Func) ([]Error, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, errors.Errorf("accessing root %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("root %s is not a directory", w.root)
	}

	resolvedRoot, err := filepath.EvalSymlinks(w.root)
	if err != nil {
		return nil, errors.Errorf("resolving root %s: %w", w.root, err)
	}

	var walkErrs []Error
	w.walkDir(ctx, w.root, 0, []string{resolvedRoot}, ignore.NewStack(), fn, &walkErrs)
	return walkErrs, nil
}

// walkDir handles one directory: push its rules, enumerate, filter, recurse.
// chain holds the resolved paths of every directory on the ancestor path,
// root first; the symlink cycle check tests against it.
func (w *Walker) walkDir(ctx context.Context, dir string, depth int, chain []string, stack *ignore.Stack, fn Func, walkErrs *[]Error) {
	if ctx.Err() != nil {
		return
	}

	logger := zerolog.Ctx(ctx)

	rs, err := ignore.CompileRuleSet(ctx, dir)
	if err != nil {
		*walkErrs = append(*walkErrs, Error{Path: dir, Err: err})
	}
	if stack.Push(rs) {
		defer stack.Pop()
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		*walkErrs = append(*walkErrs, Error{Path: dir, Err: errors.Errorf("reading directory: %w", err)})
		return
	}

	for _, de := range dirEntries {
		path := filepath.Join(dir, de.Name())

		target := path
		kind := entryKind(de.Type())
		isDir := de.IsDir()

		if kind == KindSymlink {
			resolved, resolvedDir, ok := w.resolveSymlink(ctx, path, chain)
			if !ok {
				continue
			}
			target = resolved
			isDir = resolvedDir
		}

		if stack.Excluded(path, isDir) {
			logger.Debug().Str("path", path).Bool("dir", isDir).Msg("excluded by ignore rules")
			continue
		}

		switch {
		case isDir:
			// Descend via the link path, not the resolved target, so nested
			// ignore rules keep matching against tree positions. The chain
			// carries resolved paths for cycle detection.
			resolved := target
			if kind == KindDir {
				resolved = filepath.Join(chain[len(chain)-1], de.Name())
			}
			w.walkDir(ctx, path, depth+1, append(chain, resolved), stack, fn, walkErrs)
		case kind == KindFile || kind == KindSymlink:
			rel, err := filepath.Rel(w.root, path)
			if err != nil {
				rel = path
			}
			fn(Entry{Path: target, RelPath: rel, Kind: kind, Depth: depth})
		default:
			// sockets, devices, pipes
			logger.Debug().Str("path", path).Msg("skipping special file")
		}
	}
}

// resolveSymlink resolves a symlink entry. Links are followed only when the
// target is a regular file or a directory not already on the ancestor chain;
// broken links and cycles are skipped, not errors.
func (w *Walker) resolveSymlink(ctx context.Context, path string, chain []string) (target string, isDir, ok bool) {
	logger := zerolog.Ctx(ctx)

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		logger.Debug().Str("path", path).Err(err).Msg("skipping broken symlink")
		return "", false, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		logger.Debug().Str("path", path).Err(err).Msg("skipping unstatable symlink target")
		return "", false, false
	}

	if info.IsDir() {
		if onAncestorChain(chain, resolved) {
			logger.Debug().Str("path", path).Str("target", resolved).Msg("skipping symlink cycle")
			return "", false, false
		}
		return resolved, true, true
	}

	if !info.Mode().IsRegular() {
		return "", false, false
	}
	return resolved, false, true
}

// onAncestorChain reports whether target is one of the resolved ancestor
// directories, or an ancestor of the deepest one. Either way descending into
// it would re-enter the current path.
func onAncestorChain(chain []string, target string) bool {
	for _, anc := range chain {
		if anc == target {
			return true
		}
	}
	deepest := chain[len(chain)-1]
	sep := string(os.PathSeparator)
	return strings.HasPrefix(deepest+sep, target+sep)
}

// entryKind maps a dirent mode to a Kind.
func entryKind(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}
