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
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/fr/pkg/classify"
	"github.com/walteh/fr/pkg/status"
	"github.com/walteh/fr/pkg/walk"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🏃 Execute runs the operation. The walker enumerates sequentially while a
// bounded pool processes files in parallel. Each file's read/classify/
// substitute/write sequence is independent, and outcomes funnel into the
// status manager, the single accumulation point.
//
// Per-file and per-subtree failures are collected, never fatal; only an
// inaccessible root aborts the run.
func (op *Operation) Execute(ctx context.Context) (status.Summary, error) {
	cfg := op.opts.Config

	zerolog.Ctx(ctx).Debug().
		Str("config", cfg.String()).
		Msg("starting replace operation")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	walkErrs, err := op.opts.Walker.Walk(ctx, func(entry walk.Entry) {
		g.Go(func() error {
			op.processFile(gctx, entry)
			return nil
		})
	})
	if err != nil {
		return status.Summary{}, errors.Errorf("walking tree: %w", err)
	}

	// workers never return errors, outcomes flow through the status manager
	_ = g.Wait()

	for _, we := range walkErrs {
		op.opts.StatusMgr.TrackWalkError(ctx, we.Path, we.Err)
	}

	return op.opts.StatusMgr.Summary(), nil
}

// 📄 processFile classifies one candidate file and substitutes when it is text
func (op *Operation) processFile(ctx context.Context, entry walk.Entry) {
	if reason := op.filtered(entry.RelPath); reason != "" {
		op.opts.StatusMgr.Track(ctx, status.FileInfo{
			Path:   entry.RelPath,
			Status: status.StatusSkipped,
			Reason: reason,
		})
		return
	}

	switch op.opts.Classifier.Classify(entry.Path) {
	case classify.Binary:
		op.opts.StatusMgr.Track(ctx, status.FileInfo{
			Path:   entry.RelPath,
			Status: status.StatusSkipped,
			Reason: "binary",
		})
		return
	case classify.Unreadable:
		op.opts.StatusMgr.Track(ctx, status.FileInfo{
			Path:   entry.RelPath,
			Status: status.StatusErrored,
			Err:    errors.New("file is unreadable"),
		})
		return
	}

	outcome := op.opts.Replacer.ReplaceFile(ctx, entry.Path, op.opts.Find, op.opts.Replace)

	info := status.FileInfo{
		Path:         entry.RelPath,
		Replacements: outcome.Occurrences,
	}
	switch {
	case outcome.Err != nil:
		info.Status = status.StatusErrored
		info.Err = outcome.Err
	case outcome.Changed:
		info.Status = status.StatusChanged
	default:
		info.Status = status.StatusUnchanged
	}
	op.opts.StatusMgr.Track(ctx, info)
}

// 🔍 filtered applies the config-level skip/only globs on top of the ignore
// rules the walker already enforced. Returns a human-readable reason when the
// file should not be processed, or "" to proceed.
func (op *Operation) filtered(relPath string) string {
	rel := filepath.ToSlash(relPath)

	if len(op.opts.Config.Only) > 0 {
		matchedAny := false
		for _, pattern := range op.opts.Config.Only {
			if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
				matchedAny = true
				break
			}
		}
		if !matchedAny {
			return "outside only globs"
		}
	}

	for _, pattern := range op.opts.Config.Skip {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return "skip glob " + pattern
		}
	}

	return ""
}
