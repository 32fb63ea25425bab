// Package operation drives a find-and-replace run: it walks the tree,
// classifies candidate files, and applies the substitution engine to text
// files, aggregating outcomes into a summary.
package operation

import (
	"context"

	"github.com/walteh/fr/pkg/classify"
	"github.com/walteh/fr/pkg/config"
	"github.com/walteh/fr/pkg/replace"
	"github.com/walteh/fr/pkg/status"
	"github.com/walteh/fr/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

// 🚶 Walker yields candidate files under the run root
type Walker interface {
	Walk(ctx context.Context, fn walk.Func) ([]walk.Error, error)
}

// 🔬 Classifier decides whether a file's content is text
type Classifier interface {
	Classify(path string) classify.Result
}

// 🔄 Replacer substitutes text in one file
type Replacer interface {
	ReplaceFile(ctx context.Context, path, find, repl string) replace.Outcome
}

// 🔧 Options contains the collaborators for a replace operation
type Options struct {
	// Config is the run configuration
	Config *config.Config
	// Find is the literal search text, must be non-empty
	Find string
	// Replace is the literal replacement text, may be empty
	Replace string
	// Walker enumerates candidate files
	Walker Walker
	// Classifier filters binary files
	Classifier Classifier
	// Replacer performs the substitution
	Replacer Replacer
	// StatusMgr aggregates outcomes
	StatusMgr *status.Manager
}

// 🎮 Operation is a single find-and-replace run
type Operation struct {
	opts Options
}

// 🏭 New creates an operation with the given collaborators
func New(opts Options) (*Operation, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Config.Workers < 1 {
		return nil, errors.Errorf("config workers must be >= 1, got %d (validate the config first)", opts.Config.Workers)
	}
	if opts.Find == "" {
		return nil, errors.New("find text must not be empty")
	}
	if opts.Walker == nil {
		return nil, errors.New("walker is required")
	}
	if opts.Classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if opts.Replacer == nil {
		return nil, errors.New("replacer is required")
	}
	if opts.StatusMgr == nil {
		return nil, errors.New("status manager is required")
	}
	return &Operation{opts: opts}, nil
}
