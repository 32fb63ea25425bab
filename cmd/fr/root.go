package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fr/pkg/classify"
	"github.com/walteh/fr/pkg/config"
	"github.com/walteh/fr/pkg/operation"
	"github.com/walteh/fr/pkg/replace"
	"github.com/walteh/fr/pkg/status"
	"github.com/walteh/fr/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debugLog   bool
	dryRun     bool
	verbose    bool
	workers    int
)

// newRootCmd creates the root command for the fr binary
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fr <find_text> <replace_text>",
		Short: "find and replace text in files, recursively",
		Long: `fr replaces every occurrence of <find_text> with <replace_text> in all
text files under the current directory. Matching is literal: no regular
expressions, no escape sequences.

Files and directories matched by .gitignore rules are skipped, as are
.git directories and files that look binary. Each file is rewritten
atomically, so a crash mid-run never leaves a half-written file behind.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       GetVersionInfo().Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			return run(cmd, args[0], args[1])
		},
	}

	addRootFlags(cmd)
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: discover .fr.yaml, .fr.json or .fr.hcl)")
	cmd.PersistentFlags().BoolVarP(&debugLog, "debug", "d", false, "enable debug logging")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "count occurrences without writing any files")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print a status line for every scanned file")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "number of parallel file workers (0 = auto)")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debugLog {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}

// run wires the traversal, classification and replacement pipeline together
// and executes a single find-replace pass rooted at the working directory.
func run(cmd *cobra.Command, findText, replaceText string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	if findText == "" {
		return errors.New("find text must not be empty")
	}

	root, err := os.Getwd()
	if err != nil {
		return errors.Errorf("getting working directory: %w", err)
	}

	var cfg *config.Config
	if configFile != "" {
		cfg, err = config.Load(ctx, configFile)
	} else {
		cfg, err = config.Discover(ctx, root)
	}
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	// Flags win over values from the config file, but only when set.
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating config: %w", err)
	}

	userLogger := status.NewUserLogger(ctx)

	if findText == replaceText {
		userLogger.Warning("find and replace text are identical, nothing to do")
		return nil
	}

	classifier := classify.New()
	if cfg.Binary != nil {
		classifier = classify.NewWithLimits(cfg.Binary.PrefixBytes, cfg.Binary.ControlThreshold)
	}

	statusMgr := status.NewManager(cmd.OutOrStdout(), logger, cfg.Verbose)

	op, err := operation.New(operation.Options{
		Config:     cfg,
		Find:       findText,
		Replace:    replaceText,
		Walker:     walk.New(root),
		Classifier: classifier,
		Replacer:   replace.New(cfg.DryRun),
		StatusMgr:  statusMgr,
	})
	if err != nil {
		return errors.Errorf("creating operation: %w", err)
	}

	userLogger.LogRunStart(root, findText, replaceText, cfg.DryRun)

	summary, err := op.Execute(ctx)
	if err != nil {
		return errors.Errorf("running replace: %w", err)
	}

	statusMgr.PrintSummary(ctx)
	userLogger.LogRunComplete(summary)

	// Per-file errors are reported in the summary, never via exit status.
	return nil
}
