package status

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger provides user-friendly feedback about run phases, separate
// from the per-file console lines the Manager prints.
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 LogRunStart announces the run parameters
func (u *UserLogger) LogRunStart(root, find, replace string, dryRun bool) {
	msg := fmt.Sprintf("replacing %q with %q under %s", find, replace, root)
	if dryRun {
		msg += " (dry run)"
	}
	pterm.Info.WithPrefix(pterm.Prefix{Text: "🔍"}).Println(msg)
	u.log.Info().
		Str("root", root).
		Bool("dry_run", dryRun).
		Msg("run started")
}

// 📝 LogRunComplete announces completion
func (u *UserLogger) LogRunComplete(s Summary) {
	if len(s.Errors) > 0 {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).
			Printf("completed with %d errors\n", len(s.Errors))
	} else {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println("completed")
	}
	u.log.Info().Int("errors", len(s.Errors)).Msg("run complete")
}

// 📝 Warning logs a user-visible warning
func (u *UserLogger) Warning(msg string) {
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(msg)
	u.log.Warn().Msg(msg)
}
