package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 45 // Base width for file path
)

// FileFormatter defines how file outcomes should be formatted for the console
type FileFormatter interface {
	// FormatFileOperation formats a per-file outcome line
	FormatFileOperation(info FileInfo) string

	// FormatError formats a per-path error line
	FormatError(path string, err error) string
}

// DefaultFileFormatter provides the default console formatting
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a per-file outcome line with a colored symbol
func (f *DefaultFileFormatter) FormatFileOperation(info FileInfo) string {
	var prefix string
	var detail string

	switch info.Status {
	case StatusChanged:
		prefix = color.GreenString("⟳")
		noun := "replacements"
		if info.Replacements == 1 {
			noun = "replacement"
		}
		detail = fmt.Sprintf("%d %s", info.Replacements, noun)
	case StatusUnchanged:
		prefix = color.HiBlackString("-")
		detail = "unchanged"
	case StatusSkipped:
		prefix = color.YellowString("∅")
		detail = "skipped"
		if info.Reason != "" {
			detail = "skipped (" + info.Reason + ")"
		}
	case StatusErrored:
		prefix = color.RedString("✗")
		detail = fmt.Sprintf("error: %v", info.Err)
	default:
		prefix = color.HiBlackString("?")
		detail = "unknown"
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, info.Path)

	return fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		detail,
	)
}

// FormatError formats a per-path error line
func (f *DefaultFileFormatter) FormatError(path string, err error) string {
	return fmt.Sprintf("%s%s %s %v",
		strings.Repeat(" ", fileIndent),
		color.RedString("✗"),
		path,
		err,
	)
}
