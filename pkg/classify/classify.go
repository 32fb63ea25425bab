// Package classify decides whether a file's content should be treated as
// text or skipped as binary. The check is a heuristic over a bounded prefix
// of the file: cheap (O(1) per file regardless of size) but able to
// misclassify in rare cases, which callers are expected to tolerate.
package classify

import (
	"io"
	"os"
)

// 🏷️ Result is the outcome of classifying a single file.
type Result int

const (
	Text Result = iota
	Binary
	Unreadable
)

// String returns a string representation of the Result
func (r Result) String() string {
	switch r {
	case Text:
		return "text"
	case Binary:
		return "binary"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// 🎛️ Defaults for the sniffing heuristic. A NUL byte anywhere in the prefix,
// or control bytes (outside tab/newline/carriage-return) above the threshold
// fraction, classifies the file as binary.
const (
	DefaultPrefixSize       = 4096
	DefaultControlThreshold = 0.30
)

// 🔬 Classifier sniffs file content. The zero value is not usable; construct
// with New or NewWithLimits.
type Classifier struct {
	prefixSize int
	threshold  float64
}

// 🏭 New creates a classifier with the default prefix size and threshold.
func New() *Classifier {
	return NewWithLimits(DefaultPrefixSize, DefaultControlThreshold)
}

// NewWithLimits creates a classifier with an explicit sniff prefix size in
// bytes and control-byte threshold in (0, 1].
func NewWithLimits(prefixSize int, threshold float64) *Classifier {
	if prefixSize <= 0 {
		prefixSize = DefaultPrefixSize
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultControlThreshold
	}
	return &Classifier{
		prefixSize: prefixSize,
		threshold:  threshold,
	}
}

// 🔍 Classify reads a bounded prefix of the file and reports whether it looks
// like text. Empty files are text (trivially nothing to replace). Files that
// cannot be opened or read, such as permission errors or files that vanished
// between enumeration and the read, are Unreadable.
func (c *Classifier) Classify(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Unreadable
	}
	defer f.Close()

	buf := make([]byte, c.prefixSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unreadable
	}
	if n == 0 {
		return Text
	}

	control := 0
	for _, b := range buf[:n] {
		if b == 0x00 {
			return Binary
		}
		if b == 0x7f || (b < 0x20 && b != '\t' && b != '\n' && b != '\r') {
			control++
		}
	}

	if float64(control)/float64(n) > c.threshold {
		return Binary
	}
	return Text
}
