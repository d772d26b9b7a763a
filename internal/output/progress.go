package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/tyemirov/cli2text/internal/types"
)

const progressLineFormat = "Processing files... %d processed, %d skipped"

// ProgressReporter redraws a single status line as traversal events arrive.
// A disabled reporter writes nothing.
type ProgressReporter struct {
	writer         io.Writer
	enabled        bool
	lastLineLength int
	events         int
}

// NewProgressReporter returns a reporter writing to writer. Enable it only for interactive terminals.
func NewProgressReporter(writer io.Writer, enabled bool) *ProgressReporter {
	return &ProgressReporter{writer: writer, enabled: enabled}
}

// Observe records event and redraws the status line for file decisions.
func (reporter *ProgressReporter) Observe(event types.Event) {
	reporter.events++
	if !reporter.enabled || event.Kind != types.EventKindFile {
		return
	}
	line := fmt.Sprintf(progressLineFormat, event.Processed, event.Skipped)
	padding := ""
	if reporter.lastLineLength > len(line) {
		padding = strings.Repeat(" ", reporter.lastLineLength-len(line))
	}
	fmt.Fprint(reporter.writer, "\r"+line+padding)
	reporter.lastLineLength = len(line)
}

// Events returns how many events were observed.
func (reporter *ProgressReporter) Events() int {
	return reporter.events
}

// Finish erases the status line.
func (reporter *ProgressReporter) Finish() {
	if !reporter.enabled || reporter.lastLineLength == 0 {
		return
	}
	fmt.Fprint(reporter.writer, "\r"+strings.Repeat(" ", reporter.lastLineLength)+"\r")
	reporter.lastLineLength = 0
}
