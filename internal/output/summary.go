package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/tyemirov/cli2text/internal/types"
)

const (
	completionLineFormat     = "Processed %d files successfully (%d skipped)"
	extensionSummaryHeader   = "Summary of Extensions:"
	skippedExtensionsLabel   = "Skipped Extensions:"
	processedExtensionsLabel = "Processed Extensions:"
	tokenLineFormat          = "Tokens: %d (%s)"
	extensionSeparator       = " "
)

// FormatCompletionLine returns the line reported when a run finishes.
func FormatCompletionLine(summary types.RunSummary) string {
	return fmt.Sprintf(completionLineFormat, summary.ProcessedFileCount, summary.SkippedFileCount)
}

// WriteSummary prints the completion line followed by the skipped and processed extension lists.
// Extensions are listed in set iteration order.
func WriteSummary(writer io.Writer, summary types.RunSummary) {
	fmt.Fprintln(writer, FormatCompletionLine(summary))
	fmt.Fprintln(writer)
	fmt.Fprintln(writer, extensionSummaryHeader)
	fmt.Fprintln(writer, extensionLine(skippedExtensionsLabel, summary.SkippedExtensions))
	fmt.Fprintln(writer, extensionLine(processedExtensionsLabel, summary.ProcessedExtensions))
}

// WriteTokenLine prints the token estimate of the aggregate output.
func WriteTokenLine(writer io.Writer, tokenCount int, model string) {
	fmt.Fprintf(writer, tokenLineFormat+"\n", tokenCount, model)
}

func extensionLine(label string, extensions types.ExtensionSet) string {
	values := extensions.Values()
	if len(values) == 0 {
		return label
	}
	return label + " " + strings.Join(values, extensionSeparator)
}
