// Package types defines every cross‑package data structure used by the cli2text CLI.
package types

import (
	"sort"
)

const (
	// EmptyExtensionMarker stands in for files without an extension in extension summaries.
	EmptyExtensionMarker = "' '"
)

// TraversalConfig is the immutable configuration of a single aggregation run.
type TraversalConfig struct {
	RootDirectory      string
	SizeThresholdBytes int64
	IncludeAll         bool
	RespectGitignore   bool
	// ExcludedPaths holds absolute file paths that are never aggregated, such as the run's own destination.
	ExcludedPaths []string
}

// DirectoryEntry describes one filesystem entry encountered during traversal.
type DirectoryEntry struct {
	Name        string
	IsDirectory bool
	FullPath    string
	// Extension is lowercased and keeps its leading dot; empty when the name has none.
	Extension string
}

// Classification is the decision taken for a directory entry.
type Classification int

const (
	Recurse Classification = iota
	SkipIgnoredName
	SkipImageExtension
	SkipOversized
	SkipBinary
	SkipUnreadable
	Include
)

var classificationNames = map[Classification]string{
	Recurse:            "recurse",
	SkipIgnoredName:    "skip-ignored-name",
	SkipImageExtension: "skip-image-extension",
	SkipOversized:      "skip-oversized",
	SkipBinary:         "skip-binary",
	SkipUnreadable:     "skip-unreadable",
	Include:            "include",
}

func (classification Classification) String() string {
	if name, known := classificationNames[classification]; known {
		return name
	}
	return "unknown"
}

// IsSkip reports whether the classification excludes the entry from the output.
func (classification Classification) IsSkip() bool {
	return classification != Recurse && classification != Include
}

// ExtensionSet is an unordered set of file extensions.
type ExtensionSet map[string]struct{}

// Add records extension, substituting EmptyExtensionMarker for an empty one.
func (set ExtensionSet) Add(extension string) {
	if extension == "" {
		extension = EmptyExtensionMarker
	}
	set[extension] = struct{}{}
}

// Contains reports whether extension was recorded.
func (set ExtensionSet) Contains(extension string) bool {
	if extension == "" {
		extension = EmptyExtensionMarker
	}
	_, exists := set[extension]
	return exists
}

// Values returns the recorded extensions in map iteration order.
func (set ExtensionSet) Values() []string {
	values := make([]string, 0, len(set))
	for extension := range set {
		values = append(values, extension)
	}
	return values
}

// Sorted returns the recorded extensions in lexical order.
func (set ExtensionSet) Sorted() []string {
	values := set.Values()
	sort.Strings(values)
	return values
}

// RunSummary holds the bookkeeping of one aggregation run.
type RunSummary struct {
	ProcessedFileCount  int
	SkippedFileCount    int
	SkippedExtensions   ExtensionSet
	ProcessedExtensions ExtensionSet
}

// NewRunSummary returns a RunSummary with initialized extension sets.
func NewRunSummary() RunSummary {
	return RunSummary{
		SkippedExtensions:   ExtensionSet{},
		ProcessedExtensions: ExtensionSet{},
	}
}

// EventKind identifies what an Event reports.
type EventKind string

const (
	EventKindDirectory EventKind = "directory"
	EventKindFile      EventKind = "file"
)

// Event reports a single traversal decision to observers such as progress displays.
type Event struct {
	Kind           EventKind
	Path           string
	RelativePath   string
	Classification Classification
	SizeBytes      int64
	Processed      int
	Skipped        int
}
