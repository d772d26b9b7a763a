// Package classify decides whether a directory entry is descended into, skipped, or included in the aggregate output.
package classify

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tyemirov/cli2text/internal/types"
	"github.com/tyemirov/cli2text/internal/utils"
)

// packagingMetadataSuffix marks Python packaging metadata directories such as "project.egg-info".
const packagingMetadataSuffix = ".egg-info"

// DefaultIgnoreNames lists entry names that are never aggregated. Matching is exact and case-sensitive.
var DefaultIgnoreNames = NewSet(
	"node_modules",
	utils.GitDirectoryName,
	".env",
	".venv",
	"__pycache__",
	utils.GitIgnoreFileName,
	"package-lock.json",
	"package.json",
	utils.DefaultOutputFileName,
)

// DefaultImageExtensions lists lowercased image extensions that are always skipped.
var DefaultImageExtensions = NewSet(
	".jpg",
	".jpeg",
	".png",
	".gif",
	".bmp",
	".svg",
	".svg~",
	".webp",
	".tiff",
)

// Set is an immutable set of strings.
type Set struct {
	members map[string]struct{}
}

// NewSet builds a Set from values.
func NewSet(values ...string) Set {
	members := make(map[string]struct{}, len(values))
	for _, value := range values {
		members[value] = struct{}{}
	}
	return Set{members: members}
}

// Contains reports whether value is a member.
func (set Set) Contains(value string) bool {
	_, exists := set.members[value]
	return exists
}

// Len returns the number of members.
func (set Set) Len() int {
	return len(set.members)
}

// Options configures a Classifier. Zero-valued sets fall back to the defaults.
type Options struct {
	IgnoreNames        *Set
	ImageExtensions    *Set
	SizeThresholdBytes int64
	IncludeAll         bool
	Detector           BinaryDetector
	// Matcher adds ignore rules loaded from a .gitignore file; nil disables them.
	Matcher Matcher
	// ExcludedPaths are absolute file paths classified as ignored names.
	ExcludedPaths []string
}

// Classifier applies the inclusion policy to directory entries.
type Classifier struct {
	ignoreNames        Set
	imageExtensions    Set
	sizeThresholdBytes int64
	includeAll         bool
	detector           BinaryDetector
	matcher            Matcher
	excludedPaths      Set
}

// New constructs a Classifier from options.
func New(options Options) *Classifier {
	classifier := &Classifier{
		ignoreNames:        DefaultIgnoreNames,
		imageExtensions:    DefaultImageExtensions,
		sizeThresholdBytes: options.SizeThresholdBytes,
		includeAll:         options.IncludeAll,
		detector:           options.Detector,
		matcher:            options.Matcher,
	}
	if options.IgnoreNames != nil {
		classifier.ignoreNames = *options.IgnoreNames
	}
	if options.ImageExtensions != nil {
		classifier.imageExtensions = *options.ImageExtensions
	}
	if classifier.detector == nil {
		classifier.detector = ContentDetector{}
	}
	cleanedExclusions := make([]string, 0, len(options.ExcludedPaths))
	for _, excludedPath := range options.ExcludedPaths {
		if excludedPath != "" {
			cleanedExclusions = append(cleanedExclusions, filepath.Clean(excludedPath))
		}
	}
	classifier.excludedPaths = NewSet(cleanedExclusions...)
	return classifier
}

// NewEntry derives a DirectoryEntry for the child name inside parentDirectory.
func NewEntry(parentDirectory string, name string, isDirectory bool) types.DirectoryEntry {
	return types.DirectoryEntry{
		Name:        name,
		IsDirectory: isDirectory,
		FullPath:    filepath.Join(parentDirectory, name),
		Extension:   utils.FileExtension(name),
	}
}

// IsIgnoredName reports whether entry is excluded by name alone, without touching the filesystem.
func (classifier *Classifier) IsIgnoredName(entry types.DirectoryEntry) bool {
	if classifier.ignoreNames.Contains(entry.Name) {
		return true
	}
	if entry.IsDirectory {
		if strings.HasSuffix(entry.Name, packagingMetadataSuffix) {
			return true
		}
	} else if classifier.excludedPaths.Contains(filepath.Clean(entry.FullPath)) {
		return true
	}
	return classifier.matcher != nil && classifier.matcher.Match(entry.FullPath, entry.IsDirectory)
}

// IsImage reports whether entry carries an image extension.
func (classifier *Classifier) IsImage(entry types.DirectoryEntry) bool {
	return !entry.IsDirectory && classifier.imageExtensions.Contains(entry.Extension)
}

// Classify returns the decision for entry. info must describe the entry; a nil info for a file means it could not be stat'ed.
func (classifier *Classifier) Classify(entry types.DirectoryEntry, info fs.FileInfo) types.Classification {
	if entry.IsDirectory {
		if classifier.IsIgnoredName(entry) {
			return types.SkipIgnoredName
		}
		return types.Recurse
	}
	if classifier.IsIgnoredName(entry) {
		return types.SkipIgnoredName
	}
	if classifier.IsImage(entry) {
		return types.SkipImageExtension
	}
	if info == nil {
		return types.SkipUnreadable
	}
	if classifier.includeAll {
		return types.Include
	}
	if info.Size() > classifier.sizeThresholdBytes {
		return types.SkipOversized
	}
	isBinary, detectError := classifier.detector.IsBinary(entry.FullPath)
	if detectError != nil {
		return types.SkipUnreadable
	}
	if isBinary {
		return types.SkipBinary
	}
	return types.Include
}

// FromConfig builds a Classifier with the default sets for one traversal run.
// The root .gitignore is loaded only when the configuration asks for it.
func FromConfig(config types.TraversalConfig) (*Classifier, error) {
	options := Options{
		SizeThresholdBytes: config.SizeThresholdBytes,
		IncludeAll:         config.IncludeAll,
		ExcludedPaths:      config.ExcludedPaths,
	}
	if config.RespectGitignore {
		matcher, loadError := LoadGitignoreMatcher(config.RootDirectory)
		if loadError != nil {
			return nil, loadError
		}
		options.Matcher = matcher
	}
	return New(options), nil
}
