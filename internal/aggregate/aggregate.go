// Package aggregate walks a directory tree and concatenates the contents of included files into a single text document.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/cli2text/internal/classify"
	"github.com/tyemirov/cli2text/internal/types"
	"github.com/tyemirov/cli2text/internal/utils"
)

const (
	separatorWidth = 80

	fileHeaderPrefix = "File: "
	sizeHeaderPrefix = "Size: "

	decisionLogMessage            = "classified entry"
	nonRegularEntryLogMessage     = "skipping non-regular entry"
	unreadableDirectoryLogMessage = "skipping unreadable directory"
	unreadableFileLogMessage      = "demoting unreadable file"
	cancelledLogMessage           = "traversal cancelled"
)

var (
	separatorLine = strings.Repeat("=", separatorWidth)

	// ErrNotDirectory reports a root path that exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Status reports how a run ended.
type Status int

const (
	// StatusCompleted means every reachable entry was classified.
	StatusCompleted Status = iota
	// StatusCancelled means the context was cancelled before the walk finished.
	StatusCancelled
)

func (status Status) String() string {
	if status == StatusCancelled {
		return "cancelled"
	}
	return "completed"
}

// Result is the outcome of a run. A cancelled run carries the output gathered so far.
type Result struct {
	Output  string
	Summary types.RunSummary
	Status  Status
}

// Options supplies collaborators for a run. Every field is optional.
type Options struct {
	// Classifier overrides the classifier derived from the traversal configuration.
	Classifier *classify.Classifier
	Logger     *zap.Logger
	// Observer is called synchronously for every directory entered and every file decision.
	// A non-nil error stops the walk.
	Observer func(types.Event) error
}

// TraversalError reports that the root directory could not be traversed at all.
type TraversalError struct {
	Root string
	Err  error
}

func (traversalError *TraversalError) Error() string {
	return fmt.Sprintf("cannot traverse %s: %v", traversalError.Root, traversalError.Err)
}

func (traversalError *TraversalError) Unwrap() error {
	return traversalError.Err
}

// accumulator carries the mutable state of a single run through the recursion.
type accumulator struct {
	rootDirectory string
	classifier    *classify.Classifier
	logger        *zap.Logger
	observer      func(types.Event) error
	builder       strings.Builder
	summary       types.RunSummary
}

// Run walks config.RootDirectory depth first, in the order the filesystem lists entries,
// and returns the concatenated blocks of every included file along with the run summary.
func Run(ctx context.Context, config types.TraversalConfig, options Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	absoluteRoot, rootError := ValidateRoot(config.RootDirectory)
	if rootError != nil {
		return Result{}, rootError
	}
	rootEntries, listError := listDirectory(absoluteRoot)
	if listError != nil {
		return Result{}, &TraversalError{Root: config.RootDirectory, Err: listError}
	}

	classifier := options.Classifier
	if classifier == nil {
		resolvedConfig := config
		resolvedConfig.RootDirectory = absoluteRoot
		builtClassifier, classifierError := classify.FromConfig(resolvedConfig)
		if classifierError != nil {
			return Result{}, &TraversalError{Root: config.RootDirectory, Err: classifierError}
		}
		classifier = builtClassifier
	}

	state := &accumulator{
		rootDirectory: absoluteRoot,
		classifier:    classifier,
		logger:        logger,
		observer:      options.Observer,
		summary:       types.NewRunSummary(),
	}
	walkError := state.walk(ctx, absoluteRoot, rootEntries)
	result := Result{
		Output:  state.builder.String(),
		Summary: state.summary,
		Status:  StatusCompleted,
	}
	if walkError != nil {
		if ctx.Err() != nil {
			logger.Debug(cancelledLogMessage, zap.Error(ctx.Err()))
			result.Status = StatusCancelled
			return result, nil
		}
		return result, walkError
	}
	return result, nil
}

// ValidateRoot resolves rootDirectory to an absolute path and checks that it is an existing directory.
// Failures are reported as *TraversalError.
func ValidateRoot(rootDirectory string) (string, error) {
	absoluteRoot, absoluteError := filepath.Abs(rootDirectory)
	if absoluteError != nil {
		return "", &TraversalError{Root: rootDirectory, Err: absoluteError}
	}
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return "", &TraversalError{Root: rootDirectory, Err: statError}
	}
	if !rootInfo.IsDir() {
		return "", &TraversalError{Root: rootDirectory, Err: ErrNotDirectory}
	}
	return absoluteRoot, nil
}

// listDirectory returns the entries of directoryPath unsorted.
func listDirectory(directoryPath string) ([]fs.DirEntry, error) {
	directoryHandle, openError := os.Open(directoryPath)
	if openError != nil {
		return nil, openError
	}
	defer directoryHandle.Close()
	return directoryHandle.ReadDir(-1)
}

func (state *accumulator) walk(ctx context.Context, directoryPath string, entries []fs.DirEntry) error {
	for _, directoryEntry := range entries {
		if contextError := ctx.Err(); contextError != nil {
			return contextError
		}
		entryPath := filepath.Join(directoryPath, directoryEntry.Name())
		isDirectory := directoryEntry.IsDir()
		if !isDirectory && !directoryEntry.Type().IsRegular() {
			state.logger.Debug(nonRegularEntryLogMessage, zap.String("path", state.relative(entryPath)))
			continue
		}

		entry := classify.NewEntry(directoryPath, directoryEntry.Name(), isDirectory)
		if isDirectory {
			if walkError := state.visitDirectory(ctx, entry); walkError != nil {
				return walkError
			}
			continue
		}
		if fileError := state.visitFile(entry, directoryEntry); fileError != nil {
			return fileError
		}
	}
	return nil
}

func (state *accumulator) visitDirectory(ctx context.Context, entry types.DirectoryEntry) error {
	relativePath := state.relative(entry.FullPath)
	decision := state.classifier.Classify(entry, nil)
	state.logger.Debug(decisionLogMessage, zap.String("path", relativePath), zap.String("decision", decision.String()))
	if decision != types.Recurse {
		return nil
	}
	children, listError := listDirectory(entry.FullPath)
	if listError != nil {
		state.logger.Debug(unreadableDirectoryLogMessage, zap.String("path", relativePath), zap.Error(listError))
		return nil
	}
	if notifyError := state.notify(types.Event{
		Kind:           types.EventKindDirectory,
		Path:           entry.FullPath,
		RelativePath:   relativePath,
		Classification: decision,
	}); notifyError != nil {
		return notifyError
	}
	return state.walk(ctx, entry.FullPath, children)
}

func (state *accumulator) visitFile(entry types.DirectoryEntry, directoryEntry fs.DirEntry) error {
	relativePath := state.relative(entry.FullPath)
	var sizeBytes int64
	var info fs.FileInfo
	if entryInfo, infoError := directoryEntry.Info(); infoError == nil {
		info = entryInfo
		sizeBytes = entryInfo.Size()
	}

	decision := state.classifier.Classify(entry, info)
	if decision == types.Include {
		content, readError := os.ReadFile(entry.FullPath)
		if readError != nil {
			state.logger.Debug(unreadableFileLogMessage, zap.String("path", relativePath), zap.Error(readError))
			decision = types.SkipUnreadable
		} else {
			sizeBytes = int64(len(content))
			state.appendBlock(relativePath, sizeBytes, content)
		}
	}
	state.logger.Debug(decisionLogMessage,
		zap.String("path", relativePath),
		zap.String("decision", decision.String()),
		zap.Int64("sizeBytes", sizeBytes))
	state.record(entry, decision)

	return state.notify(types.Event{
		Kind:           types.EventKindFile,
		Path:           entry.FullPath,
		RelativePath:   relativePath,
		Classification: decision,
		SizeBytes:      sizeBytes,
		Processed:      state.summary.ProcessedFileCount,
		Skipped:        state.summary.SkippedFileCount,
	})
}

// appendBlock writes one file block: a separator, the path and size headers, another separator, and the content.
func (state *accumulator) appendBlock(relativePath string, sizeBytes int64, content []byte) {
	state.builder.WriteString("\n")
	state.builder.WriteString(separatorLine)
	state.builder.WriteString("\n")
	state.builder.WriteString(fileHeaderPrefix)
	state.builder.WriteString(relativePath)
	state.builder.WriteString("\n")
	state.builder.WriteString(sizeHeaderPrefix)
	state.builder.WriteString(utils.FormatHumanSize(sizeBytes))
	state.builder.WriteString("\n")
	state.builder.WriteString(separatorLine)
	state.builder.WriteString("\n\n")
	state.builder.Write(content)
	state.builder.WriteString("\n")
}

func (state *accumulator) record(entry types.DirectoryEntry, decision types.Classification) {
	switch {
	case decision == types.Include:
		state.summary.ProcessedFileCount++
		state.summary.ProcessedExtensions.Add(entry.Extension)
	case decision.IsSkip():
		state.summary.SkippedFileCount++
		state.summary.SkippedExtensions.Add(entry.Extension)
	}
}

func (state *accumulator) notify(event types.Event) error {
	if state.observer == nil {
		return nil
	}
	return state.observer(event)
}

func (state *accumulator) relative(fullPath string) string {
	return utils.RelativePathOrSelf(fullPath, state.rootDirectory)
}
