// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/tyemirov/cli2text/internal/aggregate"
	"github.com/tyemirov/cli2text/internal/classify"
	"github.com/tyemirov/cli2text/internal/config"
	"github.com/tyemirov/cli2text/internal/output"
	"github.com/tyemirov/cli2text/internal/services/clipboard"
	"github.com/tyemirov/cli2text/internal/tokenizer"
	"github.com/tyemirov/cli2text/internal/types"
	"github.com/tyemirov/cli2text/internal/utils"
)

const (
	outputFlagName     = "output"
	outputShorthand    = "o"
	thresholdFlagName  = "threshold"
	thresholdShorthand = "t"
	includeAllFlagName = "include-all"
	debugFlagName      = "debug"
	gitignoreFlagName  = "gitignore"
	treeFlagName       = "tree"
	tokensFlagName     = "tokens"
	modelFlagName      = "model"
	copyFlagName       = "copy"
	configFlagName     = "config"
	versionFlagName    = "version"
	globalFlagName     = "global"
	forceFlagName      = "force"
	versionTemplate    = "cli2text version: %s\n"
	defaultPath        = "."

	rootUse              = "cli2text [directory]"
	rootShortDescription = "concatenate a directory's text files into one document"

	rootLongDescription = `cli2text walks a directory and writes the contents of its text files into a single output file.
Each file is preceded by a header with its relative path and size. Binary files, images, files larger than
the threshold, and well-known dependency or metadata entries such as node_modules and .git are skipped.`

	rootUsageExample = `  # Aggregate the current directory into output.txt
  cli2text

  # Aggregate ./src, allow files up to 2 MiB, and write snapshot.txt
  cli2text ./src -t 2 -o snapshot.txt

  # Include binary and oversized files, skip the preview tree
  cli2text --include-all --tree=false`

	configUse                  = "config"
	configShortDescription     = "manage cli2text configuration"
	configInitUse              = "init"
	configInitShortDescription = "write the default configuration file"

	outputFlagDescription     = "destination file for the aggregate output"
	thresholdFlagDescription  = "skip files larger than this many MiB"
	includeAllFlagDescription = "include files regardless of size or binary content"
	debugFlagDescription      = "log every classification decision"
	gitignoreFlagDescription  = "also skip entries matched by the root .gitignore"
	treeFlagDescription       = "print the preview tree before processing"
	tokensFlagDescription     = "report the token count of the aggregate output"
	modelFlagDescription      = "tokenizer model to use for token counting"
	copyFlagDescription       = "copy the aggregate output to the clipboard"
	configFlagDescription     = "configuration file to load instead of ./config.yaml"
	versionFlagDescription    = "display application version"
	globalFlagDescription     = "write the configuration under the home directory"
	forceFlagDescription      = "overwrite an existing configuration file"

	outputSavedFormat           = "Output saved to %s\n"
	configWrittenFormat         = "Configuration written to %s\n"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	loggerErrorFormat           = "initialize logger: %w"
	tokenCountWarning           = "token count unavailable"
	tokenCountSkippedMessage    = "token count skipped for binary content"
	clipboardWarning            = "clipboard copy failed"
	traversalFinishedMessage    = "traversal finished"

	noColorEnvironmentVariable = "NO_COLOR"
)

var (
	// ErrRemoteRepository reports a URL passed where a local directory is expected.
	ErrRemoteRepository = errors.New("remote repositories are not supported")
	// ErrNoContent reports a run that aggregated no file.
	ErrNoContent = errors.New("no content was generated from the folder")
	// ErrCancelled reports a run interrupted before the walk finished. Nothing is written.
	ErrCancelled = errors.New("processing cancelled")
)

// Dependencies holds the side effects of a run so they can be replaced.
type Dependencies struct {
	Stdout           io.Writer
	Stderr           io.Writer
	WorkingDirectory string
	NewLogger        func(debug bool) (*zap.Logger, error)
	NewTokenCounter  func(tokenizer.Config) (tokenizer.Counter, string, error)
	Copier           clipboard.Copier
	IsTerminal       func(io.Writer) bool
}

// DefaultDependencies wires the process streams, the system clipboard, and tiktoken.
func DefaultDependencies() Dependencies {
	return Dependencies{
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		NewLogger:       utils.NewApplicationLogger,
		NewTokenCounter: tokenizer.NewCounter,
		Copier:          clipboard.NewService(),
		IsTerminal:      isTerminal,
	}
}

func (dependencies Dependencies) withDefaults() Dependencies {
	defaults := DefaultDependencies()
	if dependencies.Stdout == nil {
		dependencies.Stdout = defaults.Stdout
	}
	if dependencies.Stderr == nil {
		dependencies.Stderr = defaults.Stderr
	}
	if dependencies.NewLogger == nil {
		dependencies.NewLogger = defaults.NewLogger
	}
	if dependencies.NewTokenCounter == nil {
		dependencies.NewTokenCounter = defaults.NewTokenCounter
	}
	if dependencies.Copier == nil {
		dependencies.Copier = defaults.Copier
	}
	if dependencies.IsTerminal == nil {
		dependencies.IsTerminal = defaults.IsTerminal
	}
	return dependencies
}

// colorEnabled reports whether the preview tree may be colored: stdout is a terminal and NO_COLOR is unset.
func colorEnabled(dependencies Dependencies) bool {
	return os.Getenv(noColorEnvironmentVariable) == "" && dependencies.IsTerminal(dependencies.Stdout)
}

func isTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	return isFile && term.IsTerminal(int(file.Fd()))
}

// Execute runs the cli2text application. SIGINT and SIGTERM cancel the traversal.
func Execute(ctx context.Context) error {
	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCommand := NewRootCommand(DefaultDependencies())
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(signalCtx)
}

// commandOptions stores the values bound to the root command flags.
type commandOptions struct {
	outputPath  string
	threshold   float64
	includeAll  bool
	debug       bool
	gitignore   bool
	showTree    bool
	tokens      bool
	model       string
	copy        bool
	configPath  string
	showVersion bool
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var options commandOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				fmt.Fprintf(dependencies.Stdout, versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			rootArgument := defaultPath
			if len(arguments) > 0 {
				rootArgument = arguments[0]
			}
			settings, settingsError := resolveSettings(dependencies, options, command.Flags())
			if settingsError != nil {
				return settingsError
			}
			return run(command.Context(), dependencies, settings, rootArgument)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&options.outputPath, outputFlagName, outputShorthand, utils.DefaultOutputFileName, outputFlagDescription)
	flagSet.Float64VarP(&options.threshold, thresholdFlagName, thresholdShorthand, config.DefaultThresholdMebibytes, thresholdFlagDescription)
	registerBooleanFlag(flagSet, &options.includeAll, includeAllFlagName, false, includeAllFlagDescription)
	registerBooleanFlag(flagSet, &options.debug, debugFlagName, false, debugFlagDescription)
	registerBooleanFlag(flagSet, &options.gitignore, gitignoreFlagName, false, gitignoreFlagDescription)
	registerBooleanFlag(flagSet, &options.showTree, treeFlagName, true, treeFlagDescription)
	registerBooleanFlag(flagSet, &options.tokens, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&options.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	registerBooleanFlag(flagSet, &options.copy, copyFlagName, false, copyFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flagSet.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(newConfigCommand(dependencies))
	return rootCommand
}

func newConfigCommand(dependencies Dependencies) *cobra.Command {
	var globalTarget bool
	var force bool

	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.WorkingDirectory,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(dependencies.Stdout, configWrittenFormat, destinationPath)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &globalTarget, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)

	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
	}
	configCommand.AddCommand(initCommand)
	return configCommand
}

// resolveSettings layers explicitly set flags over the discovered configuration files.
func resolveSettings(dependencies Dependencies, options commandOptions, flagSet *pflag.FlagSet) (config.Settings, error) {
	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: dependencies.WorkingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if loadError != nil {
		return config.Settings{}, loadError
	}
	merged := loaded.Merge(options.overrides(flagSet))
	if validationError := merged.Validate(); validationError != nil {
		return config.Settings{}, validationError
	}
	settings := merged.Resolve()
	if utils.DebugRequestedByEnvironment() {
		settings.Debug = true
	}
	return settings, nil
}

func (options commandOptions) overrides(flagSet *pflag.FlagSet) config.ApplicationConfiguration {
	var override config.ApplicationConfiguration
	if flagSet.Changed(outputFlagName) {
		override.Output = options.outputPath
	}
	if flagSet.Changed(thresholdFlagName) {
		threshold := options.threshold
		override.Threshold = &threshold
	}
	override.IncludeAll = changedBool(flagSet, includeAllFlagName, options.includeAll)
	override.Debug = changedBool(flagSet, debugFlagName, options.debug)
	override.Gitignore = changedBool(flagSet, gitignoreFlagName, options.gitignore)
	override.Tree = changedBool(flagSet, treeFlagName, options.showTree)
	override.Tokens.Enabled = changedBool(flagSet, tokensFlagName, options.tokens)
	if flagSet.Changed(modelFlagName) {
		override.Tokens.Model = options.model
	}
	override.Clipboard = changedBool(flagSet, copyFlagName, options.copy)
	return override
}

func changedBool(flagSet *pflag.FlagSet, name string, value bool) *bool {
	if !flagSet.Changed(name) {
		return nil
	}
	return &value
}

// run previews, aggregates, persists, and reports one directory.
func run(ctx context.Context, dependencies Dependencies, settings config.Settings, rootArgument string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if utils.IsRemoteLocation(rootArgument) {
		return fmt.Errorf("%w: %s", ErrRemoteRepository, rootArgument)
	}
	logger, loggerError := dependencies.NewLogger(settings.Debug)
	if loggerError != nil {
		return fmt.Errorf(loggerErrorFormat, loggerError)
	}
	defer func() { _ = logger.Sync() }()

	workingDirectory := dependencies.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}
	destinationPath := resolveAgainst(workingDirectory, settings.OutputPath)
	rootDirectory, rootError := aggregate.ValidateRoot(resolveAgainst(workingDirectory, rootArgument))
	if rootError != nil {
		return rootError
	}

	traversalConfig := types.TraversalConfig{
		RootDirectory:      rootDirectory,
		SizeThresholdBytes: utils.ThresholdBytes(settings.ThresholdMebibytes),
		IncludeAll:         settings.IncludeAll,
		RespectGitignore:   settings.RespectGitignore,
		ExcludedPaths:      []string{destinationPath},
	}
	classifier, classifierError := classify.FromConfig(traversalConfig)
	if classifierError != nil {
		return &aggregate.TraversalError{Root: rootArgument, Err: classifierError}
	}

	if settings.ShowTree {
		previewTree, previewError := output.BuildPreviewTree(rootDirectory, classifier, destinationPath)
		if previewError != nil {
			return &aggregate.TraversalError{Root: rootArgument, Err: previewError}
		}
		previewTree.Name = rootArgument
		fmt.Fprintln(dependencies.Stdout)
		output.WritePreviewTree(dependencies.Stdout, previewTree, colorEnabled(dependencies))
		fmt.Fprintln(dependencies.Stdout)
	}

	progress := output.NewProgressReporter(dependencies.Stderr, dependencies.IsTerminal(dependencies.Stderr))
	var result aggregate.Result
	producer := func(streamCtx context.Context, events chan<- types.Event) error {
		observed, runError := aggregate.Run(streamCtx, traversalConfig, aggregate.Options{
			Classifier: classifier,
			Logger:     logger,
			Observer: func(event types.Event) error {
				select {
				case <-streamCtx.Done():
					return streamCtx.Err()
				case events <- event:
					return nil
				}
			},
		})
		result = observed
		return runError
	}
	consumer := func(event types.Event) error {
		progress.Observe(event)
		return nil
	}
	dispatchError := dispatchStream(ctx, producer, consumer)
	progress.Finish()
	logger.Debug(traversalFinishedMessage, zap.Int("events", progress.Events()), zap.String("status", result.Status.String()))
	if dispatchError != nil {
		return dispatchError
	}
	if result.Status == aggregate.StatusCancelled || ctx.Err() != nil {
		return ErrCancelled
	}

	output.WriteSummary(dependencies.Stdout, result.Summary)
	if result.Output == "" {
		return ErrNoContent
	}
	if writeError := output.WriteOutput(destinationPath, result.Output); writeError != nil {
		return writeError
	}
	fmt.Fprintf(dependencies.Stdout, outputSavedFormat, settings.OutputPath)

	if settings.TokensEnabled {
		reportTokens(dependencies, logger, settings.TokenModel, result.Output)
	}
	if settings.Clipboard {
		if copyError := dependencies.Copier.Copy(result.Output); copyError != nil {
			logger.Warn(clipboardWarning, zap.Error(copyError))
		}
	}
	return nil
}

func reportTokens(dependencies Dependencies, logger *zap.Logger, model string, text string) {
	counter, resolvedModel, counterError := dependencies.NewTokenCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		logger.Warn(tokenCountWarning, zap.Error(counterError))
		return
	}
	countResult, countError := tokenizer.CountText(counter, text)
	if countError != nil {
		logger.Warn(tokenCountWarning, zap.Error(countError))
		return
	}
	if !countResult.Counted {
		logger.Debug(tokenCountSkippedMessage)
		return
	}
	output.WriteTokenLine(dependencies.Stdout, countResult.Tokens, resolvedModel)
}

func resolveAgainst(baseDirectory string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDirectory, path)
}

func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- types.Event) error,
	consume func(types.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan types.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
