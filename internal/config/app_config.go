// Package config discovers, merges, and validates cli2text configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tyemirov/cli2text/internal/tokenizer"
	"github.com/tyemirov/cli2text/internal/utils"
)

// DefaultThresholdMebibytes is the size threshold applied when none is configured.
// At 0.1 MiB many ordinary source files are skipped; raise it with --threshold.
const DefaultThresholdMebibytes = 0.1

// ErrNegativeThreshold reports a threshold below zero.
var ErrNegativeThreshold = errors.New("threshold must be zero or greater")

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration mirrors the configuration file. Nil pointers and empty strings mean unset.
type ApplicationConfiguration struct {
	Output     string             `mapstructure:"output"`
	Threshold  *float64           `mapstructure:"threshold"`
	IncludeAll *bool              `mapstructure:"include_all"`
	Debug      *bool              `mapstructure:"debug"`
	Gitignore  *bool              `mapstructure:"gitignore"`
	Tree       *bool              `mapstructure:"tree"`
	Tokens     TokenConfiguration `mapstructure:"tokens"`
	Clipboard  *bool              `mapstructure:"clipboard"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// Settings is a fully resolved configuration with defaults applied.
type Settings struct {
	OutputPath         string
	ThresholdMebibytes float64
	IncludeAll         bool
	Debug              bool
	RespectGitignore   bool
	ShowTree           bool
	TokensEnabled      bool
	TokenModel         string
	Clipboard          bool
}

// LoadApplicationConfiguration loads configuration from the global file and then the local or explicit file.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if options.ExplicitFilePath != "" {
		if _, statError := os.Stat(localPath); statError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statError)
		}
	}
	localConfig, loadError := loadConfigurationFromPath(localPath)
	if loadError != nil {
		return ApplicationConfiguration{}, loadError
	}
	merged = merged.Merge(localConfig)

	if validationError := merged.Validate(); validationError != nil {
		return ApplicationConfiguration{}, validationError
	}
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, absoluteError := filepath.Abs(explicitPath)
			if absoluteError != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, absoluteError)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var config ApplicationConfiguration
	if decodeError := reader.Unmarshal(&config); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if strings.TrimSpace(override.Output) != "" {
		result.Output = override.Output
	}
	if override.Threshold != nil {
		result.Threshold = cloneFloat(override.Threshold)
	}
	if override.IncludeAll != nil {
		result.IncludeAll = cloneBool(override.IncludeAll)
	}
	if override.Debug != nil {
		result.Debug = cloneBool(override.Debug)
	}
	if override.Gitignore != nil {
		result.Gitignore = cloneBool(override.Gitignore)
	}
	if override.Tree != nil {
		result.Tree = cloneBool(override.Tree)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// Validate reports values that cannot drive a run.
func (config ApplicationConfiguration) Validate() error {
	if config.Threshold != nil && *config.Threshold < 0 {
		return fmt.Errorf("%w: got %v", ErrNegativeThreshold, *config.Threshold)
	}
	return nil
}

// Resolve applies defaults to every unset value.
func (config ApplicationConfiguration) Resolve() Settings {
	settings := Settings{
		OutputPath:         utils.DefaultOutputFileName,
		ThresholdMebibytes: DefaultThresholdMebibytes,
		IncludeAll:         valueOrDefault(config.IncludeAll, false),
		Debug:              valueOrDefault(config.Debug, false),
		RespectGitignore:   valueOrDefault(config.Gitignore, false),
		ShowTree:           valueOrDefault(config.Tree, true),
		TokensEnabled:      valueOrDefault(config.Tokens.Enabled, false),
		TokenModel:         tokenizer.ResolveModel(config.Tokens.Model),
		Clipboard:          valueOrDefault(config.Clipboard, false),
	}
	if trimmedOutput := strings.TrimSpace(config.Output); trimmedOutput != "" {
		settings.OutputPath = trimmedOutput
	}
	if config.Threshold != nil {
		settings.ThresholdMebibytes = *config.Threshold
	}
	return settings
}

func valueOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
