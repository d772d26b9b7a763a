package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tyemirov/cli2text/internal/utils"
)

type configTestCase struct {
	name             string
	globalContent    string
	localContent     string
	explicitPath     string
	explicitContent  string
	expectOutput     string
	expectThreshold  float64
	expectIncludeAll bool
	expectTree       bool
	expectTokens     bool
	expectModel      string
	expectClipboard  bool
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func floatPointer(value float64) *float64 {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:            "defaults_without_files",
			expectOutput:    utils.DefaultOutputFileName,
			expectThreshold: DefaultThresholdMebibytes,
			expectTree:      true,
			expectModel:     "gpt-4o",
		},
		{
			name:             "local_overrides_global",
			globalContent:    "output: global.txt\nthreshold: 2\ntree: false\nclipboard: true\n",
			localContent:     "output: local.txt\ninclude_all: true\ntokens:\n  enabled: true\n  model: gpt-4\n",
			expectOutput:     "local.txt",
			expectThreshold:  2,
			expectIncludeAll: true,
			expectTree:       false,
			expectTokens:     true,
			expectModel:      "gpt-4",
			expectClipboard:  true,
		},
		{
			name:            "explicit_path_replaces_local",
			globalContent:   "threshold: 0.5\n",
			localContent:    "output: ignored.txt\n",
			explicitPath:    "custom.yaml",
			explicitContent: "output: explicit.txt\n",
			expectOutput:    "explicit.txt",
			expectThreshold: 0.5,
			expectTree:      true,
			expectModel:     "gpt-4o",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.ConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}
			settings := loadedConfig.Resolve()

			if settings.OutputPath != testCase.expectOutput {
				t.Fatalf("expected output %s, got %s", testCase.expectOutput, settings.OutputPath)
			}
			if settings.ThresholdMebibytes != testCase.expectThreshold {
				t.Fatalf("expected threshold %v, got %v", testCase.expectThreshold, settings.ThresholdMebibytes)
			}
			if settings.IncludeAll != testCase.expectIncludeAll {
				t.Fatalf("expected include_all %t, got %t", testCase.expectIncludeAll, settings.IncludeAll)
			}
			if settings.ShowTree != testCase.expectTree {
				t.Fatalf("expected tree %t, got %t", testCase.expectTree, settings.ShowTree)
			}
			if settings.TokensEnabled != testCase.expectTokens {
				t.Fatalf("expected tokens %t, got %t", testCase.expectTokens, settings.TokensEnabled)
			}
			if settings.TokenModel != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, settings.TokenModel)
			}
			if settings.Clipboard != testCase.expectClipboard {
				t.Fatalf("expected clipboard %t, got %t", testCase.expectClipboard, settings.Clipboard)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsNegativeThreshold(t *testing.T) {
	homeDir := t.TempDir()
	workingDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	if err := os.WriteFile(filepath.Join(workingDir, utils.ConfigFileName), []byte("threshold: -1\n"), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}
	_, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir})
	if !errors.Is(err, ErrNegativeThreshold) {
		t.Fatalf("expected ErrNegativeThreshold, got %v", err)
	}
}

func TestLoadApplicationConfigurationMissingExplicitFile(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	_, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: t.TempDir(), ExplicitFilePath: "absent.yaml"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestApplicationConfigurationMergeKeepsUnsetValues(t *testing.T) {
	base := ApplicationConfiguration{
		Output:     "base.txt",
		Threshold:  floatPointer(1),
		IncludeAll: boolPointer(true),
		Tokens:     TokenConfiguration{Enabled: boolPointer(true), Model: "gpt-4"},
	}
	override := ApplicationConfiguration{Threshold: floatPointer(0), Tree: boolPointer(false)}
	merged := base.Merge(override)

	if merged.Output != "base.txt" {
		t.Fatalf("expected output to survive merge, got %q", merged.Output)
	}
	if merged.Threshold == nil || *merged.Threshold != 0 {
		t.Fatalf("expected zero threshold override to apply")
	}
	if merged.IncludeAll == nil || !*merged.IncludeAll {
		t.Fatalf("expected include_all to survive merge")
	}
	if merged.Tree == nil || *merged.Tree {
		t.Fatalf("expected tree override to apply")
	}
	if merged.Tokens.Model != "gpt-4" || merged.Tokens.Enabled == nil || !*merged.Tokens.Enabled {
		t.Fatalf("expected token settings to survive merge, got %+v", merged.Tokens)
	}

	*override.Threshold = 5
	if *merged.Threshold != 0 {
		t.Fatalf("expected merge to copy pointer values")
	}
}
