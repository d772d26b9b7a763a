package output_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tyemirov/cli2text/internal/classify"
	"github.com/tyemirov/cli2text/internal/output"
	"github.com/tyemirov/cli2text/internal/types"
)

// previewTreeExpected defines the uncolored rendering of samplePreviewTree.
const previewTreeExpected = "project\n" +
	"├── src\n" +
	"│   └── main.go (123b)\n" +
	"├── node_modules\n" +
	"├── logo.png (2kb)\n" +
	"└── output.txt (0b)\n"

func samplePreviewTree() *output.PreviewNode {
	return &output.PreviewNode{
		Name:        "project",
		IsDirectory: true,
		Children: []*output.PreviewNode{
			{Name: "src", IsDirectory: true, Children: []*output.PreviewNode{{Name: "main.go", SizeBytes: 123}}},
			{Name: "node_modules", IsDirectory: true, Status: output.PreviewIgnored},
			{Name: "logo.png", SizeBytes: 2048, Status: output.PreviewIgnored},
			{Name: "output.txt", Status: output.PreviewDestination},
		},
	}
}

// TestWritePreviewTree verifies the box-drawing layout and optional coloring.
func TestWritePreviewTree(testingInstance *testing.T) {
	var plain bytes.Buffer
	output.WritePreviewTree(&plain, samplePreviewTree(), false)
	if plain.String() != previewTreeExpected {
		testingInstance.Fatalf("unexpected tree:\n%s", plain.String())
	}

	var colored bytes.Buffer
	output.WritePreviewTree(&colored, samplePreviewTree(), true)
	coloredText := colored.String()
	for _, expectedFragment := range []string{
		"\x1b[32mproject\x1b[0m",
		"\x1b[33mmain.go (123b)\x1b[0m",
		"\x1b[31mnode_modules\x1b[0m",
		"\x1b[31mlogo.png (2kb)\x1b[0m",
		"\x1b[94moutput.txt (0b)\x1b[0m",
	} {
		if !strings.Contains(coloredText, expectedFragment) {
			testingInstance.Errorf("expected colored output to contain %q, got:\n%q", expectedFragment, coloredText)
		}
	}

	var empty bytes.Buffer
	output.WritePreviewTree(&empty, nil, true)
	if empty.Len() != 0 {
		testingInstance.Fatalf("expected nothing for a nil tree")
	}
}

// TestBuildPreviewTree verifies statuses assigned from the classifier name rules.
func TestBuildPreviewTree(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	destinationPath := filepath.Join(rootDirectory, "snapshot.txt")
	files := map[string]string{
		filepath.Join("src", "main.go"):              "package main",
		filepath.Join("node_modules", "dep", "a.js"): "x",
		"logo.png":     "png",
		"package.json": "{}",
		"snapshot.txt": "old",
	}
	for relativePath, content := range files {
		fullPath := filepath.Join(rootDirectory, relativePath)
		if mkdirError := os.MkdirAll(filepath.Dir(fullPath), 0o755); mkdirError != nil {
			testingInstance.Fatalf("mkdir: %v", mkdirError)
		}
		if writeError := os.WriteFile(fullPath, []byte(content), 0o644); writeError != nil {
			testingInstance.Fatalf("write: %v", writeError)
		}
	}

	tree, buildError := output.BuildPreviewTree(rootDirectory, classify.New(classify.Options{}), destinationPath)
	if buildError != nil {
		testingInstance.Fatalf("BuildPreviewTree failed: %v", buildError)
	}

	nodes := map[string]*output.PreviewNode{}
	for _, child := range tree.Children {
		nodes[child.Name] = child
	}
	testCases := []struct {
		name             string
		expectedStatus   output.PreviewStatus
		expectedChildren int
	}{
		{name: "src", expectedStatus: output.PreviewIncluded, expectedChildren: 1},
		{name: "node_modules", expectedStatus: output.PreviewIgnored, expectedChildren: 0},
		{name: "logo.png", expectedStatus: output.PreviewIgnored},
		{name: "package.json", expectedStatus: output.PreviewIgnored},
		{name: "snapshot.txt", expectedStatus: output.PreviewDestination},
	}
	for _, testCase := range testCases {
		node, exists := nodes[testCase.name]
		if !exists {
			testingInstance.Errorf("expected node %s in preview tree", testCase.name)
			continue
		}
		if node.Status != testCase.expectedStatus {
			testingInstance.Errorf("%s: expected status %d, got %d", testCase.name, testCase.expectedStatus, node.Status)
		}
		if len(node.Children) != testCase.expectedChildren {
			testingInstance.Errorf("%s: expected %d children, got %d", testCase.name, testCase.expectedChildren, len(node.Children))
		}
	}
	if nodes["snapshot.txt"].SizeBytes != 3 {
		testingInstance.Errorf("expected snapshot size 3, got %d", nodes["snapshot.txt"].SizeBytes)
	}

	if _, missingError := output.BuildPreviewTree(filepath.Join(rootDirectory, "missing"), classify.New(classify.Options{}), ""); missingError == nil {
		testingInstance.Fatalf("expected an error for a missing root")
	}
}

// TestWriteSummary verifies the completion and extension lines.
func TestWriteSummary(testingInstance *testing.T) {
	summary := types.NewRunSummary()
	summary.ProcessedFileCount = 2
	summary.SkippedFileCount = 1
	summary.ProcessedExtensions.Add(".go")
	summary.SkippedExtensions.Add("")

	var buffer bytes.Buffer
	output.WriteSummary(&buffer, summary)
	expected := "Processed 2 files successfully (1 skipped)\n" +
		"\n" +
		"Summary of Extensions:\n" +
		"Skipped Extensions: ' '\n" +
		"Processed Extensions: .go\n"
	if buffer.String() != expected {
		testingInstance.Fatalf("unexpected summary:\n%q", buffer.String())
	}

	var emptyBuffer bytes.Buffer
	output.WriteSummary(&emptyBuffer, types.NewRunSummary())
	if !strings.Contains(emptyBuffer.String(), "Processed 0 files successfully (0 skipped)\n") {
		testingInstance.Fatalf("unexpected empty summary:\n%q", emptyBuffer.String())
	}
	if !strings.Contains(emptyBuffer.String(), "Skipped Extensions:\n") {
		testingInstance.Fatalf("expected bare skipped label, got:\n%q", emptyBuffer.String())
	}

	var tokenBuffer bytes.Buffer
	output.WriteTokenLine(&tokenBuffer, 42, "gpt-4o")
	if tokenBuffer.String() != "Tokens: 42 (gpt-4o)\n" {
		testingInstance.Fatalf("unexpected token line %q", tokenBuffer.String())
	}
}

// TestProgressReporter verifies redraws happen only when enabled.
func TestProgressReporter(testingInstance *testing.T) {
	fileEvent := types.Event{Kind: types.EventKindFile, Processed: 3, Skipped: 1}
	directoryEvent := types.Event{Kind: types.EventKindDirectory}

	var disabledBuffer bytes.Buffer
	disabled := output.NewProgressReporter(&disabledBuffer, false)
	disabled.Observe(fileEvent)
	disabled.Finish()
	if disabledBuffer.Len() != 0 {
		testingInstance.Fatalf("expected no output from a disabled reporter, got %q", disabledBuffer.String())
	}
	if disabled.Events() != 1 {
		testingInstance.Fatalf("expected 1 observed event, got %d", disabled.Events())
	}

	var enabledBuffer bytes.Buffer
	enabled := output.NewProgressReporter(&enabledBuffer, true)
	enabled.Observe(directoryEvent)
	enabled.Observe(fileEvent)
	line := "Processing files... 3 processed, 1 skipped"
	if enabledBuffer.String() != "\r"+line {
		testingInstance.Fatalf("unexpected progress output %q", enabledBuffer.String())
	}
	enabled.Finish()
	if !strings.HasSuffix(enabledBuffer.String(), "\r"+strings.Repeat(" ", len(line))+"\r") {
		testingInstance.Fatalf("expected the status line to be erased, got %q", enabledBuffer.String())
	}
	if enabled.Events() != 2 {
		testingInstance.Fatalf("expected 2 observed events, got %d", enabled.Events())
	}
}

// TestWriteOutput verifies persistence and the typed failure.
func TestWriteOutput(testingInstance *testing.T) {
	temporaryDirectory := testingInstance.TempDir()
	destinationPath := filepath.Join(temporaryDirectory, "output.txt")
	if writeError := output.WriteOutput(destinationPath, "content"); writeError != nil {
		testingInstance.Fatalf("WriteOutput failed: %v", writeError)
	}
	written, readError := os.ReadFile(destinationPath)
	if readError != nil || string(written) != "content" {
		testingInstance.Fatalf("unexpected file contents %q (%v)", written, readError)
	}

	failingPath := filepath.Join(temporaryDirectory, "missing", "output.txt")
	writeError := output.WriteOutput(failingPath, "content")
	var typedError *output.WriteError
	if !errors.As(writeError, &typedError) {
		testingInstance.Fatalf("expected WriteError, got %v", writeError)
	}
	if typedError.Path != failingPath || !errors.Is(writeError, os.ErrNotExist) {
		testingInstance.Fatalf("unexpected write error %v", writeError)
	}
}
