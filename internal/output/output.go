// Package output renders everything cli2text shows or persists besides the aggregate itself:
// the preview tree, progress, the run summary, and the destination file.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/tyemirov/cli2text/internal/classify"
	"github.com/tyemirov/cli2text/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	fileLineFormat = "%s (%s)"
)

// PreviewStatus marks how an entry of the preview tree is treated by a run.
type PreviewStatus int

const (
	PreviewIncluded PreviewStatus = iota
	PreviewIgnored
	// PreviewDestination marks the file the run writes its output to.
	PreviewDestination
)

// PreviewNode is one entry of the preview tree.
type PreviewNode struct {
	Name        string
	IsDirectory bool
	SizeBytes   int64
	Status      PreviewStatus
	Children    []*PreviewNode
}

// BuildPreviewTree lists rootDirectory using the name rules of classifier.
// Ignored directories appear without children. Size and content checks are not applied.
func BuildPreviewTree(rootDirectory string, classifier *classify.Classifier, destinationPath string) (*PreviewNode, error) {
	absoluteRoot, absoluteError := filepath.Abs(rootDirectory)
	if absoluteError != nil {
		return nil, absoluteError
	}
	cleanedDestination := ""
	if destinationPath != "" {
		if absoluteDestination, destinationError := filepath.Abs(destinationPath); destinationError == nil {
			cleanedDestination = absoluteDestination
		}
	}
	builder := previewBuilder{classifier: classifier, destinationPath: cleanedDestination}
	children, listError := builder.children(absoluteRoot)
	if listError != nil {
		return nil, listError
	}
	return &PreviewNode{Name: rootDirectory, IsDirectory: true, Children: children}, nil
}

type previewBuilder struct {
	classifier      *classify.Classifier
	destinationPath string
}

func (builder previewBuilder) children(directoryPath string) ([]*PreviewNode, error) {
	directoryHandle, openError := os.Open(directoryPath)
	if openError != nil {
		return nil, openError
	}
	entries, readError := directoryHandle.ReadDir(-1)
	directoryHandle.Close()
	if readError != nil {
		return nil, readError
	}

	nodes := make([]*PreviewNode, 0, len(entries))
	for _, directoryEntry := range entries {
		isDirectory := directoryEntry.IsDir()
		if !isDirectory && !directoryEntry.Type().IsRegular() {
			continue
		}
		entry := classify.NewEntry(directoryPath, directoryEntry.Name(), isDirectory)
		node := &PreviewNode{Name: entry.Name, IsDirectory: isDirectory}
		if isDirectory {
			if builder.classifier.IsIgnoredName(entry) {
				node.Status = PreviewIgnored
			} else if nested, nestedError := builder.children(entry.FullPath); nestedError == nil {
				node.Children = nested
			}
			nodes = append(nodes, node)
			continue
		}
		if info, infoError := directoryEntry.Info(); infoError == nil {
			node.SizeBytes = info.Size()
		}
		switch {
		case entry.FullPath == builder.destinationPath || entry.Name == utils.DefaultOutputFileName:
			node.Status = PreviewDestination
		case builder.classifier.IsIgnoredName(entry) || builder.classifier.IsImage(entry):
			node.Status = PreviewIgnored
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// WritePreviewTree renders root with box-drawing connectors. Colors are emitted only when colorize is true.
func WritePreviewTree(writer io.Writer, root *PreviewNode, colorize bool) {
	if root == nil {
		return
	}
	renderPreviewNode(writer, root, "", newPreviewPalette(colorize), true, true)
}

// previewPalette holds one color per preview status.
type previewPalette struct {
	ignored     *color.Color
	destination *color.Color
	directory   *color.Color
	file        *color.Color
}

func newPreviewPalette(colorize bool) previewPalette {
	palette := previewPalette{
		ignored:     color.New(color.FgRed),
		destination: color.New(color.FgHiBlue),
		directory:   color.New(color.FgGreen),
		file:        color.New(color.FgYellow),
	}
	for _, entryColor := range []*color.Color{palette.ignored, palette.destination, palette.directory, palette.file} {
		if colorize {
			entryColor.EnableColor()
		} else {
			entryColor.DisableColor()
		}
	}
	return palette
}

func (palette previewPalette) colorFor(node *PreviewNode) *color.Color {
	switch {
	case node.Status == PreviewIgnored:
		return palette.ignored
	case node.Status == PreviewDestination:
		return palette.destination
	case node.IsDirectory:
		return palette.directory
	default:
		return palette.file
	}
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderPreviewNode(writer io.Writer, node *PreviewNode, prefix string, palette previewPalette, isRoot bool, isLast bool) {
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	label := node.Name
	if !node.IsDirectory {
		label = fmt.Sprintf(fileLineFormat, node.Name, utils.FormatFileSize(node.SizeBytes))
	}
	fmt.Fprintf(writer, "%s%s\n", linePrefix, palette.colorFor(node).Sprint(label))
	for index, child := range node.Children {
		renderPreviewNode(writer, child, childPrefix, palette, false, index == len(node.Children)-1)
	}
}
