// Package utils contains general helper functions used across cli2text.
package utils

import (
	"path/filepath"
	"strings"
)

// Directory and file name constants used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// DefaultOutputFileName is where the aggregate output is written unless configured otherwise.
	DefaultOutputFileName = "output.txt"
)

// FileExtension returns the lowercased extension of name including its leading dot.
// Names whose only dots are leading, such as ".bashrc", have no extension.
func FileExtension(name string) string {
	baseName := filepath.Base(name)
	if strings.TrimLeft(baseName, ".") == "" {
		return ""
	}
	withoutLeadingDots := strings.TrimLeft(baseName, ".")
	if !strings.Contains(withoutLeadingDots, ".") {
		return ""
	}
	return strings.ToLower(filepath.Ext(baseName))
}

// RelativePathOrSelf calculates the relative path from root to fullPath using host separators.
// Returns the cleaned fullPath if relative calculation fails and "." when both are the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot {
		return "."
	}
	relativePath, relErr := filepath.Rel(cleanRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return relativePath
}

// IsRemoteLocation reports whether input looks like a URL rather than a local path.
func IsRemoteLocation(input string) bool {
	lowered := strings.ToLower(strings.TrimSpace(input))
	for _, prefix := range []string{"http://", "https://", "git@", "ssh://", "git://"} {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}
