package classify

import (
	"fmt"
	"os"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/tyemirov/cli2text/internal/utils"
)

// Matcher reports whether an absolute path is excluded by ignore rules.
type Matcher interface {
	Match(path string, isDir bool) bool
}

// LoadGitignoreMatcher parses the .gitignore at the root of rootDirectory.
// It returns a nil Matcher and no error when the file does not exist.
func LoadGitignoreMatcher(rootDirectory string) (Matcher, error) {
	absoluteRoot, absoluteError := filepath.Abs(rootDirectory)
	if absoluteError != nil {
		return nil, fmt.Errorf("resolve %s: %w", rootDirectory, absoluteError)
	}
	gitIgnorePath := filepath.Join(absoluteRoot, utils.GitIgnoreFileName)
	if _, statError := os.Stat(gitIgnorePath); statError != nil {
		if os.IsNotExist(statError) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", gitIgnorePath, statError)
	}
	matcher, parseError := gitignore.NewGitIgnore(gitIgnorePath, absoluteRoot)
	if parseError != nil {
		return nil, fmt.Errorf("parse %s: %w", gitIgnorePath, parseError)
	}
	return matcher, nil
}
