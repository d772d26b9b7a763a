package output

import (
	"fmt"
	"os"
)

const outputFilePermissions = 0o644

// WriteError reports that the aggregate output could not be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (writeError *WriteError) Error() string {
	return fmt.Sprintf("write output %s: %v", writeError.Path, writeError.Err)
}

func (writeError *WriteError) Unwrap() error {
	return writeError.Err
}

// WriteOutput replaces the file at destinationPath with content.
func WriteOutput(destinationPath string, content string) error {
	if writeError := os.WriteFile(destinationPath, []byte(content), outputFilePermissions); writeError != nil {
		return &WriteError{Path: destinationPath, Err: writeError}
	}
	return nil
}
