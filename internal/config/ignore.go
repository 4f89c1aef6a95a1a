package config

import (
	"fmt"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// GitIgnoreFileName is the ignore file honored in gitignore mode.
const GitIgnoreFileName = ".gitignore"

// LoadGitIgnore compiles the .gitignore file at the root of rootDirectoryPath.
// It returns nil without error when the file does not exist.
func LoadGitIgnore(rootDirectoryPath string) (*ignore.GitIgnore, error) {
	gitIgnorePath := filepath.Join(rootDirectoryPath, GitIgnoreFileName)
	if _, statErr := os.Stat(gitIgnorePath); statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", gitIgnorePath, statErr)
	}
	matcher, compileErr := ignore.CompileIgnoreFile(gitIgnorePath)
	if compileErr != nil {
		return nil, fmt.Errorf("compile %s: %w", gitIgnorePath, compileErr)
	}
	return matcher, nil
}
