package config

import (
	"errors"
	"os"
	"path/filepath"
)

var errNoModuleRoot = errors.New("no go.mod or .git found above start directory")

// moduleRoot walks up from startDir (the working directory when empty)
// to the first directory holding a go.mod or a .git entry. A .git file,
// as in worktrees and submodules, counts too.
func moduleRoot(startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		startDir = wd
	}

	for dir := filepath.Clean(startDir); ; dir = filepath.Dir(dir) {
		for _, marker := range []string{"go.mod", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		if dir == filepath.Dir(dir) {
			return "", errNoModuleRoot
		}
	}
}
