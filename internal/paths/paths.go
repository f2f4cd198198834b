// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand resolves a user supplied path from the config file.
//
// Input normalization:
//   - "~" and "~/x" -> the home directory, and x below it
//   - "$VAR/x" and "${VAR}/x" -> environment variables are substituted
//   - "" -> "" (callers apply their own default)
//
// The result is cleaned but not made absolute. When the home directory is
// unknown a leading "~" is left in place.
func Expand(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Clean(path)
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Clean(path)
}
