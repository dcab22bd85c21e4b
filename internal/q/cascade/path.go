package cascade

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandPath expands a leading "~" to the user's home directory and makes the result absolute. "~\" is accepted on every OS.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/' || rest[0] == '\\') {
		if home, _ := os.UserHomeDir(); home != "" {
			path = filepath.Join(home, strings.TrimLeft(rest, `/\`))
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// InUserConfigDirectory returns an absolute path for user-specific config files joined with subPath: under the home directory, or under
// AppData/Local on Windows.
func InUserConfigDirectory(subPath string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(ExpandPath("~/AppData/Local"), subPath)
	}
	return filepath.Join(ExpandPath("~"), subPath)
}
