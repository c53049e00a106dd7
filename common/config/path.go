package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var windowsEnvPattern = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// expandPath resolves $VAR, %VAR% and a leading ~ in dotenv and output file paths.
// Unknown %VAR% placeholders are left untouched.
func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	expanded := os.ExpandEnv(path)
	expanded = windowsEnvPattern.ReplaceAllStringFunc(expanded, func(match string) string {
		if val, ok := os.LookupEnv(strings.Trim(match, "%")); ok && val != "" {
			return val
		}
		return match
	})

	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
		}
	}

	return expanded
}
