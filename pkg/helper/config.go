package helper

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigDir is where packaged installs keep their configuration.
const DefaultConfigDir = "/etc/shopinspector"

// GetCfgPath returns the path to the configuration file.
//
// Lookup order:
//  1. filename itself when it is absolute
//  2. ./{filename}
//  3. ./configs/{filename}
//  4. {DefaultConfigDir}/{filename}
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}
	if filepath.IsAbs(filename) {
		return filename
	}

	wd, err := os.Getwd()
	if err == nil && wd != "" {
		for _, candidate := range []string{
			filepath.Join(wd, filename),
			filepath.Join(wd, "configs", filename),
		} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return filepath.Join(DefaultConfigDir, filename)
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
