package model

import (
	"os"
	"path/filepath"
)

// HomeDir is the per-user directory holding config.yaml and the cache
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xingming"
	}
	return filepath.Join(home, ".xingming")
}

func defaultCacheDir() string {
	return filepath.Join(HomeDir(), "cache")
}
