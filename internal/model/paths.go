package model

import (
	"os"
	"path/filepath"
)

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".factgraph-cache"
	}
	return filepath.Join(home, ".factgraph", "cache")
}
