package dev

import (
	"path/filepath"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/config"
)

// CollectWatchPaths returns the deduplicated absolute directories observed
// for the project: the component, module and page roots.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := cfg.WatchRoots()

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}
