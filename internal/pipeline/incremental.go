package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/platform"
	"github.com/theirongolddev/aimon/internal/source"
	"github.com/theirongolddev/aimon/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers, diffs against the record cache, parses
// only changed files, and returns the combined deduplicated set.
func LoadWithCache(platforms []platform.Platform, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	var files []source.DiscoveredFile
	for _, p := range platforms {
		found, err := p.Discover()
		if err != nil {
			return nil, fmt.Errorf("discovering %s files: %w", p.Name(), err)
		}
		files = append(files, found...)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{TotalFiles: len(files)},
	}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	// Diff: partition into changed and unchanged by mtime+size.
	var toReparse []source.DiscoveredFile
	var unchanged []string

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			continue
		}
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged = append(unchanged, f.Path)
		} else {
			toReparse = append(toReparse, f)
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	var records []model.UsageRecord

	for _, path := range unchanged {
		cached, err := cache.LoadRecords(path)
		if err != nil {
			return nil, fmt.Errorf("loading cached records: %w", err)
		}
		result.ParsedFiles++
		records = append(records, cached...)
	}

	if len(toReparse) > 0 {
		results := parseAll(toReparse, progressFn, result.CacheHits, result.TotalFiles)

		for i, fr := range results {
			if fr.Err != nil {
				result.FileErrors++
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += fr.ParseErrors
			result.SkippedLines += fr.Skipped
			records = append(records, fr.Records...)

			info, err := os.Stat(toReparse[i].Path)
			if err == nil {
				_ = cache.SaveFileRecords(toReparse[i].Path, info.ModTime().UnixNano(), info.Size(), fr.Records)
			}
		}
	}

	result.Records, result.Duplicates = mergeRecords(records)
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "aimon")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "aimon")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "records.db")
}
