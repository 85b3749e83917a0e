// Package pipeline orchestrates record loading, caching, session
// segmentation, and metric aggregation.
package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/platform"
	"github.com/theirongolddev/aimon/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
// Records are sorted by timestamp and globally deduplicated.
type LoadResult struct {
	Records []model.UsageRecord

	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
	SkippedLines int
	// Duplicates counts records dropped by cross-file deduplication.
	Duplicates int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses all usage files from the given platforms.
// It uses a bounded worker pool for parallel parsing.
func Load(platforms []platform.Platform, progressFn ProgressFunc) (*LoadResult, error) {
	var files []source.DiscoveredFile
	for _, p := range platforms {
		found, err := p.Discover()
		if err != nil {
			return nil, fmt.Errorf("discovering %s files: %w", p.Name(), err)
		}
		files = append(files, found...)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, progressFn, 0, len(files))

	var records []model.UsageRecord
	for _, fr := range results {
		if fr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += fr.ParseErrors
		result.SkippedLines += fr.Skipped
		records = append(records, fr.Records...)
	}

	result.Records, result.Duplicates = mergeRecords(records)
	return result, nil
}

// parseAll runs ParseFile over files with a bounded worker pool.
// done/total offset the progress callback when part of the work was
// already served from cache.
func parseAll(files []source.DiscoveredFile, progressFn ProgressFunc, done, total int) []source.FileResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.FileResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx].Path)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+done, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// mergeRecords sorts records by timestamp and drops cross-file
// duplicates. The first record seen for a dedup key wins; records
// without a key are never deduplicated.
func mergeRecords(records []model.UsageRecord) ([]model.UsageRecord, int) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	duplicates := 0
	for _, r := range records {
		if r.DedupKey != "" {
			if _, dup := seen[r.DedupKey]; dup {
				duplicates++
				continue
			}
			seen[r.DedupKey] = struct{}{}
		}
		out = append(out, r)
	}
	return out, duplicates
}
