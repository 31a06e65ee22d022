package scanner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"imagedetective/engine"
	"imagedetective/logging"
)

// MatchFolders matches every allow-listed image of the given folders. Results
// are returned in collection order. A folder that cannot be listed aborts the
// run before any matching starts.
func MatchFolders(ctx context.Context, m Matcher, folders []string, opts MatchOptions) ([]MatchResult, error) {
	paths, stats, err := CollectCandidates(folders, opts.Extensions)
	if err != nil {
		return nil, err
	}

	if opts.DebugMode {
		logging.DebugLog("Starting batch over %d folders: %v", len(folders), folders)
	}
	return matchPaths(ctx, m, paths, stats, opts)
}

// MatchPaths matches the given candidate files in order
func MatchPaths(ctx context.Context, m Matcher, paths []string, opts MatchOptions) ([]MatchResult, error) {
	return matchPaths(ctx, m, paths, FileStats{totalFiles: len(paths), folders: 0}, opts)
}

func matchPaths(ctx context.Context, m Matcher, paths []string, stats FileStats, opts MatchOptions) ([]MatchResult, error) {
	tracker := NewProgressTracker(stats, opts.Progress)

	results := make([]MatchResult, len(paths))
	semaphore := make(chan struct{}, max(opts.MaxWorkers, 1)) // Limit concurrent goroutines
	var wg sync.WaitGroup

	startTime := time.Now()
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore when done

			results[i] = matchOne(ctx, m, path)
			tracker.Record(results[i])
		}(i, path)
	}

	wg.Wait()
	tracker.Stop()

	if opts.Progress != nil {
		PrintCompletionStats(opts.Progress, tracker, time.Since(startTime))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// matchOne decides a single candidate, turning panics from the native
// image code into errors
func matchOne(ctx context.Context, m Matcher, path string) (result MatchResult) {
	result.Path = path

	defer func() {
		if r := recover(); r != nil {
			stackTrace := debug.Stack()
			result.Verdict = nil
			result.Report = ""
			result.Error = fmt.Errorf("panic while matching: %v", r)
			logging.LogError("Panic while matching %s: %v\nStack trace: %s", path, r, string(stackTrace))
		}
	}()

	verdict, err := m.Match(ctx, path)
	if err != nil {
		result.Error = logging.NewOperationError("match candidate", path, err)
		return result
	}

	result.Verdict = verdict
	result.Report = engine.FormatReport(*verdict)
	return result
}

// Reports returns the report of every successful result, in order
func Reports(results []MatchResult) []string {
	reports := make([]string, 0, len(results))
	for _, r := range results {
		if r.Error == nil {
			reports = append(reports, r.Report)
		}
	}
	return reports
}
