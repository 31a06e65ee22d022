package scanner

import (
	"fmt"
	"io"
	"time"

	"imagedetective/logging"
)

// NewProgressTracker initializes the progress tracker. Lines are written to
// out, which may be nil.
func NewProgressTracker(stats FileStats, out io.Writer) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan bool),
		totalFiles: stats.totalFiles,
		out:        out,
	}

	// Start progress display goroutine
	go tracker.displayProgress()

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			if p.out == nil {
				continue
			}
			p.mu.Lock()
			fmt.Fprintf(p.out, "\r%s", p.line())
			p.mu.Unlock()
		}
	}
}

// line renders the current progress; callers hold mu
func (p *ProgressTracker) line() string {
	if p.errors > 0 {
		return fmt.Sprintf("Progress: %d/%d (Matches: %d, Rejected: %d, Errors: %d)",
			p.processed, p.totalFiles, p.matches, p.rejected, p.errors)
	}
	return fmt.Sprintf("Progress: %d/%d (Matches: %d, Rejected: %d)",
		p.processed, p.totalFiles, p.matches, p.rejected)
}

// Record updates the tracker state with one result
func (p *ProgressTracker) Record(result MatchResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	switch {
	case result.Error != nil:
		p.errors++
		logging.LogImageProcessed(result.Path, false, result.Error.Error())
	case result.Verdict.IsMatch:
		p.matches++
		logging.LogImageProcessed(result.Path, true, "")
	default:
		p.rejected++
		logging.LogImageProcessed(result.Path, true, "")
	}
}

// Snapshot returns the processed, matched, rejected and failed counts
func (p *ProgressTracker) Snapshot() (processed, matches, rejected, errors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.matches, p.rejected, p.errors
}

// Stop ends the progress tracking. Once it returns no further progress
// line is written. Calling it again is a no-op.
func (p *ProgressTracker) Stop() {
	p.stopOnce.Do(func() {
		p.ticker.Stop()
		p.done <- true
	})
}

// PrintStartupInfo displays information about the run before starting
func PrintStartupInfo(out io.Writer, stats FileStats, profile string) {
	fmt.Fprintf(out, "Starting batch matching...\nCandidate images to process: %d from %d folder(s)\n",
		stats.totalFiles, stats.folders)
	fmt.Fprintf(out, "Profile: %s\n", profile)
	logging.DebugLog("Found %d candidate images in %d folders", stats.totalFiles, stats.folders)
}

// PrintCompletionStats displays statistics after the run completes
func PrintCompletionStats(out io.Writer, tracker *ProgressTracker, elapsed time.Duration) {
	processed, matches, rejected, errors := tracker.Snapshot()

	logging.DebugLog("Batch completed in %v. Processed: %d, Matches: %d, Rejected: %d, Errors: %d",
		elapsed, processed, matches, rejected, errors)

	fmt.Fprintln(out, "\nMatching complete.")
	fmt.Fprintf(out, "Processed %d images in %v.\n", processed, elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "Matches: %d, Rejected: %d\n", matches, rejected)

	if errors > 0 {
		fmt.Fprintf(out, "Encountered %d errors during matching.\n", errors)
		fmt.Fprintln(out, "Check the log file for details.")
	}
}
