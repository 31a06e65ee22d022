package scanner

import (
	"context"
	"io"
	"sync"
	"time"

	"imagedetective/types"
)

// Matcher decides one candidate. *engine.Engine implements it.
type Matcher interface {
	Match(ctx context.Context, path string) (*types.Verdict, error)
}

// MatchOptions defines the options for a batch run
type MatchOptions struct {
	// Extensions is the candidate allow-list, the default list if empty
	Extensions []string

	// MaxWorkers bounds concurrently matched candidates, 1 if not positive
	MaxWorkers int

	// Progress receives periodic progress lines, nil disables them
	Progress io.Writer

	DebugMode bool
}

// MatchResult holds the outcome of matching one candidate
type MatchResult struct {
	Path    string
	Verdict *types.Verdict
	Report  string
	Error   error
}

// FileStats tracks information about files to be processed
type FileStats struct {
	totalFiles int
	folders    int
}

// Run describes a completed batch run
type Run struct {
	ID        string
	Profile   string
	StartedAt time.Time
	Elapsed   time.Duration
	Results   []MatchResult
}

// ProgressTracker tracks progress of a batch run
type ProgressTracker struct {
	processed  int
	matches    int
	rejected   int
	errors     int
	ticker     *time.Ticker
	done       chan bool
	mu         sync.Mutex
	stopOnce   sync.Once
	totalFiles int
	out        io.Writer
}
