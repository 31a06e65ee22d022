package signalhandler

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler returns a context that is cancelled on SIGINT or SIGTERM, so
// in-flight native image work can unwind instead of exiting mid-call. Call
// stop to release the signal registration.
func SetupHandler(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// GetOptimalProcs returns the optimal number of worker goroutines for the system
func GetOptimalProcs() int {
	// Get the number of CPUs available
	numCPU := runtime.NumCPU()

	// For image processing with CGo, using too many goroutines can cause issues
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
