package signalhandler

import (
	"context"
	"runtime"
	"testing"
)

func TestGetOptimalProcs(t *testing.T) {
	n := GetOptimalProcs()
	if n < 1 || n > runtime.NumCPU() {
		t.Errorf("GetOptimalProcs = %d with %d CPUs", n, runtime.NumCPU())
	}
}

func TestSetupHandler_FollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SetupHandler(parent)
	defer stop()

	cancel()
	<-ctx.Done()
	if ctx.Err() == nil {
		t.Errorf("context should be cancelled with its parent")
	}
}
