package main

import (
	"context"
	"os"
	"runtime"

	"github.com/charmbracelet/fang"

	"imagedetective/cmd"
	"imagedetective/signalhandler"
)

var version = "dev"

func main() {
	ctx, stop := signalhandler.SetupHandler(context.Background())
	defer stop()

	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	if err := fang.Execute(ctx, cmd.NewRootCmd(), fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}
