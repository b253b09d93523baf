package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/debug"
)

func main() {
	slog.SetLogLoggerLevel(debug.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(runPipeline).ExecuteContext(ctx); err != nil {
		slog.Error("failed to publish metadata", "error", err)
		stop()
		os.Exit(1)
	}
}
