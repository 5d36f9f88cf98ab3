package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanjith314/gradescope-api/cmd/gradescope-cli/commands"
	"github.com/sanjith314/gradescope-api/lib/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.SetupFromEnv(ctx, "gradescope-cli")
	if err != nil {
		slog.Error("failed to setup telemetry", "err", err)
		os.Exit(1)
	}
	defer tel.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
