package main

import (
	"context"
	"log/slog"

	"lariat/cmd/lariat-cli/commands"
	"lariat/lib/telemetry"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.SetupFromEnv(ctx, "lariat-cli")
	if err != nil {
		slog.Warn("failed to set up telemetry", "err", err)
	}
	defer tel.Shutdown(ctx)

	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
