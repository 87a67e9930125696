package main

import (
	"context"

	"nightout-backend/cmd/nightout-cli/commands"
	"nightout-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()
	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "nightout-cli")
	if err == nil {
		defer tel.Shutdown(context.Background())
	}
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
