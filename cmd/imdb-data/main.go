package main

import (
	"context"

	"imdbdata/cmd/imdb-data/commands"
	"imdbdata/lib/telemetry"
)

func main() {
	ctx := context.Background()
	tel, err := telemetry.SetupFromEnv(ctx, "imdb-data")
	if err == nil {
		defer tel.Shutdown(ctx)
		telemetry.InstrumentPerfStats(ctx)
	}
	commands.ExecuteContext(ctx)
}
