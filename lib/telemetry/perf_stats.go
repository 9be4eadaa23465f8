package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("imdbdata.runtime")
var cpuGauge, _ = meter.Float64Gauge("cpu_percent")
var heapGauge, _ = meter.Int64Gauge("heap_alloc_mb")
var heapObjectsGauge, _ = meter.Int64Gauge("heap_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutines")

// InstrumentPerfStats samples process cpu and heap usage in the
// background until the context is canceled. Long polls are where this
// process spends its life, so a periodic sample is enough.
func InstrumentPerfStats(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				samplePerfStats(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func samplePerfStats(ctx context.Context) {
	usage, err := cpu.Percent(0, false)
	if err != nil {
		slog.Warn("failed to read cpu usage", "err", err)
	} else if len(usage) > 0 {
		cpuGauge.Record(ctx, usage[0])
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	heapGauge.Record(ctx, int64(memStats.HeapAlloc/1_000_000))
	heapObjectsGauge.Record(ctx, int64(memStats.HeapObjects))
	goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
}
