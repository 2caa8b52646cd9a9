package pipeline

import (
	"io"
	"log/slog"
	"time"

	"github.com/hmercer/tapread/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(workers, queue int) config.Config {
	return config.Config{
		WorkerCount:  workers,
		MaxQueueSize: queue,
		JobTTL:       time.Hour,
	}
}
