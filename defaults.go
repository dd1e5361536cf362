package scheduler

import (
	"runtime"
	"time"

	"github.com/taskcore/scheduler/metrics"
)

// defaultConfig centralizes default values for Config. Applied as the base
// that Options are then folded onto in newConfig.
func defaultConfig() Config {
	return Config{
		WorkerCount:         runtime.GOMAXPROCS(0),
		StarvationThreshold: 2 * time.Second,
		ReferenceTime:       timeNow(),
		Diagnostics:         NewDiagnostics(nil),
		Metrics:             metrics.NewNoopProvider(),
	}
}

// newConfig applies opts onto defaultConfig and validates the result.
func newConfig(opts ...Option) (Config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("nil scheduler option")
		}
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
