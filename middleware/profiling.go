package middleware

import (
	"github.com/grafana/pyroscope-go"

	"github.com/duynhne/backoffice/config"
)

var profiler *pyroscope.Profiler

// InitProfiling starts Pyroscope continuous profiling
func InitProfiling(cfg *config.Config) error {
	name, env := serviceIdentity(cfg)

	var err error
	profiler, err = pyroscope.Start(pyroscope.Config{
		ApplicationName: name,
		ServerAddress:   cfg.Profiling.Endpoint,
		Tags: map[string]string{
			"service":     name,
			"environment": env,
			"version":     cfg.Service.Version,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Logger: pyroscope.StandardLogger,
	})
	return err
}

// StopProfiling stops Pyroscope profiling
func StopProfiling() {
	if profiler != nil {
		_ = profiler.Stop()
	}
}
