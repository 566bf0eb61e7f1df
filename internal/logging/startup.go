package logging

import (
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupSummary collects the services a process wired at boot and emits
// them as one structured event.
type StartupSummary struct {
	name     string
	features map[string]bool
	config   map[string]string
}

// NewStartupSummary creates a summary for the named process
func NewStartupSummary(name string) *StartupSummary {
	return &StartupSummary{
		name:     name,
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Feature registers whether an optional service is enabled
func (s *StartupSummary) Feature(name string, enabled bool) *StartupSummary {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration value. Never pass secrets.
func (s *StartupSummary) Config(key, value string) *StartupSummary {
	s.config[key] = value
	return s
}

// Log emits the summary at info level
func (s *StartupSummary) Log() {
	evt := log.Info().
		Str("service", s.name).
		Str("goVersion", runtime.Version())

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}
	if len(s.config) > 0 {
		d := zerolog.Dict()
		for k, v := range s.config {
			d = d.Str(k, v)
		}
		evt = evt.Dict("config", d)
	}

	evt.Msg("startup complete")
}
