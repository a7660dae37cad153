package config

import "runtime"

const (
	defaultConfigPath         = "~/.config/ctcseg/config.toml"
	defaultLogDir             = "~/.local/share/ctcseg/logs"
	defaultStateDir           = "~/.local/share/ctcseg"
	defaultMode               = ModeChar
	defaultSpace              = " "
	defaultWordBoundary       = "▁"
	defaultExcludedCharacters = ".,»«•❍·"
	defaultMinWindowSize      = 8000
	defaultIndexDuration      = 0.04
	defaultScoreWindow        = 30
	defaultQueueSize          = 64
	defaultLogBuffer          = 256
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Alignment: Alignment{
			Mode:               defaultMode,
			Space:              defaultSpace,
			WordBoundary:       defaultWordBoundary,
			ExcludedCharacters: defaultExcludedCharacters,
			MinWindowSize:      defaultMinWindowSize,
			IndexDuration:      defaultIndexDuration,
			ScoreWindow:        defaultScoreWindow,
			NormalizeUnicode:   true,
		},
		Batch: Batch{
			Workers:   defaultWorkers(),
			QueueSize: defaultQueueSize,
			LogBuffer: defaultLogBuffer,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
