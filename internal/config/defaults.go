package config

const (
	defaultLibraryDir        = "~/music"
	defaultDataDir           = "~/.local/share/harmonia"
	defaultLogDir            = "~/.local/share/harmonia/logs"
	defaultLockTimeout       = 30
	defaultFuzzyThreshold    = 0.78
	defaultDurationTolerance = 5
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// DefaultStrategies is the canonical pipeline order.
var DefaultStrategies = []string{"exact", "album", "year", "duration", "fuzzy"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Database: Database{
			LockTimeout: defaultLockTimeout,
		},
		Matching: Matching{
			FuzzyThreshold:    defaultFuzzyThreshold,
			DurationTolerance: defaultDurationTolerance,
			UseYear:           true,
			Strategies:        append([]string(nil), DefaultStrategies...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
