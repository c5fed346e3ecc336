package config

const (
	ModeMove = "move"
	ModeCopy = "copy"

	FingerprintSize   = "size"
	FingerprintXXHash = "xxhash"
)

const (
	defaultStateDir          = "~/.local/share/mediaorg"
	defaultTargetDirPattern  = "%Y/%m/%d"
	defaultTargetFilePattern = "%Y-%m-%dT%H%M%S"
	defaultUnrecognized      = "unrecognized"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Organize: Organize{
			TargetDirPattern:  defaultTargetDirPattern,
			TargetFilePattern: defaultTargetFilePattern,
			Unrecognized:      defaultUnrecognized,
			Mode:              ModeMove,
			Fingerprint:       FingerprintSize,
			SkipHidden:        false,
		},
		Dates: Dates{
			EXIF:      true,
			QuickTime: true,
			Filename:  true,
			FileTime:  true,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
