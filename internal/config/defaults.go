package config

const (
	defaultScratchDir = "~/.local/share/stash/scratch"
	defaultLogDir     = "~/.local/share/stash/logs"
	defaultStateDir   = "~/.local/share/stash/state"
	defaultImportDir  = "~/stash-imports"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
			ImportDir:  defaultImportDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
