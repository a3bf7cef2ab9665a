package config

import "strings"

func (c *Config) normalize() error {
	c.Paths.ScratchDir = strings.TrimSpace(c.Paths.ScratchDir)
	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	c.Paths.StateDir = strings.TrimSpace(c.Paths.StateDir)
	c.Paths.DefaultLibrary = strings.TrimSpace(c.Paths.DefaultLibrary)
	c.Paths.ImportDir = strings.TrimSpace(c.Paths.ImportDir)

	for _, field := range []*string{
		&c.Paths.ScratchDir,
		&c.Paths.LogDir,
		&c.Paths.StateDir,
		&c.Paths.ImportDir,
	} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	// DefaultLibrary is optional; expand only when set.
	if c.Paths.DefaultLibrary != "" {
		expanded, err := expandPath(c.Paths.DefaultLibrary)
		if err != nil {
			return err
		}
		c.Paths.DefaultLibrary = expanded
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
