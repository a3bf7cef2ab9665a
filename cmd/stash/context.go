package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"stash/internal/config"
	"stash/internal/library"
	"stash/internal/logging"
	"stash/internal/recent"
	"stash/internal/staging"
)

// staleScratchAge is how old a leftover scratch directory must be before
// startup cleanup removes it.
const staleScratchAge = 24 * time.Hour

type commandContext struct {
	configFlag  *string
	libraryFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, libraryFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		libraryFlag: libraryFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		})
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
		// Crash backstop: scratch dirs are removed after every operation,
		// so anything old enough to hit this sweep was orphaned.
		staging.CleanStale(cfg.Paths.ScratchDir, staleScratchAge, logger)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) engine() (*library.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return library.NewEngine(cfg.Paths.ScratchDir, logger), nil
}

func (c *commandContext) openStore() (*recent.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return recent.Open(cfg.Paths.StateDir)
}

// resolveLibrary picks the archive a command operates on: the --library
// flag, then the configured default, then the most recently opened library.
func (c *commandContext) resolveLibrary(ctx context.Context) (string, error) {
	if c.libraryFlag != nil {
		if flag := strings.TrimSpace(*c.libraryFlag); flag != "" {
			return config.ExpandPath(flag)
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Paths.DefaultLibrary != "" {
		return cfg.Paths.DefaultLibrary, nil
	}

	store, err := c.openStore()
	if err != nil {
		return "", fmt.Errorf("open recent-library store: %w", err)
	}
	defer store.Close()
	lib, err := store.MostRecent(ctx)
	if err != nil {
		return "", err
	}
	if lib == nil {
		return "", errors.New("no library specified; pass --library, set default_library in config, or create one with `stash create`")
	}
	return lib.Path, nil
}

// rememberLibrary records an open or mutation in the recent store.
// Failures are logged, never surfaced; preferences must not block commands.
func (c *commandContext) rememberLibrary(ctx context.Context, archivePath, name string) {
	store, err := c.openStore()
	if err != nil {
		c.warnPreferences(err)
		return
	}
	defer store.Close()
	if err := store.Touch(ctx, archivePath, name); err != nil {
		c.warnPreferences(err)
	}
}

func (c *commandContext) warnPreferences(err error) {
	logger, logErr := c.ensureLogger()
	if logErr != nil || logger == nil {
		return
	}
	logger.Warn("preference store unavailable", logging.Error(err))
}

// withSession opens the resolved library read-only, runs fn, and always
// cleans up the scratch extraction.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(*library.Session) error) error {
	archivePath, err := c.resolveLibrary(cmd.Context())
	if err != nil {
		return err
	}
	eng, err := c.engine()
	if err != nil {
		return err
	}
	sess, err := eng.Open(archivePath)
	if err != nil {
		return err
	}
	defer sess.Close()
	c.rememberLibrary(cmd.Context(), archivePath, sess.Document().LibraryName)
	return fn(sess)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
