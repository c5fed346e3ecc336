package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mediaorg/internal/config"
	"mediaorg/internal/logging"
	"mediaorg/internal/services"
)

// annotationNoConfig marks commands that run without loading configuration.
const annotationNoConfig = "mediaorg/no-config"

// cliState carries the persistent flags and the configuration they select.
// Configuration is loaded at most once per invocation.
type cliState struct {
	configFlag   string
	logLevelFlag string

	cfg       *config.Config
	cfgPath   string
	cfgExists bool
	cfgErr    error
	cfgLoaded bool
}

// loadConfig returns the configuration named by --config with --log-level
// applied. It never creates directories; components that write create what
// they need, so dry runs leave the disk alone.
func (s *cliState) loadConfig() (*config.Config, error) {
	if s.cfgLoaded {
		return s.cfg, s.cfgErr
	}
	s.cfgLoaded = true

	path := strings.TrimSpace(s.configFlag)
	cfg, resolved, exists, err := config.Load(path)
	s.cfgPath, s.cfgExists = resolved, exists
	if err != nil {
		s.cfgErr = services.Wrap(services.ErrConfiguration, "config", "load", resolved, err)
		return nil, s.cfgErr
	}
	if level := strings.ToLower(strings.TrimSpace(s.logLevelFlag)); level != "" {
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			s.cfgErr = services.Wrap(services.ErrConfiguration, "config", "apply --log-level", level, err)
			return nil, s.cfgErr
		}
	}
	s.cfg = cfg
	return cfg, nil
}

// logger builds the run logger on the command's stderr; stdout carries
// only reports.
func (s *cliState) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, skip := c.Annotations[annotationNoConfig]; skip {
			return false
		}
	}
	return true
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}
