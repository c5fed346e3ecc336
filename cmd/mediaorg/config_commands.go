package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaorg/internal/config"
	"mediaorg/internal/services"
	"mediaorg/internal/services/pattern"
)

func newConfigCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(state))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		path      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write an annotated sample configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			dest, err := initPath(path)
			if err != nil {
				return err
			}
			if err := config.WriteSample(dest, overwrite); err != nil {
				return fmt.Errorf("config init: %w (use --overwrite to replace it)", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Where to write the file (default ~/.config/mediaorg/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initPath(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(flag)
}

func newConfigValidateCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and check its target patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := state.loadConfig()
			if err != nil {
				return err
			}
			org := cfg.Organize
			if err := pattern.ValidatePatterns(nil, org.TargetDirPattern, org.TargetFilePattern); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "validate patterns", state.cfgPath, err)
			}

			out := cmd.OutOrStdout()
			source := state.cfgPath
			if !state.cfgExists {
				source += " (not found, using defaults)"
			}
			fmt.Fprintf(out, "Config path: %s\n", source)
			fmt.Fprintf(out, "State directory: %s\n", cfg.Paths.StateDir)
			fmt.Fprintf(out, "Layout: %s/%s (mode %s, fingerprint %s)\n",
				org.TargetDirPattern, org.TargetFilePattern, org.Mode, org.Fingerprint)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
