package main

import "github.com/spf13/cobra"

func newRootCommand() *cobra.Command {
	state := &cliState{}
	opts := &organizeOptions{}

	root := &cobra.Command{
		Use:   "mediaorg SOURCE TARGET",
		Short: "Organize photos and videos into folders by creation date",
		Long: `mediaorg moves media files from SOURCE into TARGET, placing each file under
a directory and name rendered from its creation time. Files that already exist
at their destination are skipped, name clashes get a (N) suffix, and files
without a usable date go to the unrecognized folder.`,
		Example: `  mediaorg ~/DCIM ~/Pictures --dry-run
  mediaorg ~/DCIM ~/Pictures --target-dir-pattern "%Y/%Y-%m" --copy`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsConfig(cmd) {
				return nil
			}
			_, err := state.loadConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, state, opts, args[0], args[1])
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&state.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&state.logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	opts.bind(root)

	root.AddCommand(newHistoryCommand(state), newConfigCommand(state))
	return root
}
