package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags globalFlags

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "convoctl",
		Short:         "Drive convocation sessions from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.upstream, "upstream", "", "Convocation service base URL (overrides UPSTREAM_BASE_URL)")
	rootCmd.PersistentFlags().StringVarP(&flags.outDir, "out", "o", "", "Directory for downloaded archives and reports (overrides DOWNLOAD_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newRefdataCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newDownloadCommand(ctx))
	rootCmd.AddCommand(newEmailCommand(ctx))
	rootCmd.AddCommand(newAdminCommand(ctx))

	return rootCmd
}
