package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mk-yl/convocation-portal/internal/workflow"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download SESSION",
		Short: "Download the convocation archive of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			downloader := workflow.NewDownloader(svc.convocations, ctx.stageEnv(cmd, svc))
			path, err := downloader.Download(cmd.Context(), args[0], workflowSink(svc))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
