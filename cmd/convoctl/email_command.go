package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mk-yl/convocation-portal/internal/workflow"
)

func newEmailCommand(ctx *commandContext) *cobra.Command {
	var form workflow.EmailForm

	cmd := &cobra.Command{
		Use:   "email",
		Short: "Email every candidate of a session their convocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			stage := workflow.NewEmailStage(workflow.Handoff{SessionID: form.SessionID}, svc.convocations, nil, ctx.stageEnv(cmd, svc))
			stage.SetForm(form)
			message, err := stage.Submit(cmd.Context())
			if err != nil {
				return err
			}
			if message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&form.SessionID, "session", "", "Session id")
	cmd.Flags().StringVar(&form.ExamLabel, "label", "", "Exam label shown in the email")
	cmd.Flags().StringArrayVar(&form.CCEmails, "cc", nil, "Carbon copy address (repeatable)")
	return cmd
}
