package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/internal/service"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var report string
	var all bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Upload a candidate spreadsheet and print the issued session id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			file, closeFile, err := openUpload(args[0])
			if err != nil {
				return err
			}
			defer closeFile()

			stage := workflow.NewImportStage(svc.convocations, ctx.stageEnv(cmd, svc))
			result, err := stage.Submit(cmd.Context(), file)
			if err != nil {
				return err
			}

			if report != "" {
				format, err := service.ParseFormat(report)
				if err != nil {
					return err
				}
				rendered, err := svc.exports.RenderImport(result, format)
				if err != nil {
					return err
				}
				path, err := svc.exports.Store(rendered)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", path)
			}

			limit := svc.cfg.Imports.PreviewLimit
			if all {
				limit = 0
			}
			preview := result.Preview(limit)
			if ctx.flags.json {
				return writeJSON(cmd, preview)
			}
			printImport(cmd, preview)
			return nil
		},
	}

	cmd.Flags().StringVar(&report, "report", "", "Also export the result as csv or pdf")
	cmd.Flags().BoolVar(&all, "all", false, "List every candidate instead of the preview")
	return cmd
}

func printImport(cmd *cobra.Command, preview models.ImportPreview) {
	out := cmd.OutOrStdout()
	result := preview.ImportResult
	if result == nil {
		return
	}
	session := result.SessionID
	if session == "" {
		session = "(none)"
	}
	fmt.Fprintf(out, "Session:    %s\n", session)
	fmt.Fprintf(out, "Candidates: %d\n", result.CandidateCount)
	if result.Message != "" {
		fmt.Fprintf(out, "Message:    %s\n", result.Message)
	}

	if len(result.Candidates) > 0 {
		rows := make([][]string, 0, len(result.Candidates))
		for i, c := range result.Candidates {
			rows = append(rows, []string{strconv.Itoa(i + 1), c.LastName, c.FirstName, c.Email, c.Group})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "Nom", "Prénom", "Email", "Groupe"}, rows, []columnAlignment{alignRight}))
		if preview.HiddenCandidates > 0 {
			fmt.Fprintf(out, "... and %d more\n", preview.HiddenCandidates)
		}
	}

	if result.HasErrors() {
		printSection(out, fmt.Sprintf("Errors (%d)", len(result.Errors)))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}
}
