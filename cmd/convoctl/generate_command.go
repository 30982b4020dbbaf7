package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

type generateOptions struct {
	form         workflow.GenerationForm
	template     string
	signature    string
	async        bool
	pollInterval time.Duration
	download     bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the convocations of an imported session",
		Long: "Generate merges the session candidates into the Word template. Location and venue default to the first\n" +
			"entry of their collection; --classe narrows the certifications and exam types that may be chosen.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			env := ctx.stageEnv(cmd, svc)
			stage := workflow.NewGenerateStage(workflow.GenerateDeps{
				References: svc.references,
				Generator:  svc.convocations,
				Downloader: workflow.NewDownloader(svc.convocations, env),
			}, opts.form, env)
			if err := stage.Mount(cmd.Context()); err != nil {
				svc.logger.Debug("continuing with partial reference data", zap.Error(err))
			}
			if err := checkSelection(stage.Form(), stage.Options()); err != nil {
				return err
			}
			if err := workflow.ValidateForm(workflow.NewValidator(), stage.Form()); err != nil {
				return err
			}

			template, closeTemplate, err := openUpload(opts.template)
			if err != nil {
				return err
			}
			defer closeTemplate()
			signature, closeSignature, err := openUpload(opts.signature)
			if err != nil {
				return err
			}
			defer closeSignature()
			files := workflow.GenerationFiles{Template: template, Signature: signature}

			var result *models.GenerationResult
			if opts.async {
				if template == nil {
					return appErrors.ErrMissingTemplate
				}
				result, err = generateAsync(cmd, svc, stage.Form().Request(files), opts.pollInterval)
			} else {
				result, err = stage.Submit(cmd.Context(), files)
			}
			if result != nil {
				if printErr := printGeneration(cmd, ctx.flags.json, result); printErr != nil {
					return printErr
				}
			}
			if err != nil {
				return err
			}

			if opts.download {
				path, err := workflow.NewDownloader(svc.convocations, env).Download(cmd.Context(), result.SessionID, workflowSink(svc))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "archive saved to %s\n", path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.form.SessionID, "session", "", "Session id issued by the import")
	f.IntVar(&opts.form.LocationID, "ville", 0, "Location id")
	f.IntVar(&opts.form.ClassID, "classe", 0, "Class id narrowing certifications and exam types")
	f.IntVar(&opts.form.CertificationID, "certification", 0, "Certification id")
	f.IntVar(&opts.form.ExamTypeID, "type-examen", 0, "Exam type id")
	f.IntVar(&opts.form.VenueID, "adresse", 0, "Venue id")
	f.IntVar(&opts.form.DurationID, "duree", 0, "Exam duration id")
	f.StringVar(&opts.form.RenderDate, "date", "", "Submission date")
	f.StringVar(&opts.form.RenderTime, "heure", "", "Submission time")
	f.StringVar(&opts.form.DriveLink, "drive", "", "Shared drive link")
	f.StringVar(&opts.template, "template", "", "Word template (.docx)")
	f.StringVar(&opts.signature, "signature", "", "Signature image")
	f.BoolVar(&opts.async, "async", false, "Queue the generation and poll its status")
	f.DurationVar(&opts.pollInterval, "poll-interval", 2*time.Second, "Status polling interval with --async")
	f.BoolVar(&opts.download, "download", false, "Download the archive once generated")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

// checkSelection rejects a certification or exam type that the selected
// class does not offer.
func checkSelection(form workflow.GenerationForm, options workflow.Options) error {
	if form.CertificationID != 0 && !offers(options.Certifications, form.CertificationID) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("certification %d is not offered for class %d", form.CertificationID, form.ClassID))
	}
	if form.ExamTypeID != 0 && !offers(options.ExamTypes, form.ExamTypeID) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("exam type %d is not offered for class %d", form.ExamTypeID, form.ClassID))
	}
	return nil
}

func offers[T models.ReferenceEntity](items []T, id int) bool {
	for _, item := range items {
		if item.EntityID() == id {
			return true
		}
	}
	return false
}

type asyncGenerator interface {
	GenerateAsync(ctx context.Context, req models.GenerationRequest) (*models.GenerationTask, error)
	TaskStatus(ctx context.Context, taskID string) (*models.TaskStatus, error)
}

func generateAsync(cmd *cobra.Command, svc *services, req models.GenerationRequest, interval time.Duration) (*models.GenerationResult, error) {
	task, err := svc.convocations.GenerateAsync(cmd.Context(), req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "generation queued as task %s\n", task.TaskID)
	return pollTask(cmd, svc.convocations, task.TaskID, interval)
}

// pollTask waits until the task leaves the pending and running states.
func pollTask(cmd *cobra.Command, gen asyncGenerator, taskID string, interval time.Duration) (*models.GenerationResult, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := gen.TaskStatus(cmd.Context(), taskID)
		if err != nil {
			return nil, err
		}
		if status.Done() {
			if status.Status == models.TaskFailed || !status.Result.Succeeded() {
				message := "convocation generation failed"
				if status.Result != nil && status.Result.Message != "" {
					message = status.Result.Message
				}
				return status.Result, appErrors.Clone(appErrors.ErrGenerationFailed, message)
			}
			return status.Result, nil
		}
		if status.Progress != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "task %s %s (%.0f%%)\n", taskID, status.Status, *status.Progress)
		}

		select {
		case <-cmd.Context().Done():
			return nil, cmd.Context().Err()
		case <-ticker.C:
		}
	}
}

func printGeneration(cmd *cobra.Command, asJSON bool, result *models.GenerationResult) error {
	if asJSON {
		return writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	session := result.SessionID
	if session == "" {
		session = "(none)"
	}
	fmt.Fprintf(out, "Session: %s\n", session)
	fmt.Fprintf(out, "Files:   %d\n", result.FilesGenerated)
	if result.DownloadURL != "" {
		fmt.Fprintf(out, "Archive: %s\n", result.DownloadURL)
	}
	if result.Message != "" {
		fmt.Fprintf(out, "Message: %s\n", result.Message)
	}
	return nil
}

func workflowSink(svc *services) workflow.Sink {
	return workflow.StorageSink{Storage: svc.storage}
}
