package repository

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/formdata"
)

// ConvocationTimeouts bounds each call type.
type ConvocationTimeouts struct {
	Default  time.Duration
	Generate time.Duration
	Download time.Duration
	Email    time.Duration
}

// ConvocationRepository calls the import, generation, download and mailing
// endpoints of the convocation service.
type ConvocationRepository struct {
	upstream *UpstreamClient
	timeouts ConvocationTimeouts
}

// NewConvocationRepository constructs the repository.
func NewConvocationRepository(upstream *UpstreamClient, timeouts ConvocationTimeouts) *ConvocationRepository {
	return &ConvocationRepository{upstream: upstream, timeouts: timeouts}
}

// ImportCandidates uploads a roster spreadsheet.
func (r *ConvocationRepository) ImportCandidates(ctx context.Context, file formdata.File) (*models.ImportResult, error) {
	payload, err := ComposeImportPayload(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import file")
	}
	defer payload.Close()

	var result models.ImportResult
	err = r.upstream.sendJSON(ctx, upstreamCall{
		operation:   "import",
		method:      http.MethodPost,
		path:        "/import",
		body:        payload.Body,
		contentType: payload.ContentType,
		timeout:     r.timeouts.Default,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	return &result, nil
}

// Generate renders the convocations synchronously.
func (r *ConvocationRepository) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	payload, err := ComposeGenerationPayload(req)
	if err != nil {
		return nil, err
	}
	defer payload.Close()

	var result models.GenerationResult
	err = r.upstream.sendJSON(ctx, upstreamCall{
		operation:   "generate",
		method:      http.MethodPost,
		path:        "/generate",
		body:        payload.Body,
		contentType: payload.ContentType,
		timeout:     r.timeouts.Generate,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateAsync queues a generation and returns its task handle.
func (r *ConvocationRepository) GenerateAsync(ctx context.Context, req models.GenerationRequest) (*models.GenerationTask, error) {
	payload, err := ComposeGenerationPayload(req)
	if err != nil {
		return nil, err
	}
	defer payload.Close()

	var task models.GenerationTask
	err = r.upstream.sendJSON(ctx, upstreamCall{
		operation:   "generate_async",
		method:      http.MethodPost,
		path:        "/generate-async",
		body:        payload.Body,
		contentType: payload.ContentType,
		timeout:     r.timeouts.Default,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// TaskStatus reports the progress of a queued generation.
func (r *ConvocationRepository) TaskStatus(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "task id is required")
	}
	var status models.TaskStatus
	err := r.upstream.sendJSON(ctx, upstreamCall{
		operation: "task_status",
		method:    http.MethodGet,
		path:      "/task-status/" + url.PathEscape(taskID),
		timeout:   r.timeouts.Default,
	}, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Download opens the archive stream of a session. The deadline covers the
// whole transfer and is released when the body is closed.
func (r *ConvocationRepository) Download(ctx context.Context, sessionID string) (*models.Archive, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, appErrors.ErrMissingSession
	}
	resp, err := r.upstream.send(ctx, upstreamCall{
		operation: "download",
		method:    http.MethodGet,
		path:      "/download/" + url.PathEscape(sessionID),
		timeout:   r.timeouts.Download,
	})
	if err != nil {
		return nil, err
	}
	return &models.Archive{
		Disposition:   resp.Header.Get("Content-Disposition"),
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

// SendEmails asks the service to mail the generated convocations. The
// service answers with a free-form confirmation.
func (r *ConvocationRepository) SendEmails(ctx context.Context, req models.EmailRequest) (string, error) {
	if req.CCEmails == nil {
		req.CCEmails = []string{}
	}
	body, err := jsonBody(req)
	if err != nil {
		return "", err
	}
	return r.upstream.sendText(ctx, upstreamCall{
		operation:   "send_emails",
		method:      http.MethodPost,
		path:        "/send-emails",
		body:        body,
		contentType: "application/json",
		timeout:     r.timeouts.Email,
	})
}
