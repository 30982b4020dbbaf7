package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/response"
)

type referenceSnapshotter interface {
	Snapshot(ctx context.Context) (*models.ReferenceSnapshot, error)
}

type convocationService interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
	Download(ctx context.Context, sessionID string) (*models.Archive, error)
}

// GenerateHandler serves the generation screen and the archive download.
type GenerateHandler struct {
	references  referenceSnapshotter
	convocation convocationService
	validator   *validator.Validate
	env         StageEnv
}

// NewGenerateHandler constructs the handler.
func NewGenerateHandler(references referenceSnapshotter, convocation convocationService, validate *validator.Validate, env StageEnv) *GenerateHandler {
	if validate == nil {
		validate = workflow.NewValidator()
	}
	return &GenerateHandler{references: references, convocation: convocation, validator: validate, env: env}
}

type generationView struct {
	Form      workflow.GenerationForm   `json:"form"`
	Options   workflow.Options          `json:"options"`
	Reference *models.ReferenceSnapshot `json:"reference,omitempty"`
}

type selectionRequest struct {
	Form    workflow.GenerationForm `json:"form"`
	ClassID int                     `json:"classeId"`
}

type generationResponse struct {
	Result *models.GenerationResult `json:"result"`
	Next   *workflow.Handoff        `json:"next,omitempty"`
}

func (h *GenerateHandler) stage(env workflow.Env, form workflow.GenerationForm) *workflow.GenerateStage {
	return workflow.NewGenerateStage(workflow.GenerateDeps{
		References: h.references,
		Generator:  h.convocation,
		Downloader: workflow.NewDownloader(h.convocation, env),
	}, form, env)
}

// Form godoc
// @Summary Generation form with its reference data
// @Tags Generate
// @Produce json
// @Param sessionId query string false "Session id copied from the import"
// @Success 200 {object} response.Envelope
// @Router /generate/form [get]
func (h *GenerateHandler) Form(c *gin.Context) {
	env, recorder := h.env.forRequest(c)
	stage := h.stage(env, workflow.GenerationForm{SessionID: strings.TrimSpace(c.Query("sessionId"))})
	err := stage.Mount(c.Request.Context())
	view := generationView{Form: stage.Form(), Options: stage.Options(), Reference: stage.Snapshot()}
	if err != nil {
		response.Partial(c, err, view, responseMeta(c, recorder))
		return
	}
	response.JSON(c, http.StatusOK, view, responseMeta(c, recorder))
}

// Selection godoc
// @Summary Change the selected class
// @Tags Generate
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /generate/selection [post]
func (h *GenerateHandler) Selection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload"))
		return
	}
	env, recorder := h.env.forRequest(c)
	stage := h.stage(env, req.Form)
	err := stage.Mount(c.Request.Context())
	options := stage.SelectClass(req.ClassID)
	view := generationView{Form: stage.Form(), Options: options}
	if err != nil {
		response.Partial(c, err, view, responseMeta(c, recorder))
		return
	}
	response.JSON(c, http.StatusOK, view, responseMeta(c, recorder))
}

// Generate godoc
// @Summary Generate convocations
// @Tags Generate
// @Accept multipart/form-data
// @Produce json
// @Param templateFile formData file true "Word template"
// @Param signatureImage formData file false "Signature image"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	var form workflow.GenerationForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation form"))
		return
	}
	if err := workflow.ValidateForm(h.validator, form); err != nil {
		response.Error(c, err)
		return
	}

	template, closeTemplate, err := uploadedFile(c, "templateFile")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeTemplate()
	signature, closeSignature, err := uploadedFile(c, "signatureImage")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeSignature()

	env, recorder := h.env.forRequest(c)
	stage := h.stage(env, form)
	result, err := stage.Submit(c.Request.Context(), workflow.GenerationFiles{Template: template, Signature: signature})
	switch {
	case err == nil:
		body := generationResponse{Result: result}
		if handoff, ok := stage.ProceedToEmail(); ok {
			body.Next = &handoff
		}
		response.JSON(c, http.StatusOK, body, responseMeta(c, recorder))
	case result != nil:
		response.Partial(c, err, generationResponse{Result: result}, responseMeta(c, recorder))
	default:
		response.Error(c, err, responseMeta(c, recorder))
	}
}

// Download godoc
// @Summary Download the convocation archive of a session
// @Tags Generate
// @Produce application/zip
// @Param sessionId path string true "Session id"
// @Success 200 {file} file
// @Router /download/{sessionId} [get]
func (h *GenerateHandler) Download(c *gin.Context) {
	env, recorder := h.env.forRequest(c)
	sink := &workflow.ResponseSink{W: c.Writer}
	_, err := workflow.NewDownloader(h.convocation, env).Download(c.Request.Context(), c.Param("sessionId"), sink)
	if err == nil {
		return
	}
	if sink.Started() {
		_ = c.Error(err)
		return
	}
	response.Error(c, err, responseMeta(c, recorder))
}
