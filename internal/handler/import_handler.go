package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/internal/service"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	"github.com/Mk-yl/convocation-portal/pkg/disposition"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/formdata"
	"github.com/Mk-yl/convocation-portal/pkg/response"
)

type candidateImporter interface {
	ImportCandidates(ctx context.Context, file formdata.File) (*models.ImportResult, error)
}

type importReporter interface {
	RenderImport(result *models.ImportResult, format models.ReportFormat) (*models.ImportReport, error)
}

// ImportHandler uploads candidate rosters and exports their summaries.
type ImportHandler struct {
	importer     candidateImporter
	reporter     importReporter
	env          StageEnv
	previewLimit int
}

// NewImportHandler constructs the handler.
func NewImportHandler(importer candidateImporter, reporter importReporter, env StageEnv, previewLimit int) *ImportHandler {
	return &ImportHandler{importer: importer, reporter: reporter, env: env, previewLimit: previewLimit}
}

// Import godoc
// @Summary Import a candidate roster
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Candidate spreadsheet"
// @Success 200 {object} response.Envelope
// @Router /import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	env, recorder := h.env.forRequest(c)
	file, closeFile, err := uploadedFile(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	result, err := workflow.NewImportStage(h.importer, env).Submit(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err, responseMeta(c, recorder))
		return
	}
	response.JSON(c, http.StatusOK, result.Preview(h.previewLimit), responseMeta(c, recorder))
}

// Report godoc
// @Summary Export an import result
// @Tags Import
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /import/report [post]
func (h *ImportHandler) Report(c *gin.Context) {
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var result models.ImportResult
	if err := c.ShouldBindJSON(&result); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import result"))
		return
	}
	report, err := h.reporter.RenderImport(&result, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", disposition.Attachment(report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
