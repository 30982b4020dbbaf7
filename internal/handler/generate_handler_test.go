package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

type viewPayload struct {
	Form    workflow.GenerationForm `json:"form"`
	Options workflow.Options        `json:"options"`
}

func generationFields() map[string]string {
	return map[string]string{
		"sessionId":       "abc123",
		"villeId":         "3",
		"classeId":        "100",
		"certificationId": "2",
		"typeExamenId":    "11",
		"adresseId":       "7",
		"dureeEpreuveId":  "4",
		"dateRendu":       "2026-06-12",
		"heureRendu":      "18:00",
		"lienDrive":       "",
	}
}

func TestGenerateFormAppliesDefaults(t *testing.T) {
	p := newPortal()

	rec := p.do(httptest.NewRequest(http.MethodGet, "/api/v1/generate/form?sessionId=abc123", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view viewPayload
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &view))
	assert.Equal(t, "abc123", view.Form.SessionID)
	assert.Equal(t, 3, view.Form.LocationID)
	assert.Equal(t, 7, view.Form.VenueID)
	assert.Len(t, view.Options.Certifications, 2)
}

func TestGenerateFormPartialReferenceFailure(t *testing.T) {
	p := newPortal()
	p.references.err = appErrors.Clone(appErrors.ErrReferenceIncomplete, "failed to load reference data")

	rec := p.do(httptest.NewRequest(http.MethodGet, "/api/v1/generate/form", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	envelope := decodeEnvelope(t, rec)
	var view viewPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &view))
	assert.Equal(t, 3, view.Form.LocationID)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, "failed to load reference data", envelope.Meta.Notifications[0].Message)
}

func TestGenerateSelectionResetsDependents(t *testing.T) {
	p := newPortal()
	form := workflow.GenerationForm{SessionID: "abc123", LocationID: 1, VenueID: 7, CertificationID: 1, ExamTypeID: 10}

	rec := p.do(jsonRequest(http.MethodPost, "/api/v1/generate/selection", selectionRequest{Form: form, ClassID: 100}))
	require.Equal(t, http.StatusOK, rec.Code)

	var view viewPayload
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &view))
	assert.Equal(t, 100, view.Form.ClassID)
	assert.Equal(t, 1, view.Form.LocationID)
	assert.Zero(t, view.Form.CertificationID)
	assert.Zero(t, view.Form.ExamTypeID)
	assert.Equal(t, []models.Certification{{ID: 2, Name: "Mastère"}}, view.Options.Certifications)
}

func TestGenerateSuccess(t *testing.T) {
	p := newPortal()
	p.convocation.result = &models.GenerationResult{SessionID: "abc123", FilesGenerated: 12, Message: "ok"}

	rec := p.do(multipartRequest(t, "/api/v1/generate", generationFields(), map[string]string{"templateFile": "docx"}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.convocation.requests, 1)

	sent := p.convocation.requests[0]
	assert.Equal(t, 3, sent.LocationID)
	assert.Equal(t, 2, sent.CertificationID)
	assert.Equal(t, "18:00", sent.RenderTime)
	assert.Nil(t, sent.Signature)
	assert.Equal(t, "docx", p.convocation.template)

	envelope := decodeEnvelope(t, rec)
	var body struct {
		Result models.GenerationResult `json:"result"`
		Next   *workflow.Handoff       `json:"next"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &body))
	assert.Equal(t, 12, body.Result.FilesGenerated)
	require.NotNil(t, body.Next)
	assert.Equal(t, "abc123", body.Next.SessionID)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, "12 convocations generated successfully", envelope.Meta.Notifications[0].Message)
}

func TestGenerateWithoutTemplateSendsNothing(t *testing.T) {
	p := newPortal()

	rec := p.do(multipartRequest(t, "/api/v1/generate", generationFields(), nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, p.convocation.requests)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.ErrMissingTemplate.Code, envelope.Error.Code)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, "select a convocation template", envelope.Meta.Notifications[0].Message)
}

func TestGenerateInvalidForm(t *testing.T) {
	p := newPortal()
	fields := generationFields()
	fields["villeId"] = "0"

	rec := p.do(multipartRequest(t, "/api/v1/generate", fields, map[string]string{"templateFile": "docx"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error.Message, "villeId")
	assert.Empty(t, p.convocation.requests)
}

func TestGenerateBusinessFailureKeepsResult(t *testing.T) {
	p := newPortal()
	p.convocation.result = &models.GenerationResult{Message: "template placeholders missing"}

	rec := p.do(multipartRequest(t, "/api/v1/generate", generationFields(), map[string]string{"templateFile": "docx", "signatureImage": "png"}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Len(t, p.convocation.requests, 1)
	require.NotNil(t, p.convocation.requests[0].Signature)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.ErrGenerationFailed.Code, envelope.Error.Code)
	assert.Contains(t, string(envelope.Data), "template placeholders missing")
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, models.LevelError, envelope.Meta.Notifications[0].Level)
}

func TestDownloadStreamsArchive(t *testing.T) {
	p := newPortal()
	p.convocation.archive = &models.Archive{
		Disposition: `attachment; filename="Convocations_abc123.zip"`,
		ContentType: "application/zip",
		Body:        io.NopCloser(strings.NewReader("PK-archive")),
	}

	rec := p.do(httptest.NewRequest(http.MethodGet, "/api/v1/download/abc123", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"abc123"}, p.convocation.downloads)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Convocations_abc123.zip"`)
	assert.Equal(t, "PK-archive", rec.Body.String())
}

func TestDownloadFailureReportsError(t *testing.T) {
	p := newPortal()
	p.convocation.fetchErr = appErrors.Clone(appErrors.ErrUpstreamTimeout, "download timed out")

	rec := p.do(httptest.NewRequest(http.MethodGet, "/api/v1/download/abc123", nil))
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, "failed to download the convocation archive", envelope.Meta.Notifications[0].Message)
}
