package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

func roster(n int) []models.Candidate {
	out := make([]models.Candidate, n)
	for i := range out {
		out[i] = models.Candidate{LastName: fmt.Sprintf("Nom%d", i), FirstName: "Alice", Email: fmt.Sprintf("c%d@school.fr", i), Group: "G1"}
	}
	return out
}

func TestImportPreviewAndWarning(t *testing.T) {
	p := newPortal()
	p.importer.result = &models.ImportResult{
		SessionID:      "abc123",
		CandidateCount: 45,
		Errors:         []string{"row 3: missing email"},
		Candidates:     roster(45),
	}

	rec := p.do(multipartRequest(t, "/api/v1/import", nil, map[string]string{"file": "xlsx-bytes"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "file.bin", p.importer.filename)
	assert.Equal(t, "xlsx-bytes", p.importer.content)

	envelope := decodeEnvelope(t, rec)
	var preview struct {
		SessionID        string             `json:"sessionId"`
		Candidates       []models.Candidate `json:"candidats"`
		HiddenCandidates int                `json:"hiddenCandidates"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &preview))
	assert.Equal(t, "abc123", preview.SessionID)
	assert.Len(t, preview.Candidates, 40)
	assert.Equal(t, 5, preview.HiddenCandidates)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, models.LevelWarning, envelope.Meta.Notifications[0].Level)
}

func TestImportWithoutFile(t *testing.T) {
	p := newPortal()

	rec := p.do(multipartRequest(t, "/api/v1/import", map[string]string{"other": "x"}, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, "select a file to import", envelope.Meta.Notifications[0].Message)
	assert.Empty(t, p.importer.filename)
}

func TestImportUpstreamFailure(t *testing.T) {
	p := newPortal()
	p.importer.err = appErrors.Clone(appErrors.ErrUpstream, "bad gateway")

	rec := p.do(multipartRequest(t, "/api/v1/import", nil, map[string]string{"file": "x"}))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, models.LevelError, envelope.Meta.Notifications[0].Level)
}

func TestImportReportCSV(t *testing.T) {
	p := newPortal()
	result := models.ImportResult{SessionID: "abc123", CandidateCount: 1, Errors: []string{"row 2: bad"}, Candidates: roster(1)}

	rec := p.do(jsonRequest(http.MethodPost, "/api/v1/import/report?format=csv", result))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "import_abc123_")
	assert.Contains(t, rec.Body.String(), "Nom;Prénom;Email;Groupe")
	assert.Contains(t, rec.Body.String(), "row 2: bad")
}

func TestImportReportUnknownFormat(t *testing.T) {
	p := newPortal()

	rec := p.do(jsonRequest(http.MethodPost, "/api/v1/import/report?format=xls", models.ImportResult{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrUnsupportedFormat.Code, decodeEnvelope(t, rec).Error.Code)
}
