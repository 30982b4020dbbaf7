package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

type memoryStorage struct {
	files map[string][]byte
}

func (m *memoryStorage) Save(filename string, data []byte) (string, error) {
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[filename] = data
	return "/reports/" + filename, nil
}

func importFixture() *models.ImportResult {
	return &models.ImportResult{
		SessionID:      "abc/123",
		CandidateCount: 2,
		Errors:         []string{"row 3: invalid email"},
		Candidates: []models.Candidate{
			{LastName: "Durand", FirstName: "Léa", Email: "lea@epsi.fr", Group: "B3"},
			{LastName: "Martin", FirstName: "Paul", Email: "paul@epsi.fr", Group: "B3"},
		},
	}
}

func TestExportServiceRenderImportCSV(t *testing.T) {
	svc := NewExportService(nil, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC) }

	report, err := svc.RenderImport(importFixture(), models.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "import_abc-123_20240502_093000.csv", report.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", report.ContentType)

	content := string(report.Data)
	assert.True(t, strings.HasPrefix(content, "Nom;Prénom;Email;Groupe\n"))
	assert.Contains(t, content, "Durand;Léa;lea@epsi.fr;B3")
	assert.Contains(t, content, "Session : abc/123")
	assert.Contains(t, content, "row 3: invalid email")
}

func TestExportServiceRenderImportPDFAndStore(t *testing.T) {
	storage := &memoryStorage{}
	svc := NewExportService(storage, nil, nil, nil)

	report, err := svc.RenderImport(importFixture(), models.ReportFormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(report.Data, []byte("%PDF")))

	path, err := svc.Store(report)
	require.NoError(t, err)
	assert.Equal(t, "/reports/"+report.Filename, path)
	assert.Equal(t, report.Data, storage.files[report.Filename])
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	_, err := ParseFormat("xlsx")
	require.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)

	format, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatPDF, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatCSV, format)

	_, err = NewExportService(nil, nil, nil, nil).RenderImport(nil, models.ReportFormatCSV)
	require.ErrorIs(t, err, appErrors.ErrValidation)
}
