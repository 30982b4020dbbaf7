package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/export"
)

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders import results into downloadable reports.
type ExportService struct {
	storage reportStorage
	csv     datasetRenderer
	pdf     datasetRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. storage may be nil when
// reports are only streamed back to callers.
func NewExportService(storage reportStorage, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{storage: storage, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ParseFormat validates a requested report format.
func ParseFormat(raw string) (models.ReportFormat, error) {
	switch models.ReportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case models.ReportFormatCSV, "":
		return models.ReportFormatCSV, nil
	case models.ReportFormatPDF:
		return models.ReportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// RenderImport renders every imported candidate followed by the row errors.
func (s *ExportService) RenderImport(result *models.ImportResult, format models.ReportFormat) (*models.ImportReport, error) {
	if result == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no import result to export")
	}
	dataset := importDataset(result)

	var (
		payload []byte
		err     error
	)
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render import report")
	}

	return &models.ImportReport{
		Filename:    s.buildFilename(result, format),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

// Store persists a rendered report and returns its path.
func (s *ExportService) Store(report *models.ImportReport) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("report storage not configured")
	}
	path, err := s.storage.Save(report.Filename, report.Data)
	if err != nil {
		return "", err
	}
	s.logger.Info("import report stored", zap.String("path", path))
	return path, nil
}

func importDataset(result *models.ImportResult) export.Dataset {
	rows := make([][]string, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		rows = append(rows, []string{c.LastName, c.FirstName, c.Email, c.Group})
	}

	notes := []string{fmt.Sprintf("Candidats importés : %d", result.CandidateCount)}
	if result.SessionID != "" {
		notes = append(notes, "Session : "+result.SessionID)
	}
	if len(result.Errors) > 0 {
		notes = append(notes, fmt.Sprintf("Erreurs (%d) :", len(result.Errors)))
		notes = append(notes, result.Errors...)
	}

	return export.Dataset{
		Title:   "Import des candidats",
		Headers: []string{"Nom", "Prénom", "Email", "Groupe"},
		Rows:    rows,
		Notes:   notes,
	}
}

func (s *ExportService) buildFilename(result *models.ImportResult, format models.ReportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	session := sanitizeFilename(result.SessionID)
	return fmt.Sprintf("import_%s_%s.%s", session, timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
