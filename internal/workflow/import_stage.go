package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/formdata"
)

const (
	msgSelectImportFile = "select a file to import"
	msgImportFailed     = "failed to import the candidate file"
)

type candidateImporter interface {
	ImportCandidates(ctx context.Context, file formdata.File) (*models.ImportResult, error)
}

// ImportStage uploads a roster and keeps the last result for display.
type ImportStage struct {
	importer candidateImporter
	env      Env

	mu     sync.Mutex
	result *models.ImportResult
}

// NewImportStage constructs the import stage.
func NewImportStage(importer candidateImporter, env Env) *ImportStage {
	return &ImportStage{importer: importer, env: env.withDefaults()}
}

// Submit uploads file. Row errors do not fail the import: the result and any
// issued session id are kept and a warning is raised. A failed call clears
// the previous result.
func (s *ImportStage) Submit(ctx context.Context, file *formdata.File) (*models.ImportResult, error) {
	if file == nil || file.Content == nil {
		s.env.Notifier.Notify(failure(msgSelectImportFile))
		return nil, appErrors.Clone(appErrors.ErrValidation, msgSelectImportFile)
	}

	release, ok := s.env.Guard.TryStart(s.env.key("import"))
	if !ok {
		return nil, appErrors.ErrInFlight
	}
	defer release()

	result, err := s.importer.ImportCandidates(ctx, *file)
	if err != nil {
		s.setResult(nil)
		s.env.Logger.Warn("candidate import failed", zap.String("file", file.Name), zap.Error(err))
		s.env.Notifier.Notify(failure(msgImportFailed))
		return nil, err
	}

	s.setResult(result)
	if result.HasErrors() {
		s.env.Notifier.Notify(warning("import finished with %d error(s)", len(result.Errors)))
	} else {
		s.env.Notifier.Notify(success("%d candidates imported successfully", result.CandidateCount))
	}
	s.env.Logger.Info("candidates imported",
		zap.String("session_id", result.SessionID),
		zap.Int("candidates", result.CandidateCount),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// Result returns the last successful import, nil after a failure.
func (s *ImportStage) Result() *models.ImportResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *ImportStage) setResult(result *models.ImportResult) {
	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
}
