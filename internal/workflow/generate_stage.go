package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

const (
	msgReferenceFailed   = "failed to load reference data"
	msgSelectTemplate    = "select a convocation template"
	msgGenerateFailed    = "failed to generate convocations"
	msgGenerationDefault = "convocation generation failed"
)

type referenceLoader interface {
	Snapshot(ctx context.Context) (*models.ReferenceSnapshot, error)
}

type convocationGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
}

// Handoff carries a generated session to the mailing stage.
type Handoff struct {
	SessionID string `json:"sessionId"`
}

// GenerateDeps are the collaborators of the generation stage.
type GenerateDeps struct {
	References referenceLoader
	Generator  convocationGenerator
	Downloader *Downloader
}

// GenerateStage holds the generation form, its selectable options and the
// last generation result.
type GenerateStage struct {
	deps GenerateDeps
	env  Env

	mu              sync.Mutex
	snapshot        *models.ReferenceSnapshot
	form            GenerationForm
	options         Options
	defaultsApplied bool
	result          *models.GenerationResult
}

// NewGenerateStage constructs the stage around an initial form, typically
// empty or carrying a session id typed by the user.
func NewGenerateStage(deps GenerateDeps, form GenerationForm, env Env) *GenerateStage {
	snap := models.NewReferenceSnapshot()
	form, options := SelectClass(form, form.ClassID, snap)
	return &GenerateStage{deps: deps, env: env.withDefaults(), snapshot: snap, form: form, options: options}
}

// Mount loads the reference data. On the first load the first location and
// venue become the default selections. A partial failure raises one error
// notification and keeps whatever did load.
func (s *GenerateStage) Mount(ctx context.Context) error {
	snap, err := s.deps.References.Snapshot(ctx)
	if err != nil {
		s.env.Logger.Warn("reference data load failed", zap.Error(err))
		s.env.Notifier.Notify(failure(msgReferenceFailed))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap != nil {
		s.snapshot = snap
	}
	if !s.defaultsApplied && snap != nil {
		if len(snap.Locations) > 0 && s.form.LocationID == 0 {
			s.form.LocationID = snap.Locations[0].ID
		}
		if len(snap.Venues) > 0 && s.form.VenueID == 0 {
			s.form.VenueID = snap.Venues[0].ID
		}
		s.defaultsApplied = true
	}
	s.form, s.options = SelectClass(s.form, s.form.ClassID, s.snapshot)
	return err
}

// SelectClass changes the selected class and returns the new choices.
func (s *GenerateStage) SelectClass(classID int) Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form, s.options = SelectClass(s.form, classID, s.snapshot)
	return s.options
}

// SetForm replaces the form. A class change in form goes through SelectClass
// so dependent selections are cleared.
func (s *GenerateStage) SetForm(form GenerationForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	classID := form.ClassID
	form.ClassID = s.form.ClassID
	s.form, s.options = SelectClass(form, classID, s.snapshot)
}

// Form returns the current form.
func (s *GenerateStage) Form() GenerationForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Options returns the current certification and exam type choices.
func (s *GenerateStage) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

// Snapshot returns the loaded reference data.
func (s *GenerateStage) Snapshot() *models.ReferenceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Submit sends the form with its files. A missing template is the only
// condition checked here and no request is sent in that case. When the
// service reports a business failure the result is returned together with
// ErrGenerationFailed so it can still be displayed.
func (s *GenerateStage) Submit(ctx context.Context, files GenerationFiles) (*models.GenerationResult, error) {
	if files.Template == nil || files.Template.Content == nil {
		s.env.Notifier.Notify(failure(msgSelectTemplate))
		return nil, appErrors.ErrMissingTemplate
	}

	release, ok := s.env.Guard.TryStart(s.env.key("generate"))
	if !ok {
		return nil, appErrors.ErrInFlight
	}
	defer release()

	req := s.Form().Request(files)
	result, err := s.deps.Generator.Generate(ctx, req)
	if err != nil {
		s.setResult(nil)
		s.env.Logger.Warn("convocation generation failed", zap.String("session_id", req.SessionID), zap.Error(err))
		s.env.Notifier.Notify(failure(msgGenerateFailed))
		return nil, err
	}

	s.setResult(result)
	if !result.Succeeded() {
		message := result.Message
		if message == "" {
			message = msgGenerationDefault
		}
		s.env.Notifier.Notify(failure(message))
		return result, appErrors.Clone(appErrors.ErrGenerationFailed, message)
	}

	s.env.Notifier.Notify(success("%d convocations generated successfully", result.FilesGenerated))
	s.env.Logger.Info("convocations generated",
		zap.String("session_id", result.SessionID),
		zap.Int("files", result.FilesGenerated))
	return result, nil
}

// Result returns the last generation result.
func (s *GenerateStage) Result() *models.GenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Download fetches the archive of the generated session. It is refused until
// a generation succeeded.
func (s *GenerateStage) Download(ctx context.Context, sink Sink) (string, error) {
	handoff, ok := s.ProceedToEmail()
	if !ok {
		return "", appErrors.Clone(appErrors.ErrMissingSession, "no generated session to download")
	}
	if s.deps.Downloader == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "download is not configured")
	}
	return s.deps.Downloader.Download(ctx, handoff.SessionID, sink)
}

// ProceedToEmail returns the handoff for the mailing stage once a generation
// succeeded.
func (s *GenerateStage) ProceedToEmail() (Handoff, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.result.Succeeded() {
		return Handoff{}, false
	}
	return Handoff{SessionID: s.result.SessionID}, true
}

func (s *GenerateStage) setResult(result *models.GenerationResult) {
	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
}
