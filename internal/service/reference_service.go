package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

type referenceRepository interface {
	List(ctx context.Context, kind models.ReferenceKind, dest interface{}) error
	Create(ctx context.Context, kind models.ReferenceKind, payload, dest interface{}) error
	Update(ctx context.Context, kind models.ReferenceKind, id int, payload, dest interface{}) error
	Delete(ctx context.Context, kind models.ReferenceKind, id int) error
}

// ReferenceService loads and administers the lookup collections used by the
// generation form.
type ReferenceService struct {
	repo      referenceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReferenceService constructs the reference service. cache may be nil.
func NewReferenceService(repo referenceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ReferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Snapshot fetches the six collections concurrently. A failed collection is
// left empty while the others populate; the returned error then lists every
// failure.
func (s *ReferenceService) Snapshot(ctx context.Context) (*models.ReferenceSnapshot, error) {
	snapshot := models.NewReferenceSnapshot()
	scratch := make([]*models.ReferenceSnapshot, len(models.ReferenceKinds))
	failures := make([]error, len(models.ReferenceKinds))

	var g errgroup.Group
	for i, kind := range models.ReferenceKinds {
		i, kind := i, kind
		scratch[i] = models.NewReferenceSnapshot()
		g.Go(func() error {
			target, err := scratch[i].Collection(kind)
			if err != nil {
				failures[i] = err
				return nil
			}
			if err := s.load(ctx, kind, target); err != nil {
				failures[i] = fmt.Errorf("%s: %w", kind, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed []string
	var errs []error
	for i, kind := range models.ReferenceKinds {
		if failures[i] != nil {
			failed = append(failed, string(kind))
			errs = append(errs, failures[i])
			continue
		}
		snapshot.Adopt(scratch[i], kind)
	}
	if len(errs) > 0 {
		s.logger.Warn("reference data partially loaded", zap.Strings("failed", failed), zap.Error(errors.Join(errs...)))
		return snapshot, appErrors.Wrap(errors.Join(errs...), appErrors.ErrReferenceIncomplete.Code,
			appErrors.ErrReferenceIncomplete.Status, "failed to load reference data")
	}
	return snapshot, nil
}

// List returns the collection of kind as a pointer to a typed slice.
func (s *ReferenceService) List(ctx context.Context, kind models.ReferenceKind) (interface{}, error) {
	target, err := models.NewCollection(kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedKind.Code, appErrors.ErrUnsupportedKind.Status, appErrors.ErrUnsupportedKind.Message)
	}
	if err := s.load(ctx, kind, target); err != nil {
		return nil, err
	}
	return target, nil
}

// Create stores a new entity decoded from raw. Classes are described by a
// ClassDraft carrying ids.
func (s *ReferenceService) Create(ctx context.Context, kind models.ReferenceKind, raw []byte) (interface{}, error) {
	return s.save(ctx, kind, 0, raw)
}

// Update replaces the entity with the given id.
func (s *ReferenceService) Update(ctx context.Context, kind models.ReferenceKind, id int, raw []byte) (interface{}, error) {
	if id < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return s.save(ctx, kind, id, raw)
}

// Delete removes an entity.
func (s *ReferenceService) Delete(ctx context.Context, kind models.ReferenceKind, id int) error {
	if _, err := models.NewEntity(kind); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnsupportedKind.Code, appErrors.ErrUnsupportedKind.Status, appErrors.ErrUnsupportedKind.Message)
	}
	if id < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.invalidate(ctx, kind)
	return nil
}

// SaveClass resolves the draft's certification and exam type ids against the
// current collections and stores the class with the full embedded entities.
// id 0 creates a class.
func (s *ReferenceService) SaveClass(ctx context.Context, id int, draft models.ClassDraft) (*models.Class, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if err := s.validator.Struct(draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "class name is required")
	}

	var certifications []models.Certification
	if err := s.load(ctx, models.KindCertifications, &certifications); err != nil {
		return nil, err
	}
	var examTypes []models.ExamType
	if err := s.load(ctx, models.KindExamTypes, &examTypes); err != nil {
		return nil, err
	}

	class := models.Class{Name: draft.Name}
	var err error
	if class.Certifications, err = resolveIDs(draft.CertificationIDs, certifications, "certification"); err != nil {
		return nil, err
	}
	if class.ExamTypes, err = resolveIDs(draft.ExamTypeIDs, examTypes, "exam type"); err != nil {
		return nil, err
	}

	var saved models.Class
	if id == 0 {
		err = s.repo.Create(ctx, models.KindClasses, class, &saved)
	} else {
		err = s.repo.Update(ctx, models.KindClasses, id, class, &saved)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, models.KindClasses)
	return &saved, nil
}

func (s *ReferenceService) save(ctx context.Context, kind models.ReferenceKind, id int, raw []byte) (interface{}, error) {
	if kind == models.KindClasses {
		var draft models.ClassDraft
		if err := json.Unmarshal(raw, &draft); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
		}
		return s.SaveClass(ctx, id, draft)
	}

	entity, err := models.NewEntity(kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedKind.Code, appErrors.ErrUnsupportedKind.Status, appErrors.ErrUnsupportedKind.Message)
	}
	if err := json.Unmarshal(raw, entity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s payload", kind))
	}
	trimLabel(entity)
	if err := s.validator.Struct(entity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s payload", kind))
	}
	clearID(entity)

	saved, _ := models.NewEntity(kind)
	if id == 0 {
		err = s.repo.Create(ctx, kind, entity, saved)
	} else {
		err = s.repo.Update(ctx, kind, id, entity, saved)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, kind)
	return saved, nil
}

func (s *ReferenceService) load(ctx context.Context, kind models.ReferenceKind, dest interface{}) error {
	if s.cache.Lookup(ctx, kind, dest) {
		return nil
	}
	if err := s.repo.List(ctx, kind, dest); err != nil {
		return err
	}
	s.cache.Store(ctx, kind, dest)
	return nil
}

// invalidate drops the cached collection. Classes embed certifications and
// exam types, so edits to those also drop the cached classes.
func (s *ReferenceService) invalidate(ctx context.Context, kind models.ReferenceKind) {
	kinds := []models.ReferenceKind{kind}
	if kind == models.KindCertifications || kind == models.KindExamTypes {
		kinds = append(kinds, models.KindClasses)
	}
	s.cache.Forget(ctx, kinds...)
}

func resolveIDs[T models.ReferenceEntity](ids []int, pool []T, label string) ([]T, error) {
	byID := make(map[int]T, len(pool))
	for _, entity := range pool {
		byID[entity.EntityID()] = entity
	}
	resolved := make([]T, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		entity, ok := byID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown %s id %d", label, id))
		}
		seen[id] = struct{}{}
		resolved = append(resolved, entity)
	}
	return resolved, nil
}

func trimLabel(entity interface{}) {
	switch e := entity.(type) {
	case *models.Location:
		e.Name = strings.TrimSpace(e.Name)
	case *models.Venue:
		e.Street = strings.TrimSpace(e.Street)
	case *models.Certification:
		e.Name = strings.TrimSpace(e.Name)
	case *models.ExamType:
		e.Name = strings.TrimSpace(e.Name)
	case *models.Duration:
		e.Name = strings.TrimSpace(e.Name)
	}
}

func clearID(entity interface{}) {
	switch e := entity.(type) {
	case *models.Location:
		e.ID = 0
	case *models.Venue:
		e.ID = 0
	case *models.Certification:
		e.ID = 0
	case *models.ExamType:
		e.ID = 0
	case *models.Duration:
		e.ID = 0
	}
}
