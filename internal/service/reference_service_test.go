package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

type writeCall struct {
	method  string
	kind    models.ReferenceKind
	id      int
	payload string
}

type fakeReferenceRepo struct {
	mu        sync.Mutex
	lists     map[models.ReferenceKind]string
	listErrs  map[models.ReferenceKind]error
	listCalls map[models.ReferenceKind]int
	writes    []writeCall
	saved     string
}

func newFakeReferenceRepo() *fakeReferenceRepo {
	return &fakeReferenceRepo{
		lists: map[models.ReferenceKind]string{
			models.KindLocations:      `[{"id":2,"nom":"Paris"},{"id":1,"nom":"Lyon"}]`,
			models.KindVenues:         `[{"id":5,"rue":"12 rue Lafayette"}]`,
			models.KindCertifications: `[{"id":1,"nom":"Bachelor"},{"id":2,"nom":"Mastère"}]`,
			models.KindExamTypes:      `[{"id":1,"nom":"Partiel"},{"id":3,"nom":"Projet"}]`,
			models.KindDurations:      `[{"id":1,"nom":"2h"}]`,
			models.KindClasses:        `[{"id":9,"nom":"B3 DEV","certifications":[{"id":1,"nom":"Bachelor"}],"typesExamen":[]}]`,
		},
		listErrs:  map[models.ReferenceKind]error{},
		listCalls: map[models.ReferenceKind]int{},
		saved:     `{"id":42,"nom":"saved"}`,
	}
}

func (f *fakeReferenceRepo) List(_ context.Context, kind models.ReferenceKind, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls[kind]++
	if err := f.listErrs[kind]; err != nil {
		return err
	}
	return json.Unmarshal([]byte(f.lists[kind]), dest)
}

func (f *fakeReferenceRepo) record(method string, kind models.ReferenceKind, id int, payload, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.writes = append(f.writes, writeCall{method: method, kind: kind, id: id, payload: string(raw)})
	return json.Unmarshal([]byte(f.saved), dest)
}

func (f *fakeReferenceRepo) Create(_ context.Context, kind models.ReferenceKind, payload, dest interface{}) error {
	return f.record("create", kind, 0, payload, dest)
}

func (f *fakeReferenceRepo) Update(_ context.Context, kind models.ReferenceKind, id int, payload, dest interface{}) error {
	return f.record("update", kind, id, payload, dest)
}

func (f *fakeReferenceRepo) Delete(_ context.Context, kind models.ReferenceKind, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, writeCall{method: "delete", kind: kind, id: id})
	return nil
}

type stubCacheRepo struct {
	mu          sync.Mutex
	store       map[string][]byte
	invalidated []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.invalidated = append(s.invalidated, key)
		delete(s.store, key)
	}
	return nil
}

func TestReferenceSnapshotLoadsAllKindsInServerOrder(t *testing.T) {
	svc := NewReferenceService(newFakeReferenceRepo(), nil, validator.New(), zap.NewNop())

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Locations, 2)
	assert.Equal(t, "Paris", snap.Locations[0].Name)
	assert.Equal(t, "12 rue Lafayette", snap.Venues[0].Street)
	assert.Len(t, snap.Certifications, 2)
	assert.Len(t, snap.ExamTypes, 2)
	assert.Len(t, snap.Durations, 1)
	require.Len(t, snap.Classes, 1)
	assert.Equal(t, []models.Certification{{ID: 1, Name: "Bachelor"}}, snap.Classes[0].Certifications)
}

func TestReferenceSnapshotToleratesPartialFailure(t *testing.T) {
	repo := newFakeReferenceRepo()
	repo.listErrs[models.KindVenues] = appErrors.Clone(appErrors.ErrUpstream, "boom")
	repo.listErrs[models.KindClasses] = appErrors.Clone(appErrors.ErrUpstreamTimeout, "slow")
	svc := NewReferenceService(repo, nil, nil, nil)

	snap, err := svc.Snapshot(context.Background())
	require.ErrorIs(t, err, appErrors.ErrReferenceIncomplete)
	assert.Equal(t, "failed to load reference data", appErrors.FromError(err).Message)
	assert.True(t, strings.Contains(err.Error(), "adresses") && strings.Contains(err.Error(), "classes"))

	require.NotNil(t, snap)
	assert.NotNil(t, snap.Venues)
	assert.Empty(t, snap.Venues)
	assert.NotNil(t, snap.Classes)
	assert.Empty(t, snap.Classes)
	assert.Len(t, snap.Locations, 2)
	assert.Len(t, snap.Durations, 1)
}

func TestReferenceSnapshotUsesCache(t *testing.T) {
	repo := newFakeReferenceRepo()
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop())
	svc := NewReferenceService(repo, cacheSvc, nil, nil)

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Locations, 2)
	for _, kind := range models.ReferenceKinds {
		assert.Equal(t, 1, repo.listCalls[kind], string(kind))
	}
}

func TestReferenceCreateValidatesAndStripsID(t *testing.T) {
	repo := newFakeReferenceRepo()
	cacheRepo := &stubCacheRepo{}
	svc := NewReferenceService(repo, NewCacheService(cacheRepo, nil, time.Minute, nil), nil, nil)

	_, err := svc.Create(context.Background(), models.KindLocations, []byte(`{"nom":"   "}`))
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.writes)

	saved, err := svc.Create(context.Background(), models.KindLocations, []byte(`{"id":99,"nom":" Nantes "}`))
	require.NoError(t, err)
	assert.Equal(t, &models.Location{ID: 42, Name: "saved"}, saved)
	require.Len(t, repo.writes, 1)
	assert.JSONEq(t, `{"nom":"Nantes"}`, repo.writes[0].payload)
	assert.Equal(t, []string{"refdata:villes"}, cacheRepo.invalidated)
}

func TestReferenceCertificationWriteInvalidatesClasses(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	svc := NewReferenceService(newFakeReferenceRepo(), NewCacheService(cacheRepo, nil, time.Minute, nil), nil, nil)

	_, err := svc.Update(context.Background(), models.KindCertifications, 2, []byte(`{"nom":"Mastère Expert"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"refdata:certifications", "refdata:classes"}, cacheRepo.invalidated)
}

func TestReferenceSaveClassResolvesIDs(t *testing.T) {
	repo := newFakeReferenceRepo()
	repo.saved = `{"id":9,"nom":"B3 DEV","certifications":[{"id":2,"nom":"Mastère"}],"typesExamen":[{"id":3,"nom":"Projet"}]}`
	svc := NewReferenceService(repo, nil, nil, nil)

	class, err := svc.SaveClass(context.Background(), 9, models.ClassDraft{
		Name:             "B3 DEV",
		CertificationIDs: []int{2, 2},
		ExamTypeIDs:      []int{3},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, class.ID)

	require.Len(t, repo.writes, 1)
	assert.Equal(t, "update", repo.writes[0].method)
	assert.JSONEq(t, `{"nom":"B3 DEV","certifications":[{"id":2,"nom":"Mastère"}],"typesExamen":[{"id":3,"nom":"Projet"}]}`, repo.writes[0].payload)
}

func TestReferenceSaveClassRejectsUnknownIDs(t *testing.T) {
	repo := newFakeReferenceRepo()
	svc := NewReferenceService(repo, nil, nil, nil)

	_, err := svc.SaveClass(context.Background(), 0, models.ClassDraft{Name: "B1", ExamTypeIDs: []int{8}})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "unknown exam type id 8")

	_, err = svc.SaveClass(context.Background(), 0, models.ClassDraft{Name: " "})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.writes)
}

func TestReferenceCreateClassFromDraftPayload(t *testing.T) {
	repo := newFakeReferenceRepo()
	svc := NewReferenceService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.KindClasses, []byte(`{"nom":"M1","certificationIds":[1],"typeExamenIds":[]}`))
	require.NoError(t, err)
	require.Len(t, repo.writes, 1)
	assert.Equal(t, "create", repo.writes[0].method)
	assert.JSONEq(t, `{"nom":"M1","certifications":[{"id":1,"nom":"Bachelor"}],"typesExamen":[]}`, repo.writes[0].payload)
}

func TestReferenceDeleteRejectsBadInput(t *testing.T) {
	svc := NewReferenceService(newFakeReferenceRepo(), nil, nil, nil)

	require.ErrorIs(t, svc.Delete(context.Background(), models.ReferenceKind("planets"), 1), appErrors.ErrUnsupportedKind)
	require.ErrorIs(t, svc.Delete(context.Background(), models.KindDurations, 0), appErrors.ErrValidation)
	require.NoError(t, svc.Delete(context.Background(), models.KindDurations, 1))
}
