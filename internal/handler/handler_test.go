package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/internal/service"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/formdata"
)

type responseEnvelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
	Meta  struct {
		Notifications []models.Notification `json:"notifications"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

type fakeImporter struct {
	result   *models.ImportResult
	err      error
	filename string
	content  string
}

func (f *fakeImporter) ImportCandidates(_ context.Context, file formdata.File) (*models.ImportResult, error) {
	f.filename = file.Name
	data, _ := io.ReadAll(file.Content)
	f.content = string(data)
	return f.result, f.err
}

type fakeConvocation struct {
	result    *models.GenerationResult
	err       error
	requests  []models.GenerationRequest
	template  string
	archive   *models.Archive
	fetchErr  error
	downloads []string
}

func (f *fakeConvocation) Generate(_ context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	f.requests = append(f.requests, req)
	if req.Template != nil {
		data, _ := io.ReadAll(req.Template.Content)
		f.template = string(data)
	}
	return f.result, f.err
}

func (f *fakeConvocation) Download(_ context.Context, sessionID string) (*models.Archive, error) {
	f.downloads = append(f.downloads, sessionID)
	return f.archive, f.fetchErr
}

type fakeSender struct {
	calls []models.EmailRequest
	err   error
}

func (f *fakeSender) SendEmails(_ context.Context, req models.EmailRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return "12 emails sent", nil
}

type fakeReferences struct {
	snapshot *models.ReferenceSnapshot
	err      error
	created  []string
	deleted  []int
}

func (f *fakeReferences) Snapshot(context.Context) (*models.ReferenceSnapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeReferences) List(_ context.Context, kind models.ReferenceKind) (interface{}, error) {
	return f.snapshot.Collection(kind)
}

func (f *fakeReferences) Create(_ context.Context, kind models.ReferenceKind, raw []byte) (interface{}, error) {
	f.created = append(f.created, string(kind)+":"+string(raw))
	return models.Location{ID: 9, Name: "Nantes"}, nil
}

func (f *fakeReferences) Update(_ context.Context, _ models.ReferenceKind, id int, _ []byte) (interface{}, error) {
	return models.Location{ID: id, Name: "Nantes"}, nil
}

func (f *fakeReferences) Delete(_ context.Context, _ models.ReferenceKind, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func referenceFixture() *models.ReferenceSnapshot {
	snap := models.NewReferenceSnapshot()
	snap.Locations = []models.Location{{ID: 3, Name: "Paris"}, {ID: 1, Name: "Lyon"}}
	snap.Venues = []models.Venue{{ID: 7, Street: "12 rue Lafayette"}}
	snap.Certifications = []models.Certification{{ID: 1, Name: "Bachelor"}, {ID: 2, Name: "Mastère"}}
	snap.ExamTypes = []models.ExamType{{ID: 10, Name: "Partiel"}, {ID: 11, Name: "Projet"}}
	snap.Durations = []models.Duration{{ID: 4, Name: "2h"}}
	snap.Classes = []models.Class{{
		ID:             100,
		Name:           "B3 DEV",
		Certifications: []models.Certification{{ID: 2, Name: "Mastère"}},
		ExamTypes:      []models.ExamType{{ID: 11, Name: "Projet"}},
	}}
	return snap
}

type portal struct {
	router      *gin.Engine
	importer    *fakeImporter
	convocation *fakeConvocation
	sender      *fakeSender
	references  *fakeReferences
}

func newPortal() *portal {
	gin.SetMode(gin.TestMode)
	p := &portal{
		importer:    &fakeImporter{},
		convocation: &fakeConvocation{},
		sender:      &fakeSender{},
		references:  &fakeReferences{snapshot: referenceFixture()},
	}
	env := NewStageEnv(service.NewMetricsService(), nil)
	validate := workflow.NewValidator()
	p.router = gin.New()
	Register(p.router.Group("/api/v1"), Handlers{
		Dashboard:  NewDashboardHandler("/api/v1"),
		Import:     NewImportHandler(p.importer, service.NewExportService(nil, nil, nil, nil), env, 40),
		Generate:   NewGenerateHandler(p.references, p.convocation, validate, env),
		Email:      NewEmailHandler(p.sender, validate, env),
		References: NewReferenceHandler(p.references, nil),
	})
	return p
}

func (p *portal) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}
