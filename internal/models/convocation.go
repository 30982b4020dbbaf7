package models

import (
	"io"

	"github.com/Mk-yl/convocation-portal/pkg/formdata"
)

// Candidate is one roster line returned by the import.
type Candidate struct {
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Email     string `json:"email"`
	Group     string `json:"groupe"`
}

// ImportResult mirrors the import response. SessionID is empty when the
// service did not issue one.
type ImportResult struct {
	SessionID      string      `json:"sessionId"`
	CandidateCount int         `json:"candidatsCount"`
	Errors         []string    `json:"errors"`
	Message        string      `json:"message,omitempty"`
	Candidates     []Candidate `json:"candidats,omitempty"`
}

// HasErrors reports whether parsing produced row errors.
func (r *ImportResult) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// ImportPreview is an ImportResult whose candidate list was cut to the
// preview limit.
type ImportPreview struct {
	*ImportResult
	HiddenCandidates int `json:"hiddenCandidates"`
}

// Preview keeps at most limit candidates for display.
func (r *ImportResult) Preview(limit int) ImportPreview {
	if r == nil {
		return ImportPreview{}
	}
	if limit <= 0 || len(r.Candidates) <= limit {
		return ImportPreview{ImportResult: r}
	}
	cut := *r
	cut.Candidates = r.Candidates[:limit]
	return ImportPreview{ImportResult: &cut, HiddenCandidates: len(r.Candidates) - limit}
}

// GenerationData is the JSON segment sent alongside the template. Selector
// ids are sent as is, including the unselected sentinel.
type GenerationData struct {
	SessionID       string `json:"sessionId"`
	LocationID      int    `json:"villeId"`
	ExamTypeID      int    `json:"typeExamenId"`
	CertificationID int    `json:"certificationId"`
	VenueID         int    `json:"adresseId"`
	DurationID      int    `json:"dureeEpreuveId"`
	RenderDate      string `json:"dateRendu"`
	RenderTime      string `json:"heureRendu"`
	DriveLink       string `json:"lienDrive"`
}

// GenerationRequest couples the data segment with its files.
type GenerationRequest struct {
	GenerationData
	Template  *formdata.File
	Signature *formdata.File
}

// Submittable reports whether every selector is set and a template is
// attached.
func (r GenerationRequest) Submittable() bool {
	return r.LocationID > 0 &&
		r.ExamTypeID > 0 &&
		r.CertificationID > 0 &&
		r.VenueID > 0 &&
		r.DurationID > 0 &&
		r.Template != nil
}

// GenerationResult mirrors the generate response. An empty SessionID is a
// business failure explained by Message.
type GenerationResult struct {
	SessionID      string `json:"sessionId"`
	FilesGenerated int    `json:"filesGenerated"`
	DownloadURL    string `json:"downloadUrl,omitempty"`
	Message        string `json:"message"`
}

// Succeeded reports whether the service issued a session id.
func (r *GenerationResult) Succeeded() bool {
	return r != nil && r.SessionID != ""
}

// GenerationTask is returned when generation is queued.
type GenerationTask struct {
	TaskID string `json:"taskId"`
}

// Task states reported by the service.
const (
	TaskPending   = "PENDING"
	TaskRunning   = "RUNNING"
	TaskCompleted = "COMPLETED"
	TaskFailed    = "FAILED"
)

// TaskStatus describes a queued generation.
type TaskStatus struct {
	Status   string            `json:"status"`
	Result   *GenerationResult `json:"result,omitempty"`
	Progress *float64          `json:"progress,omitempty"`
}

// Done reports whether the task left the queued and running states.
func (s *TaskStatus) Done() bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case TaskPending, TaskRunning, "":
		return s.Result != nil
	default:
		return true
	}
}

// EmailRequest is the payload of the mailing call.
type EmailRequest struct {
	SessionID string   `json:"sessionId"`
	ExamLabel string   `json:"examenLabel"`
	CCEmails  []string `json:"ccEmails"`
}

// Archive is a streamed convocation package. Callers must close Body.
type Archive struct {
	Disposition   string
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}
