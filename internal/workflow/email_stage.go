package workflow

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

const (
	msgEmailsSent   = "emails sent successfully"
	msgEmailsFailed = "failed to send the emails"
)

type emailSender interface {
	SendEmails(ctx context.Context, req models.EmailRequest) (string, error)
}

// EmailStage holds the mailing form and the confirmation banner state.
type EmailStage struct {
	sender    emailSender
	validator *validator.Validate
	env       Env

	mu   sync.Mutex
	form EmailForm
	sent bool
}

// NewEmailStage constructs the stage with the session id carried by handoff.
func NewEmailStage(handoff Handoff, sender emailSender, validate *validator.Validate, env Env) *EmailStage {
	if validate == nil {
		validate = NewValidator()
	}
	return &EmailStage{
		sender:    sender,
		validator: validate,
		env:       env.withDefaults(),
		form:      EmailForm{SessionID: handoff.SessionID, CCEmails: []string{""}},
	}
}

// Form returns a copy of the current form.
func (s *EmailStage) Form() EmailForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	form := s.form
	form.CCEmails = append([]string(nil), s.form.CCEmails...)
	return form
}

// SetForm replaces the form, keeping at least one CC row.
func (s *EmailStage) SetForm(form EmailForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := append([]string(nil), form.CCEmails...)
	if len(rows) == 0 {
		rows = []string{""}
	}
	form.CCEmails = rows
	s.form = form
}

// SetCC sets row i.
func (s *EmailStage) SetCC(i int, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.form.CCEmails) {
		return false
	}
	s.form.CCEmails[i] = value
	return true
}

// AddCC appends an empty CC row.
func (s *EmailStage) AddCC() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.CCEmails = append(s.form.CCEmails, "")
}

// RemoveCC removes row i unless it is the last remaining row.
func (s *EmailStage) RemoveCC(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.form.CCEmails) <= 1 || i < 0 || i >= len(s.form.CCEmails) {
		return false
	}
	s.form.CCEmails = append(s.form.CCEmails[:i], s.form.CCEmails[i+1:]...)
	return true
}

// Submit validates the form and sends the mailing request with blank CC rows
// removed. Success turns on the persistent confirmation.
func (s *EmailStage) Submit(ctx context.Context) (string, error) {
	form := s.Form()
	if err := ValidateForm(s.validator, form); err != nil {
		return "", err
	}

	release, ok := s.env.Guard.TryStart(s.env.key("email"))
	if !ok {
		return "", appErrors.ErrInFlight
	}
	defer release()

	req := models.EmailRequest{
		SessionID: form.SessionID,
		ExamLabel: form.ExamLabel,
		CCEmails:  FilterBlankCC(form.CCEmails),
	}
	message, err := s.sender.SendEmails(ctx, req)
	if err != nil {
		s.env.Logger.Warn("email dispatch failed", zap.String("session_id", req.SessionID), zap.Error(err))
		s.env.Notifier.Notify(failure(msgEmailsFailed))
		return "", err
	}

	s.mu.Lock()
	s.sent = true
	s.mu.Unlock()
	s.env.Notifier.Notify(success(msgEmailsSent))
	s.env.Logger.Info("emails dispatched", zap.String("session_id", req.SessionID), zap.Int("cc", len(req.CCEmails)))
	return message, nil
}

// Sent reports whether a mailing succeeded on this screen.
func (s *EmailStage) Sent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}
