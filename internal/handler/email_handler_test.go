package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mk-yl/convocation-portal/internal/workflow"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

func TestEmailSendFiltersBlankRows(t *testing.T) {
	p := newPortal()
	form := workflow.EmailForm{SessionID: "abc123", ExamLabel: "Partiel S2", CCEmails: []string{"", "jury@school.fr", "  "}}

	rec := p.do(jsonRequest(http.MethodPost, "/api/v1/email", form))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.sender.calls, 1)
	assert.Equal(t, []string{"jury@school.fr"}, p.sender.calls[0].CCEmails)
	assert.Equal(t, "Partiel S2", p.sender.calls[0].ExamLabel)

	envelope := decodeEnvelope(t, rec)
	var body emailResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &body))
	assert.True(t, body.Sent)
	assert.Equal(t, "12 emails sent", body.Message)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, "emails sent successfully", envelope.Meta.Notifications[0].Message)
}

func TestEmailRejectsMalformedCC(t *testing.T) {
	p := newPortal()
	form := workflow.EmailForm{SessionID: "abc123", ExamLabel: "Partiel", CCEmails: []string{"jury@school"}}

	rec := p.do(jsonRequest(http.MethodPost, "/api/v1/email", form))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, p.sender.calls)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestEmailUpstreamFailure(t *testing.T) {
	p := newPortal()
	p.sender.err = appErrors.Clone(appErrors.ErrUpstream, "smtp unavailable")
	form := workflow.EmailForm{SessionID: "abc123", ExamLabel: "Partiel"}

	rec := p.do(jsonRequest(http.MethodPost, "/api/v1/email", form))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Len(t, envelope.Meta.Notifications, 1)
	assert.Equal(t, "failed to send the emails", envelope.Meta.Notifications[0].Message)
}
