package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/formdata"
)

func completeForm() GenerationForm {
	return GenerationForm{
		SessionID:       "abc123",
		LocationID:      1,
		CertificationID: 2,
		ExamTypeID:      3,
		VenueID:         4,
		DurationID:      5,
		DriveLink:       "https://drive.example.com/folder",
	}
}

func TestValidateGenerationForm(t *testing.T) {
	v := NewValidator()
	require.NoError(t, ValidateForm(v, completeForm()))

	form := completeForm()
	form.LocationID = 0
	form.SessionID = "   "
	form.DriveLink = "not a link"
	err := ValidateForm(v, form)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	message := appErrors.FromError(err).Message
	assert.Contains(t, message, "villeId")
	assert.Contains(t, message, "sessionId")
	assert.Contains(t, message, "lienDrive")

	form = completeForm()
	form.DriveLink = ""
	require.NoError(t, ValidateForm(v, form))
}

func TestValidateEmailForm(t *testing.T) {
	v := NewValidator()
	require.NoError(t, ValidateForm(v, EmailForm{SessionID: "abc", ExamLabel: "Partiel", CCEmails: []string{"", "a@b.com", "  "}}))

	err := ValidateForm(v, EmailForm{SessionID: "abc", ExamLabel: "Partiel", CCEmails: []string{"a@b"}})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	err = ValidateForm(v, EmailForm{SessionID: "abc", ExamLabel: " "})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "examenLabel")
}

func TestFilterBlankCCKeepsValuesVerbatim(t *testing.T) {
	assert.Equal(t, []string{"a@b.com"}, FilterBlankCC([]string{"", "a@b.com", "  "}))
	assert.Equal(t, []string{" x@y.fr"}, FilterBlankCC([]string{" x@y.fr", "\t"}))
	assert.Equal(t, []string{}, FilterBlankCC(nil))
}

func TestGenerationRequestSubmittable(t *testing.T) {
	form := completeForm()
	template := &formdata.File{Name: "t.docx", Content: strings.NewReader("x")}

	assert.True(t, form.Request(GenerationFiles{Template: template}).Submittable())
	assert.False(t, form.Request(GenerationFiles{}).Submittable())

	form.DurationID = 0
	assert.False(t, form.Request(GenerationFiles{Template: template}).Submittable())
}
